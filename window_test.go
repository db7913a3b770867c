/*
Copyright © 2024 the Corridor authors.
This file is part of Corridor.

Corridor is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Corridor is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Corridor.  If not, see <http://www.gnu.org/licenses/>.
*/

package corridor

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func windowFixture() ([]*SegmentationPoint, []*DGO) {
	var points []*SegmentationPoint
	var dgos []*DGO
	for _, x := range []float64{100, 300, 500, 700, 900} {
		points = append(points, &SegmentationPoint{
			Point:       geom.Point{X: x, Y: 100},
			LevelPath:   "10",
			SegDistance: x,
		})
		dgos = append(dgos, &DGO{
			LevelPath:   "10",
			SegDistance: x,
			SegmentArea: 40000,
			Metrics:     map[string]float64{"dam_count": 1, "veg_cover": x / 1000},
		})
	}
	return points, dgos
}

func TestAggregateWindowsSum(t *testing.T) {
	points, dgos := windowFixture()
	igos := AggregateWindows(points, dgos, 400, []MetricSpec{{Name: "dam_count", Kind: MetricSum}})
	if len(igos) != 5 {
		t.Fatalf("want 5 IGOs but have %d", len(igos))
	}
	// A 400 m window at seg distance 500 spans [300, 700]: three DGOs.
	want := []float64{2, 3, 3, 3, 2}
	for i, igo := range igos {
		if different(igo.Metrics["dam_count"], want[i]) {
			t.Errorf("IGO %d: want %g but have %g", i, want[i], igo.Metrics["dam_count"])
		}
	}
}

func TestAggregateWindowsDensity(t *testing.T) {
	points, dgos := windowFixture()
	igos := AggregateWindows(points, dgos, 400, []MetricSpec{{Name: "dam_count", Kind: MetricDensity}})
	// Center window: 3 dams over 120000 m².
	have := igos[2].Metrics["dam_count"]
	if different(have, 3./120000) {
		t.Errorf("want density %g but have %g", 3./120000, have)
	}
}

func TestAggregateWindowsAreaWeighted(t *testing.T) {
	points, dgos := windowFixture()
	igos := AggregateWindows(points, dgos, 400, []MetricSpec{{Name: "veg_cover", Kind: MetricAreaWeighted}})
	// Equal segment areas reduce the weighting to a plain mean.
	have := igos[2].Metrics["veg_cover"]
	if different(have, 0.5) {
		t.Errorf("want 0.5 but have %g", have)
	}
}

func TestAggregateWindowsUnmeasured(t *testing.T) {
	points, dgos := windowFixture()
	igos := AggregateWindows(points, dgos, 400, []MetricSpec{{Name: "beaver_dams", Kind: MetricSum}})
	for i, igo := range igos {
		if !math.IsNaN(igo.Metrics["beaver_dams"]) {
			t.Errorf("IGO %d: want NaN for unmeasured metric but have %g", i, igo.Metrics["beaver_dams"])
		}
	}
}

func TestAggregateWindowsOtherLevelPath(t *testing.T) {
	points, dgos := windowFixture()
	for _, d := range dgos {
		d.LevelPath = "20"
	}
	igos := AggregateWindows(points, dgos, 400, []MetricSpec{{Name: "dam_count", Kind: MetricSum}})
	for i, igo := range igos {
		if !math.IsNaN(igo.Metrics["dam_count"]) {
			t.Errorf("IGO %d: want NaN across level paths but have %g", i, igo.Metrics["dam_count"])
		}
	}
}

func TestAggregateWindowsZeroDenominator(t *testing.T) {
	points, dgos := windowFixture()
	for _, d := range dgos {
		d.SegmentArea = 0
	}
	igos := AggregateWindows(points, dgos, 400, []MetricSpec{{Name: "dam_count", Kind: MetricDensity}})
	for i, igo := range igos {
		if !math.IsNaN(igo.Metrics["dam_count"]) {
			t.Errorf("IGO %d: want NaN for zero window area but have %g", i, igo.Metrics["dam_count"])
		}
	}
}
