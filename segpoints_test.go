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
	"testing"

	"github.com/ctessum/geom"
)

func TestUTMZone(t *testing.T) {
	tests := []struct {
		lon  float64
		want int
	}{
		{-180, 1},
		{-111, 12}, // Utah
		{0, 31},
		{179.9, 60},
		{-500, 1}, // clamped
		{500, 60}, // clamped
	}
	for _, test := range tests {
		if have := utmZone(test.lon); have != test.want {
			t.Errorf("lon %g: want zone %d but have %d", test.lon, test.want, have)
		}
	}
}

func TestGenerateSegmentationPoints(t *testing.T) {
	reaches := []*Flowline{{
		LineString: geom.LineString{{X: 0, Y: 0}, {X: 1000, Y: 0}},
		LevelPath:  "10",
	}}
	points, err := GenerateSegmentationPoints("10", reaches, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 5 {
		t.Fatalf("want 5 points but have %d", len(points))
	}
	for i, want := range []float64{100, 300, 500, 700, 900} {
		if different(points[i].SegDistance, want) {
			t.Errorf("point %d: want seg distance %g but have %g", i, want, points[i].SegDistance)
		}
		if different(points[i].Point.X, want) || different(points[i].Point.Y, 0) {
			t.Errorf("point %d: want (%g,0) but have %v", i, want, points[i].Point)
		}
		if points[i].LevelPath != "10" {
			t.Errorf("point %d: want level path 10 but have %s", i, points[i].LevelPath)
		}
	}
}

func TestGenerateSegmentationPointsMergedReaches(t *testing.T) {
	// Two end-to-end reaches merge before walking, so point spacing does
	// not restart at the junction.
	reaches := []*Flowline{
		{LineString: geom.LineString{{X: 0, Y: 0}, {X: 300, Y: 0}}, LevelPath: "10"},
		{LineString: geom.LineString{{X: 300, Y: 0}, {X: 700, Y: 0}}, LevelPath: "10"},
	}
	points, err := GenerateSegmentationPoints("10", reaches, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("want 3 points but have %d", len(points))
	}
	for i, want := range []float64{100, 300, 500} {
		if different(points[i].Point.X, want) {
			t.Errorf("point %d: want x=%g but have %g", i, want, points[i].Point.X)
		}
	}
}

func TestGenerateSegmentationPointsDisjointReaches(t *testing.T) {
	// Reaches with a gap walk per component, with the along-path distance
	// accumulating across components.
	reaches := []*Flowline{
		{LineString: geom.LineString{{X: 0, Y: 0}, {X: 400, Y: 0}}, LevelPath: "10"},
		{LineString: geom.LineString{{X: 1000, Y: 0}, {X: 1400, Y: 0}}, LevelPath: "10"},
	}
	points, err := GenerateSegmentationPoints("10", reaches, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 4 {
		t.Fatalf("want 4 points but have %d", len(points))
	}
	wantDist := []float64{100, 300, 500, 700}
	wantX := []float64{100, 300, 1100, 1300}
	for i := range points {
		if different(points[i].SegDistance, wantDist[i]) {
			t.Errorf("point %d: want seg distance %g but have %g", i, wantDist[i], points[i].SegDistance)
		}
		if different(points[i].Point.X, wantX[i]) {
			t.Errorf("point %d: want x=%g but have %g", i, wantX[i], points[i].Point.X)
		}
	}
}

func TestGenerateSegmentationPointsEndpointExcluded(t *testing.T) {
	// A walk landing exactly on the line's end emits no station there: the
	// cell of an endpoint station would have zero width.
	reaches := []*Flowline{{
		LineString: geom.LineString{{X: 0, Y: 0}, {X: 500, Y: 0}},
		LevelPath:  "10",
	}}
	points, err := GenerateSegmentationPoints("10", reaches, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("want 2 points but have %d", len(points))
	}
	for i, want := range []float64{100, 300} {
		if different(points[i].SegDistance, want) {
			t.Errorf("point %d: want seg distance %g but have %g", i, want, points[i].SegDistance)
		}
	}
}

func TestGenerateSegmentationPointsBadDistance(t *testing.T) {
	if _, err := GenerateSegmentationPoints("10", nil, 0, nil); err == nil {
		t.Error("want error for zero distance but have nil")
	}
}
