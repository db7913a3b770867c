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

package main

import (
	"testing"

	"github.com/riverscapes/corridor"
)

func TestMetricSpecs(t *testing.T) {
	specs, err := metricSpecs([]string{"dam_count=sum", "dam_density=density", "veg_cover=area"})
	if err != nil {
		t.Fatal(err)
	}
	want := []corridor.MetricSpec{
		{Name: "dam_count", Kind: corridor.MetricSum},
		{Name: "dam_density", Kind: corridor.MetricDensity},
		{Name: "veg_cover", Kind: corridor.MetricAreaWeighted},
	}
	if len(specs) != len(want) {
		t.Fatalf("want %d specs but have %d", len(want), len(specs))
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Errorf("spec %d: want %+v but have %+v", i, want[i], specs[i])
		}
	}

	if _, err := metricSpecs([]string{"dam_count"}); err == nil {
		t.Error("want error for missing kind but have nil")
	}
	if _, err := metricSpecs([]string{"dam_count=maximum"}); err == nil {
		t.Error("want error for unknown kind but have nil")
	}
}

func TestFloatList(t *testing.T) {
	vals, err := floatList([]string{"200", " 400 ", "1200", "2000", "8000"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if vals[1] != 400 {
		t.Errorf("want 400 but have %g", vals[1])
	}
	if _, err := floatList([]string{"1", "2"}, 5); err == nil {
		t.Error("want length error but have nil")
	}
	if _, err := floatList([]string{"a", "b", "c", "d", "e"}, 5); err == nil {
		t.Error("want parse error but have nil")
	}
}

func TestEngineConfigDefaults(t *testing.T) {
	cfg, err := engineConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	def := corridor.DefaultConfig()
	if cfg.SegmentationInterval != def.SegmentationInterval {
		t.Errorf("want interval %g but have %g", def.SegmentationInterval, cfg.SegmentationInterval)
	}
	if cfg.WindowWidths != def.WindowWidths {
		t.Errorf("want widths %v but have %v", def.WindowWidths, cfg.WindowWidths)
	}
	if cfg.StreamSizeBreaks != def.StreamSizeBreaks {
		t.Errorf("want breaks %v but have %v", def.StreamSizeBreaks, cfg.StreamSizeBreaks)
	}
}
