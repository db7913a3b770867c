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
	"github.com/ctessum/geom/proj"
)

// sliceSource serves canned features for loader tests.
type sliceSource struct {
	geoms  []geom.Geom
	fields []map[string]string
	i      int
}

func (s *sliceSource) SR() (*proj.SR, error) { return nil, nil }

func (s *sliceSource) Next() (geom.Geom, map[string]string, bool) {
	if s.i >= len(s.geoms) {
		return nil, nil, false
	}
	g, f := s.geoms[s.i], s.fields[s.i]
	s.i++
	return g, f, true
}

func (s *sliceSource) Error() error { return nil }
func (s *sliceSource) Close() error { return nil }

func TestLoadFlowlines(t *testing.T) {
	src := &sliceSource{
		geoms: []geom.Geom{
			geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}},
			geom.MultiLineString{
				{{X: 100, Y: 0}, {X: 200, Y: 0}},
				{{X: 200, Y: 0}, {X: 300, Y: 0}},
			},
		},
		fields: []map[string]string{
			{
				attrFCode:       "46006",
				attrGNISName:    "Bear Creek",
				attrLevelPath:   "10",
				attrDrainage:    "120.5",
				attrDivDrainage: "3.25",
			},
			{
				attrFCode:     "33600",
				attrLevelPath: "10",
			},
		},
	}
	flowlines, err := LoadFlowlines(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(flowlines) != 2 {
		t.Fatalf("want 2 flowlines but have %d", len(flowlines))
	}
	f := flowlines[0]
	if f.FCode != 46006 || f.Name != "Bear Creek" || f.LevelPath != "10" {
		t.Errorf("attributes not parsed: %+v", f)
	}
	if different(f.TotalDrainageArea, 120.5) || different(f.DivergentDrainageArea, 3.25) {
		t.Errorf("drainage not parsed: %+v", f)
	}
	// The multiline merged into one part.
	if different(flowlines[1].LineString.Length(), 200) {
		t.Errorf("want merged length 200 but have %g", flowlines[1].LineString.Length())
	}
}

func TestLoadFlowlinesSkipsUnrepairable(t *testing.T) {
	src := &sliceSource{
		geoms: []geom.Geom{
			geom.MultiLineString{
				{{X: 0, Y: 0}, {X: 100, Y: 0}},
				{{X: 5000, Y: 0}, {X: 5100, Y: 0}},
			},
			geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}},
		},
		fields: []map[string]string{
			{attrLevelPath: "10"},
			{attrLevelPath: "10"},
		},
	}
	flowlines, err := LoadFlowlines(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(flowlines) != 1 {
		t.Errorf("want the disjoint multiline skipped but have %d flowlines", len(flowlines))
	}
}

func TestLoadCorridors(t *testing.T) {
	src := &sliceSource{
		geoms: []geom.Geom{
			geom.Polygon{{{X: 0, Y: 0}, {X: 500, Y: 0}, {X: 500, Y: 200}, {X: 0, Y: 200}}},
			geom.Polygon{{{X: 500, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 200}, {X: 500, Y: 200}}},
			geom.Polygon{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}},
		},
		fields: []map[string]string{
			{attrLevelPath: "10"},
			{attrLevelPath: "10"},
			{attrLevelPath: "20"},
		},
	}
	corridors, err := LoadCorridors(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(corridors) != 2 {
		t.Fatalf("want 2 level paths but have %d", len(corridors))
	}
	// The two level path 10 features unioned.
	if different(corridors["10"].Area(), 200000) {
		t.Errorf("want unioned area 200000 but have %g", corridors["10"].Area())
	}
	if different(corridors["20"].Area(), 100) {
		t.Errorf("want area 100 but have %g", corridors["20"].Area())
	}
}

func TestLoadTransportLines(t *testing.T) {
	src := &sliceSource{
		geoms: []geom.Geom{
			geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}},
			geom.MultiLineString{
				{{X: 0, Y: 50}, {X: 100, Y: 50}},
				{{X: 0, Y: 60}, {X: 100, Y: 60}},
			},
			geom.Point{X: 1, Y: 1}, // skipped with a warning
		},
		fields: []map[string]string{nil, nil, nil},
	}
	lines, err := LoadTransportLines(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Errorf("want 3 lines but have %d", len(lines))
	}
}

func TestS2F(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"  ", 0},
		{"\x00\x00", 0},
		{"***", 0},
		{"12.5", 12.5},
		{" 12.5 ", 12.5},
	}
	for _, test := range tests {
		have, err := s2f(test.in)
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if different(have, test.want) {
			t.Errorf("%q: want %g but have %g", test.in, test.want, have)
		}
	}
	if _, err := s2f("not a number"); err == nil {
		t.Error("want parse error but have nil")
	}
}
