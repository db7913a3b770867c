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

const testTolerance = 1e-9

func different(a, b float64) bool {
	return math.Abs(a-b) > testTolerance
}

func TestSegment(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 1000, Y: 0}}
	pieces := Segment(line, 200, 50)
	if len(pieces) != 5 {
		t.Fatalf("want 5 pieces but have %d", len(pieces))
	}
	for i, p := range pieces {
		if different(p.Length(), 200) {
			t.Errorf("piece %d: want length 200 but have %g", i, p.Length())
		}
	}
}

func TestSegmentRemainder(t *testing.T) {
	// 1030 m cuts into 200 m pieces; the fifth cut would leave a 30 m
	// tail, shorter than the minimum, so the final piece keeps it.
	line := geom.LineString{{X: 0, Y: 0}, {X: 1030, Y: 0}}
	pieces := Segment(line, 200, 50)
	if len(pieces) != 5 {
		t.Fatalf("want 5 pieces but have %d", len(pieces))
	}
	last := pieces[len(pieces)-1]
	if different(last.Length(), 230) {
		t.Errorf("want final length 230 but have %g", last.Length())
	}
}

func TestSegmentShortLine(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 220, Y: 0}}
	pieces := Segment(line, 200, 50)
	if len(pieces) != 1 {
		t.Fatalf("want 1 piece but have %d", len(pieces))
	}
	if different(pieces[0].Length(), 220) {
		t.Errorf("want length 220 but have %g", pieces[0].Length())
	}
}

func TestSegmentNoInterval(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 1000, Y: 0}}
	pieces := Segment(line, 0, 50)
	if len(pieces) != 1 {
		t.Errorf("want 1 piece but have %d", len(pieces))
	}
}

func TestCutLine(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	head, tail := CutLine(line, 150)
	if different(head.Length(), 150) {
		t.Errorf("want head length 150 but have %g", head.Length())
	}
	if different(tail.Length(), 50) {
		t.Errorf("want tail length 50 but have %g", tail.Length())
	}
	wantCut := geom.Point{X: 100, Y: 50}
	if !head[len(head)-1].Equals(wantCut) || !tail[0].Equals(wantCut) {
		t.Errorf("want cut at %v but have %v and %v", wantCut, head[len(head)-1], tail[0])
	}
}

func TestCutLineAtVertex(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0}}
	head, tail := CutLine(line, 100)
	if len(head) != 2 || len(tail) != 2 {
		t.Fatalf("want 2 vertices each but have %d and %d", len(head), len(tail))
	}
	if !head[1].Equals(geom.Point{X: 100, Y: 0}) {
		t.Errorf("want cut at existing vertex but have %v", head[1])
	}
}

func TestCutLineBeyondEnd(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}}
	head, tail := CutLine(line, 500)
	if different(head.Length(), 100) {
		t.Errorf("want whole line but have length %g", head.Length())
	}
	if tail != nil {
		t.Errorf("want empty tail but have %v", tail)
	}
}

func TestPointAlong(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	tests := []struct {
		d    float64
		want geom.Point
	}{
		{-5, geom.Point{X: 0, Y: 0}},
		{0, geom.Point{X: 0, Y: 0}},
		{50, geom.Point{X: 50, Y: 0}},
		{100, geom.Point{X: 100, Y: 0}},
		{150, geom.Point{X: 100, Y: 50}},
		{999, geom.Point{X: 100, Y: 100}},
	}
	for _, test := range tests {
		have := PointAlong(line, test.d)
		if different(have.X, test.want.X) || different(have.Y, test.want.Y) {
			t.Errorf("d=%g: want %v but have %v", test.d, test.want, have)
		}
	}
}

func TestSegmentFlowlines(t *testing.T) {
	flowlines := []*Flowline{
		{
			LineString: geom.LineString{{X: 0, Y: 0}, {X: 500, Y: 0}},
			LevelPath:  "10",
			FCode:      46006,
		},
	}
	pieces := SegmentFlowlines(flowlines, 200, 50, false)
	// The 300 m remainder after the first cut still splits: 100 >= minimum.
	if len(pieces) != 3 {
		t.Fatalf("want 3 pieces but have %d", len(pieces))
	}
	for i, p := range pieces {
		if p.LevelPath != "10" || p.FCode != 46006 {
			t.Errorf("piece %d: attributes not carried: %+v", i, p)
		}
	}
	for i, want := range []float64{200, 200, 100} {
		if different(pieces[i].LineString.Length(), want) {
			t.Errorf("piece %d: want length %g but have %g", i, want, pieces[i].LineString.Length())
		}
	}
}

func TestSegmentFlowlinesMergeNamed(t *testing.T) {
	flowlines := []*Flowline{
		{
			LineString: geom.LineString{{X: 0, Y: 0}, {X: 300, Y: 0}},
			Name:       "Bear Creek",
			LevelPath:  "10",
		},
		{
			LineString: geom.LineString{{X: 300, Y: 0}, {X: 600, Y: 0}},
			Name:       "Bear Creek",
			LevelPath:  "10",
		},
	}
	pieces := SegmentFlowlines(flowlines, 200, 50, true)
	// The merged 600 m line cuts into 200+200+200.
	if len(pieces) != 3 {
		t.Fatalf("want 3 pieces but have %d", len(pieces))
	}
	var total float64
	for _, p := range pieces {
		total += p.LineString.Length()
	}
	if different(total, 600) {
		t.Errorf("want total length 600 but have %g", total)
	}
}

func TestSegmentFlowlinesDisjointNamed(t *testing.T) {
	// Same-named parts with no shared junction keep their identity.
	flowlines := []*Flowline{
		{
			LineString: geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}},
			Name:       "Bear Creek",
		},
		{
			LineString: geom.LineString{{X: 5000, Y: 0}, {X: 5100, Y: 0}},
			Name:       "Bear Creek",
		},
	}
	pieces := SegmentFlowlines(flowlines, 200, 50, true)
	if len(pieces) != 2 {
		t.Fatalf("want 2 pieces but have %d", len(pieces))
	}
}
