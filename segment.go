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

	"github.com/ctessum/geom"
)

// Segment cuts line into pieces of exactly interval length, the last piece
// keeping whatever remains. No output piece is shorter than minimum: the
// trailing remainder satisfies minimum <= length <= interval+minimum.
// If interval <= 0, or the line is too short to split
// (length < interval+minimum), the line is returned unchanged.
func Segment(line geom.LineString, interval, minimum float64) []geom.LineString {
	if interval <= 0 {
		return []geom.LineString{line}
	}
	if line.Length() < interval+minimum {
		return []geom.LineString{line}
	}
	var out []geom.LineString
	rest := line
	for rest.Length() >= interval+minimum {
		head, tail := CutLine(rest, interval)
		out = append(out, head)
		rest = tail
	}
	return append(out, rest)
}

// CutLine splits line at along-path distance d, interpolating a new vertex
// when d falls between two existing ones. A distance exactly at a vertex
// splits there without interpolation. Distances beyond the line's length
// return the whole line and an empty remainder. Closed rings need no extra
// handling: a cut in the final segment interpolates toward the ring's
// start coordinate, which is also its last vertex.
func CutLine(line geom.LineString, d float64) (head, tail geom.LineString) {
	if d <= 0 {
		return nil, line
	}
	acc := 0.
	for i := 0; i < len(line)-1; i++ {
		seg := math.Hypot(line[i+1].X-line[i].X, line[i+1].Y-line[i].Y)
		if acc+seg == d {
			head = append(head, line[:i+2]...)
			tail = append(tail, line[i+1:]...)
			return head, tail
		}
		if acc+seg > d {
			frac := (d - acc) / seg
			p := geom.Point{
				X: line[i].X + frac*(line[i+1].X-line[i].X),
				Y: line[i].Y + frac*(line[i+1].Y-line[i].Y),
			}
			head = append(head, line[:i+1]...)
			head = append(head, p)
			tail = append(tail, p)
			tail = append(tail, line[i+1:]...)
			return head, tail
		}
		acc += seg
	}
	return line, nil
}

// PointAlong returns the point at along-path distance d from the start of
// line, clamping to the endpoints.
func PointAlong(line geom.LineString, d float64) geom.Point {
	if len(line) == 0 {
		return geom.Point{}
	}
	if d <= 0 {
		return line[0]
	}
	acc := 0.
	for i := 0; i < len(line)-1; i++ {
		seg := math.Hypot(line[i+1].X-line[i].X, line[i+1].Y-line[i].Y)
		if acc+seg >= d {
			if seg == 0 {
				return line[i+1]
			}
			frac := (d - acc) / seg
			return geom.Point{
				X: line[i].X + frac*(line[i+1].X-line[i].X),
				Y: line[i].Y + frac*(line[i+1].Y-line[i].Y),
			}
		}
		acc += seg
	}
	return line[len(line)-1]
}

// SegmentFlowlines cuts each flowline into interval-length reaches,
// carrying the source attributes onto every piece. When mergeNamed is set
// and segmentation is active, same-named features that connect end to end
// are first joined into one logical line; unnamed features and groups that
// do not share junctions are cut individually.
func SegmentFlowlines(flowlines []*Flowline, interval, minimum float64, mergeNamed bool) []*Flowline {
	var work []*Flowline
	if mergeNamed && interval > 0 {
		grouped := make(map[string][]*Flowline)
		var order []string
		for _, f := range flowlines {
			if f.Name == "" {
				work = append(work, f)
				continue
			}
			if _, ok := grouped[f.Name]; !ok {
				order = append(order, f.Name)
			}
			grouped[f.Name] = append(grouped[f.Name], f)
		}
		for _, name := range order {
			group := grouped[name]
			if len(group) == 1 {
				work = append(work, group[0])
				continue
			}
			ml := make(geom.MultiLineString, len(group))
			for i, f := range group {
				ml[i] = f.LineString
			}
			merged, err := MergeLineParts(ml, joinTolerance)
			if err != nil {
				// Parts without a shared junction keep their identity.
				work = append(work, group...)
				continue
			}
			joined := *group[0]
			joined.LineString = merged
			work = append(work, &joined)
		}
	} else {
		work = flowlines
	}

	var out []*Flowline
	for _, f := range work {
		for _, piece := range Segment(f.LineString, interval, minimum) {
			ff := *f
			ff.LineString = piece
			out = append(out, &ff)
		}
	}
	return out
}
