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
	"github.com/ctessum/geom"
)

// VoronoiCells computes the Voronoi cell of each seed clipped to the given
// envelope, returned in seed order. Each cell is the intersection of the
// envelope with the half planes closer to its seed than to every other
// seed, so cells are convex and together tile the envelope exactly. A
// single seed owns the whole envelope. Of coincident seeds only the first
// gets a cell; the rest get nil, so no two cells ever cover the same seed.
func VoronoiCells(seeds []geom.Point, envelope *geom.Bounds) []geom.Polygon {
	ring := []geom.Point{
		{X: envelope.Min.X, Y: envelope.Min.Y},
		{X: envelope.Max.X, Y: envelope.Min.Y},
		{X: envelope.Max.X, Y: envelope.Max.Y},
		{X: envelope.Min.X, Y: envelope.Max.Y},
	}
	cells := make([]geom.Polygon, len(seeds))
	for i, a := range seeds {
		dup := false
		for j := 0; j < i && !dup; j++ {
			dup = a.Equals(seeds[j])
		}
		if dup {
			continue
		}
		cell := ring
		for j, b := range seeds {
			if i == j || a.Equals(b) {
				continue
			}
			cell = clipHalfPlane(cell, a, b)
			if len(cell) == 0 {
				break
			}
		}
		if len(cell) >= 3 {
			cells[i] = geom.Polygon{cell}
		}
	}
	return cells
}

// clipHalfPlane clips a convex ring to the half plane of points at least
// as close to a as to b (Sutherland–Hodgman against the perpendicular
// bisector of a and b).
func clipHalfPlane(ring []geom.Point, a, b geom.Point) []geom.Point {
	mx := (a.X + b.X) / 2
	my := (a.Y + b.Y) / 2
	dx := b.X - a.X
	dy := b.Y - a.Y
	// side is negative on a's side of the bisector, linear in p.
	side := func(p geom.Point) float64 {
		return (p.X-mx)*dx + (p.Y-my)*dy
	}
	var out []geom.Point
	n := len(ring)
	for i := 0; i < n; i++ {
		cur, next := ring[i], ring[(i+1)%n]
		sc, sn := side(cur), side(next)
		if sc <= 0 {
			out = append(out, cur)
		}
		if (sc < 0 && sn > 0) || (sc > 0 && sn < 0) {
			t := sc / (sc - sn)
			out = append(out, geom.Point{
				X: cur.X + t*(next.X-cur.X),
				Y: cur.Y + t*(next.Y-cur.Y),
			})
		}
	}
	return out
}
