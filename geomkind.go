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

// GeomKind classifies the outcome of a geometric operation into a closed
// set of cases, so callers can switch on the result instead of inspecting
// runtime types.
type GeomKind int

const (
	// KindEmpty is a nil, point-like, or zero-extent result.
	KindEmpty GeomKind = iota
	// KindLine is a linear or zero-area degenerate result.
	KindLine
	// KindPolygon is a single-shell polygon, possibly with holes.
	KindPolygon
	// KindMultiPolygon is a polygon with more than one shell.
	KindMultiPolygon
	// KindInvalid is anything that needs repair before use.
	KindInvalid
)

// KindOf classifies g. Zero-area polygons classify as KindLine and
// polygons with degenerate rings as KindInvalid.
func KindOf(g geom.Geom) GeomKind {
	switch t := g.(type) {
	case nil:
		return KindEmpty
	case geom.Point, geom.MultiPoint:
		return KindEmpty
	case geom.LineString:
		if len(t) < 2 {
			return KindEmpty
		}
		return KindLine
	case geom.MultiLineString:
		if len(t) == 0 {
			return KindEmpty
		}
		return KindLine
	case geom.Polygon:
		return polygonKind(t)
	case geom.MultiPolygon:
		var flat geom.Polygon
		for _, p := range t {
			flat = append(flat, p...)
		}
		return polygonKind(flat)
	case *geom.Bounds:
		if t.Empty() {
			return KindEmpty
		}
		return KindPolygon
	default:
		return KindInvalid
	}
}

func polygonKind(p geom.Polygon) GeomKind {
	if len(p) == 0 {
		return KindEmpty
	}
	for _, ring := range p {
		if len(dropClosingPoint(ring)) < 3 {
			return KindInvalid
		}
	}
	if p.Area() == 0 {
		return KindLine
	}
	if len(polygonShells(p)) > 1 {
		return KindMultiPolygon
	}
	return KindPolygon
}

// polygonShells returns the indices of the rings of p that are exterior
// shells, determined by containment depth: a ring inside an even number of
// other rings is a shell, odd means hole.
func polygonShells(p geom.Polygon) []int {
	var shells []int
	for i, ring := range p {
		if len(ring) == 0 {
			continue
		}
		// A boundary vertex stands in for the ring: the ring's interior
		// point could fall inside one of its own holes.
		pt := ring[0]
		depth := 0
		for j, other := range p {
			if i == j {
				continue
			}
			if pointInRing(pt, other) {
				depth++
			}
		}
		if depth%2 == 0 {
			shells = append(shells, i)
		}
	}
	return shells
}
