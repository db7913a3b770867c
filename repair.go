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
	"errors"
	"math"

	"github.com/cenkalti/backoff/v4"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// joinTolerance is the maximum gap between line-part endpoints that still
// counts as a shared junction when merging multi-part lines.
const joinTolerance = 1e-6

// repairAttempts caps the escalating polygon repair strategies.
const repairAttempts = 3

var errStillInvalid = errors.New("corridor: geometry still invalid after repair attempt")

// RepairLine normalizes g to a single-part LineString. MultiLineStrings are
// merged end to end; parts that cannot be joined produce a
// DisjointPartsError. Any other geometry type is an UnsupportedGeometryError.
func RepairLine(g geom.Geom) (geom.LineString, error) {
	switch t := g.(type) {
	case geom.LineString:
		return dedupVertices(t), nil
	case geom.MultiLineString:
		return MergeLineParts(t, joinTolerance)
	default:
		return nil, UnsupportedGeometryError{Geom: g}
	}
}

// MergeLineParts joins the parts of ml end to end into a single LineString,
// reversing parts as needed. Endpoints within tol of each other count as
// coincident. If any part remains unconnected the result is a
// DisjointPartsError.
func MergeLineParts(ml geom.MultiLineString, tol float64) (geom.LineString, error) {
	var parts []geom.LineString
	for _, p := range ml {
		p = dedupVertices(p)
		if len(p) >= 2 {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, UnsupportedGeometryError{Geom: ml}
	}
	out := parts[0]
	rest := parts[1:]
	for len(rest) > 0 {
		joined := false
		for i, p := range rest {
			switch {
			case near(out[len(out)-1], p[0], tol):
				out = append(out, p[1:]...)
			case near(out[len(out)-1], p[len(p)-1], tol):
				out = append(out, reverseLine(p)[1:]...)
			case near(out[0], p[len(p)-1], tol):
				out = append(p[:len(p):len(p)], out[1:]...)
			case near(out[0], p[0], tol):
				out = append(reverseLine(p), out[1:]...)
			default:
				continue
			}
			rest = append(rest[:i], rest[i+1:]...)
			joined = true
			break
		}
		if !joined {
			return nil, DisjointPartsError{Parts: len(rest) + 1}
		}
	}
	return out, nil
}

// RepairPolygon normalizes g to a planar-valid Polygon, escalating through
// a bounded sequence of repair strategies: accept as-is, self-union, then
// simplify-and-self-union. simplifyTol is the simplification distance used
// by the last resort. Failure is an UnrepairableGeometryError.
func RepairPolygon(g geom.Geom, simplifyTol float64) (geom.Polygon, error) {
	var p geom.Polygon
	switch t := g.(type) {
	case geom.Polygon:
		p = t
	case geom.MultiPolygon:
		for _, pp := range t {
			p = append(p, pp...)
		}
	case *geom.Bounds:
		p = densifyBounds(t)
	default:
		return nil, UnsupportedGeometryError{Geom: g}
	}

	attempt := 0
	var out geom.Polygon
	try := func() error {
		attempt++
		candidate := p
		switch attempt {
		case 2:
			candidate = selfUnion(p)
		case 3:
			simplified, okp := p.Simplify(simplifyTol).(geom.Polygon)
			if !okp {
				return errStillInvalid
			}
			candidate = selfUnion(simplified)
		}
		if !PolygonValid(candidate) {
			return errStillInvalid
		}
		out = candidate
		return nil
	}
	err := backoff.Retry(try, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, repairAttempts-1))
	if err != nil {
		return nil, UnrepairableGeometryError{Geom: g}
	}
	return out, nil
}

// selfUnion resolves self-intersections by unioning the polygon with
// itself, the polyclip equivalent of a zero-distance buffer.
func selfUnion(p geom.Polygon) geom.Polygon {
	var out geom.Polygon
	for _, pp := range p.Union(p).Polygons() {
		out = append(out, pp...)
	}
	return out
}

// PolygonValid reports whether p has positive area, no degenerate rings,
// and no ring self-intersections.
func PolygonValid(p geom.Polygon) bool {
	if len(p) == 0 || p.Area() <= 0 {
		return false
	}
	for _, ring := range p {
		ring = dropClosingPoint(ring)
		if len(ring) < 3 {
			return false
		}
		if ringSelfIntersects(ring) {
			return false
		}
	}
	return true
}

// ringSelfIntersects checks for improper crossings between the
// non-adjacent edges of a ring.
func ringSelfIntersects(ring []geom.Point) bool {
	n := len(ring)
	segs := make([]*segRef, 0, n)
	for i := 0; i < n; i++ {
		segs = append(segs, newSegRef(ring[i], ring[(i+1)%n], i))
	}
	tree := rtree.NewTree(25, 50)
	for _, s := range segs {
		tree.Insert(s)
	}
	for _, s := range segs {
		sa, sb := s.ends()
		for _, c := range tree.SearchIntersect(s.Bounds()) {
			o := c.(*segRef)
			if o.id <= s.id {
				continue
			}
			adjacent := o.id == s.id+1 || (s.id == 0 && o.id == n-1)
			oa, ob := o.ends()
			pts, onS, onO := segmentIntersection(sa, sb, oa, ob)
			for k := range pts {
				if adjacent && !onS[k] && !onO[k] {
					continue // shared vertex of consecutive edges
				}
				return true
			}
		}
	}
	return false
}

func dedupVertices(l geom.LineString) geom.LineString {
	if len(l) == 0 {
		return l
	}
	out := geom.LineString{l[0]}
	for _, p := range l[1:] {
		if !near(p, out[len(out)-1], joinTolerance) {
			out = append(out, p)
		}
	}
	return out
}

func reverseLine(l geom.LineString) geom.LineString {
	out := make(geom.LineString, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

func near(a, b geom.Point, tol float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tol
}

func densifyBounds(b *geom.Bounds) geom.Polygon {
	return geom.Polygon{{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
	}}
}
