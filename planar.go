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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

const (
	// planarEps is the parametric tolerance for segment intersection.
	planarEps = 1e-12

	// planarSnap is the coordinate quantum used to identify coincident
	// vertices when reconstructing polygons.
	planarSnap = 1e-6
)

func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// signedArea returns the signed shoelace area of a ring; positive for
// counterclockwise winding. The ring may or may not repeat its first point.
func signedArea(ring []geom.Point) float64 {
	ring = dropClosingPoint(ring)
	if len(ring) < 3 {
		return 0
	}
	sum := 0.
	p0 := ring[len(ring)-1]
	for _, p1 := range ring {
		sum += p0.X*p1.Y - p1.X*p0.Y
		p0 = p1
	}
	return sum / 2
}

// dropClosingPoint removes a repeated final vertex from a ring.
func dropClosingPoint(ring []geom.Point) []geom.Point {
	for len(ring) > 1 && ring[0].Equals(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	return ring
}

// pointInRing reports whether pt is inside the ring by ray casting.
// Points on the edge count as inside.
func pointInRing(pt geom.Point, ring []geom.Point) bool {
	ring = dropClosingPoint(ring)
	if len(ring) < 3 {
		return false
	}
	in := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		a, b := ring[i], ring[j]
		if onSegment(pt, a, b) {
			return true
		}
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if pt.X < x {
				in = !in
			}
		}
		j = i
	}
	return in
}

func onSegment(p, a, b geom.Point) bool {
	if math.Abs(cross(a, b, p)) > planarSnap*math.Hypot(b.X-a.X, b.Y-a.Y) {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-planarSnap && p.X <= math.Max(a.X, b.X)+planarSnap &&
		p.Y >= math.Min(a.Y, b.Y)-planarSnap && p.Y <= math.Max(a.Y, b.Y)+planarSnap
}

// segRef is one line segment held in a spatial index.
// segRef is one two-point segment in an rtree, identified by insertion
// order.
type segRef struct {
	geom.LineString
	id int
}

func newSegRef(a, b geom.Point, id int) *segRef {
	return &segRef{LineString: geom.LineString{a, b}, id: id}
}

func (s *segRef) ends() (a, b geom.Point) {
	return s.LineString[0], s.LineString[1]
}

// nodeLines splits every segment of the input lines at each point where it
// intersects another segment, returning a fully noded set of two-point
// LineStrings suitable for polygon reconstruction.
func nodeLines(lines []geom.LineString) []geom.LineString {
	var segs []*segRef
	for _, l := range lines {
		for i := 0; i < len(l)-1; i++ {
			a, b := l[i], l[i+1]
			if math.Hypot(b.X-a.X, b.Y-a.Y) < planarSnap {
				continue
			}
			segs = append(segs, newSegRef(a, b, len(segs)))
		}
	}
	tree := rtree.NewTree(25, 50)
	for _, s := range segs {
		tree.Insert(s)
	}
	cuts := make([][]geom.Point, len(segs))
	for _, s := range segs {
		sa, sb := s.ends()
		for _, c := range tree.SearchIntersect(s.Bounds()) {
			o := c.(*segRef)
			if o.id <= s.id {
				continue
			}
			oa, ob := o.ends()
			pts, onS, onO := segmentIntersection(sa, sb, oa, ob)
			for k, p := range pts {
				if onS[k] {
					cuts[s.id] = append(cuts[s.id], p)
				}
				if onO[k] {
					cuts[o.id] = append(cuts[o.id], p)
				}
			}
		}
	}
	var out []geom.LineString
	for _, s := range segs {
		sa, sb := s.ends()
		out = append(out, splitSegment(sa, sb, cuts[s.id])...)
	}
	return out
}

// segmentIntersection finds the points where segment (a1,b1) meets segment
// (a2,b2). For each point, onFirst/onSecond report whether it falls in the
// interior of the respective segment (an endpoint needs no cut). Collinear
// overlaps contribute the overlapping endpoints.
func segmentIntersection(a1, b1, a2, b2 geom.Point) (pts []geom.Point, onFirst, onSecond []bool) {
	r := geom.Point{X: b1.X - a1.X, Y: b1.Y - a1.Y}
	s := geom.Point{X: b2.X - a2.X, Y: b2.Y - a2.Y}
	denom := r.X*s.Y - r.Y*s.X
	qp := geom.Point{X: a2.X - a1.X, Y: a2.Y - a1.Y}
	scale := math.Max(math.Hypot(r.X, r.Y), math.Hypot(s.X, s.Y))
	if math.Abs(denom) <= planarEps*scale*scale {
		// Parallel. Only collinear overlaps matter.
		if math.Abs(qp.X*r.Y-qp.Y*r.X) > planarSnap*scale {
			return nil, nil, nil
		}
		add := func(p geom.Point, t float64, first bool) {
			if t <= planarEps || t >= 1-planarEps {
				return
			}
			pts = append(pts, p)
			onFirst = append(onFirst, first)
			onSecond = append(onSecond, !first)
		}
		add(a2, segParam(a1, b1, a2), true)
		add(b2, segParam(a1, b1, b2), true)
		add(a1, segParam(a2, b2, a1), false)
		add(b1, segParam(a2, b2, b1), false)
		return pts, onFirst, onSecond
	}
	t := (qp.X*s.Y - qp.Y*s.X) / denom
	u := (qp.X*r.Y - qp.Y*r.X) / denom
	if t < -planarEps || t > 1+planarEps || u < -planarEps || u > 1+planarEps {
		return nil, nil, nil
	}
	p := geom.Point{X: a1.X + t*r.X, Y: a1.Y + t*r.Y}
	return []geom.Point{p},
		[]bool{t > planarEps && t < 1-planarEps},
		[]bool{u > planarEps && u < 1-planarEps}
}

// segParam returns the normalized position of p along segment (a,b).
func segParam(a, b, p geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		return 0
	}
	return ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / d2
}

// splitSegment cuts segment (a,b) at the given interior points, returning
// the pieces in order along the segment.
func splitSegment(a, b geom.Point, cuts []geom.Point) []geom.LineString {
	if len(cuts) == 0 {
		return []geom.LineString{{a, b}}
	}
	type cut struct {
		t float64
		p geom.Point
	}
	cs := make([]cut, 0, len(cuts))
	for _, p := range cuts {
		cs = append(cs, cut{t: segParam(a, b, p), p: p})
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].t < cs[j].t })
	var out []geom.LineString
	prev := a
	for _, c := range cs {
		if math.Hypot(c.p.X-prev.X, c.p.Y-prev.Y) >= planarSnap {
			out = append(out, geom.LineString{prev, c.p})
			prev = c.p
		}
	}
	if math.Hypot(b.X-prev.X, b.Y-prev.Y) >= planarSnap {
		out = append(out, geom.LineString{prev, b})
	}
	if len(out) == 0 {
		return []geom.LineString{{a, b}}
	}
	return out
}

type vertexKey struct{ x, y int64 }

func keyOf(p geom.Point) vertexKey {
	return vertexKey{
		x: int64(math.Round(p.X / planarSnap)),
		y: int64(math.Round(p.Y / planarSnap)),
	}
}

type planarVertex struct {
	pt        geom.Point
	neighbors []int // indices into the vertex slice, angle-sorted
	angles    []float64
}

// polygonize reconstructs every minimal enclosed polygon from a noded
// planar line arrangement, walking half edges clockwise at each vertex so
// each bounded face is traced once counterclockwise. The unbounded face
// comes out clockwise and is discarded along with zero-area walks.
func polygonize(lines []geom.LineString) []geom.Polygon {
	index := make(map[vertexKey]int)
	var verts []*planarVertex
	vertexOf := func(p geom.Point) int {
		k := keyOf(p)
		if i, ok := index[k]; ok {
			return i
		}
		index[k] = len(verts)
		verts = append(verts, &planarVertex{pt: p})
		return len(verts) - 1
	}
	type undirected struct{ u, v int }
	edgeSet := make(map[undirected]bool)
	for _, l := range lines {
		for i := 0; i < len(l)-1; i++ {
			u := vertexOf(l[i])
			v := vertexOf(l[i+1])
			if u == v {
				continue
			}
			k := undirected{u, v}
			if u > v {
				k = undirected{v, u}
			}
			if edgeSet[k] {
				continue
			}
			edgeSet[k] = true
			verts[u].neighbors = append(verts[u].neighbors, v)
			verts[v].neighbors = append(verts[v].neighbors, u)
		}
	}

	// Prune dangling stubs: a dead-end edge cannot bound a face.
	pruned := true
	for pruned {
		pruned = false
		for i, v := range verts {
			if len(v.neighbors) != 1 {
				continue
			}
			n := v.neighbors[0]
			v.neighbors = nil
			nb := verts[n].neighbors[:0]
			for _, w := range verts[n].neighbors {
				if w != i {
					nb = append(nb, w)
				}
			}
			verts[n].neighbors = nb
			pruned = true
		}
	}

	for _, v := range verts {
		sort.Slice(v.neighbors, func(i, j int) bool {
			return v.angleTo(verts[v.neighbors[i]]) < v.angleTo(verts[v.neighbors[j]])
		})
		v.angles = make([]float64, len(v.neighbors))
		for i, n := range v.neighbors {
			v.angles[i] = v.angleTo(verts[n])
		}
	}

	type directed struct{ u, v int }
	used := make(map[directed]bool)
	var polys []geom.Polygon
	maxSteps := 4 * len(edgeSet)

	for _, start := range sortedDirectedEdges(verts) {
		if used[directed{start.u, start.v}] {
			continue
		}
		ring := []geom.Point{verts[start.u].pt}
		u, v := start.u, start.v
		ok := false
		for step := 0; step <= maxSteps; step++ {
			used[directed{u, v}] = true
			ring = append(ring, verts[v].pt)
			w := verts[v].clockwiseFrom(verts[v].angleOf(u))
			if w < 0 {
				break
			}
			u, v = v, w
			if u == start.u && v == start.v {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		ring = ring[:len(ring)-1] // the walk repeats the start vertex
		if signedArea(ring) > planarSnap {
			polys = append(polys, geom.Polygon{ring})
		}
	}
	return polys
}

func (v *planarVertex) angleTo(o *planarVertex) float64 {
	return math.Atan2(o.pt.Y-v.pt.Y, o.pt.X-v.pt.X)
}

func (v *planarVertex) angleOf(neighbor int) float64 {
	for i, n := range v.neighbors {
		if n == neighbor {
			return v.angles[i]
		}
	}
	return 0
}

// clockwiseFrom returns the neighbor whose outgoing angle immediately
// precedes the given angle in counterclockwise order, wrapping around.
func (v *planarVertex) clockwiseFrom(angle float64) int {
	if len(v.neighbors) == 0 {
		return -1
	}
	best := -1
	var bestAngle float64
	for i, a := range v.angles {
		if a < angle-planarEps {
			if best == -1 || a > bestAngle {
				best = i
				bestAngle = a
			}
		}
	}
	if best == -1 {
		// The incoming direction is the smallest angle here; wrap around
		// to the largest.
		for i, a := range v.angles {
			if best == -1 || a > bestAngle {
				best = i
				bestAngle = a
			}
		}
	}
	if best == -1 {
		return -1
	}
	return v.neighbors[best]
}

type directedEdge struct{ u, v int }

func sortedDirectedEdges(verts []*planarVertex) []directedEdge {
	var edges []directedEdge
	for u, v := range verts {
		for _, n := range v.neighbors {
			edges = append(edges, directedEdge{u, n})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].u != edges[j].u {
			return edges[i].u < edges[j].u
		}
		return edges[i].v < edges[j].v
	})
	return edges
}

// toLineStrings flattens the linear parts of a geometric operation result.
func toLineStrings(g geom.Geom) []geom.LineString {
	switch t := g.(type) {
	case geom.LineString:
		if len(t) >= 2 {
			return []geom.LineString{t}
		}
	case geom.MultiLineString:
		var out []geom.LineString
		for _, l := range t {
			if len(l) >= 2 {
				out = append(out, l)
			}
		}
		return out
	case geom.GeometryCollection:
		var out []geom.LineString
		for _, gg := range t {
			out = append(out, toLineStrings(gg)...)
		}
		return out
	}
	return nil
}
