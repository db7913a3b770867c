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
	"github.com/ctessum/geom/index/rtree"
)

// ClassifyConnectivity splits the corridor into the sub-areas bounded by
// its own rings and by crossing transportation features, then labels each
// sub-area by whether it still touches the active channel network. The
// result is at most two merged polygons, one connected and one
// disconnected; together with the corridor's interior islands they tile
// the corridor exactly.
//
// Classification is best effort: boundary edges or transportation features
// with unusable geometry are logged and skipped rather than failing the
// run.
func ClassifyConnectivity(network []*Flowline, corridors []geom.Polygon, roads, railroads []geom.LineString) ([]*FloodplainPolygon, error) {
	union := unionPolygons(corridors)
	if len(union) == 0 {
		return nil, nil
	}

	var edges []geom.LineString
	for _, ring := range union {
		ring = dropClosingPoint(ring)
		if len(ring) < 3 {
			logger.Warnf("corridor: skipping degenerate corridor boundary ring with %d vertices", len(ring))
			continue
		}
		closed := make(geom.LineString, 0, len(ring)+1)
		closed = append(closed, ring...)
		closed = append(closed, ring[0])
		edges = append(edges, closed)
	}

	// Clipped transportation supplies both the cut points for the
	// boundary edges and the closing edges of new sub-polygons.
	for _, line := range append(append([]geom.LineString{}, roads...), railroads...) {
		if len(line) < 2 {
			continue
		}
		edges = append(edges, toLineStrings(line.Clip(union))...)
	}

	faces := polygonize(nodeLines(edges))

	netTree := rtree.NewTree(25, 50)
	for _, f := range network {
		if len(f.LineString) >= 2 {
			netTree.Insert(f)
		}
	}

	// A reconstructed face can cover an interior island of the corridor,
	// or be the island itself. Clipping each face to the corridor union
	// removes hole area from the former and eliminates the latter.
	var connected, disconnected []geom.Polygon
	for _, face := range faces {
		clipped := face.Intersection(union)
		var poly geom.Polygon
		switch KindOf(clipped) {
		case KindEmpty, KindLine:
			continue
		case KindInvalid:
			repaired, err := RepairPolygon(clipped, 0)
			if err != nil {
				logger.Warnf("corridor: discarding unrepairable floodplain face: %v", err)
				continue
			}
			poly = repaired
		default:
			poly = clipped.(geom.Polygon)
		}
		if intersectsNetwork(netTree, poly) {
			connected = append(connected, poly)
		} else {
			disconnected = append(disconnected, poly)
		}
	}

	var out []*FloodplainPolygon
	for _, group := range []struct {
		polys []geom.Polygon
		conn  bool
	}{{connected, true}, {disconnected, false}} {
		if len(group.polys) == 0 {
			continue
		}
		out = append(out, &FloodplainPolygon{
			Polygon:   unionPolygons(group.polys),
			Connected: group.conn,
		})
	}
	return out, nil
}

// unionPolygons merges polys into one polygon, holes and disjoint shells
// included.
func unionPolygons(polys []geom.Polygon) geom.Polygon {
	var acc geom.Polygonal
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		if acc == nil {
			acc = p
			continue
		}
		acc = acc.Union(p)
	}
	if acc == nil {
		return nil
	}
	var out geom.Polygon
	for _, p := range acc.Polygons() {
		out = append(out, p...)
	}
	return out
}

// intersectsNetwork reports whether any reach crosses or enters the face.
func intersectsNetwork(tree *rtree.Rtree, face geom.Polygon) bool {
	for _, c := range tree.SearchIntersect(face.Bounds()) {
		f := c.(*Flowline)
		for _, p := range f.LineString {
			if p.Within(face) == geom.Inside {
				return true
			}
		}
		for _, part := range toLineStrings(f.LineString.Clip(face)) {
			if part.Length() > 0 {
				return true
			}
		}
	}
	return false
}
