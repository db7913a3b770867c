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
	"fmt"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Partition decomposes one level path's corridor polygon into DGOs: a
// Voronoi diagram is seeded with the level path's segmentation points and
// each cell is clipped to the corridor. Degenerate intersections (empty or
// linear results) are skipped silently, invalid results get one repair
// attempt before being skipped, and polygons smaller than minArea are
// discarded as slivers. A resulting polygon that contains no segmentation
// point is dropped with a warning, which is non-fatal.
func Partition(corridor geom.Polygon, points []*SegmentationPoint, minArea float64) ([]*DGO, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if !PolygonValid(corridor) {
		return nil, UnrepairableGeometryError{Geom: corridor}
	}

	env := corridor.Bounds().Copy()
	marginX := (env.Max.X-env.Min.X)*0.1 + 1
	marginY := (env.Max.Y-env.Min.Y)*0.1 + 1
	env.Min.X -= marginX
	env.Max.X += marginX
	env.Min.Y -= marginY
	env.Max.Y += marginY

	seeds := make([]geom.Point, len(points))
	for i, p := range points {
		seeds[i] = p.Point
	}
	cells := VoronoiCells(seeds, env)

	tree := rtree.NewTree(25, 50)
	for _, p := range points {
		tree.Insert(p)
	}

	var dgos []*DGO
	for i, cell := range cells {
		if cell == nil {
			continue
		}
		isect := cell.Intersection(corridor)
		var poly geom.Polygon
		switch KindOf(isect) {
		case KindEmpty, KindLine:
			continue
		case KindInvalid:
			repaired, err := RepairPolygon(isect, minArea)
			if err != nil {
				logger.WithFields(logFields{
					"level_path": points[i].LevelPath,
					"seg_dist":   points[i].SegDistance,
				}).Warnf("corridor: discarding unrepairable cell intersection: %v", err)
				continue
			}
			poly = repaired
		default:
			poly = isect.(geom.Polygon)
		}
		if minArea > 0 && poly.Area() < minArea {
			continue
		}
		sp := pointWithin(tree, poly)
		if sp == nil {
			logger.WithFields(logFields{
				"level_path": points[i].LevelPath,
			}).Warn("corridor: dropping segment polygon containing no segmentation point")
			continue
		}
		dgos = append(dgos, &DGO{
			Polygon:     poly,
			LevelPath:   sp.LevelPath,
			SegDistance: sp.SegDistance,
			Metrics:     make(map[string]float64),
		})
	}
	return dgos, nil
}

// pointWithin returns the segmentation point inside poly, or nil. The
// Voronoi construction guarantees at most one.
func pointWithin(tree *rtree.Rtree, poly geom.Polygon) *SegmentationPoint {
	for _, c := range tree.SearchIntersect(poly.Bounds()) {
		sp := c.(*SegmentationPoint)
		if sp.Point.Within(poly) != geom.Outside {
			return sp
		}
	}
	return nil
}

// AttributeMetrics computes SegmentArea and CenterlineLength for each DGO
// in the metric projection. When reaches from more than one level path
// cross a DGO, the centerline is restricted to the level path with the
// greatest total drainage area; ties break to the lowest level path
// identifier.
func AttributeMetrics(dgos []*DGO, network []*Flowline, mt *MetricTransform) error {
	tree := rtree.NewTree(25, 50)
	for _, f := range network {
		if len(f.LineString) >= 2 {
			tree.Insert(f)
		}
	}
	for _, dgo := range dgos {
		mg, err := mt.Project(dgo.Polygon)
		if err != nil {
			return fmt.Errorf("corridor: while projecting segment polygon for level path %s: %v", dgo.LevelPath, err)
		}
		metricPoly, ok := mg.(geom.Polygon)
		if !ok {
			return UnsupportedGeometryError{Geom: mg}
		}
		dgo.SegmentArea = metricPoly.Area()

		// Clipped centerline length per candidate level path.
		type candidate struct {
			length   float64
			drainage float64
		}
		byLevelPath := make(map[string]*candidate)
		for _, c := range tree.SearchIntersect(dgo.Bounds()) {
			f := c.(*Flowline)
			clipped := f.LineString.Clip(dgo.Polygon)
			var length float64
			for _, part := range toLineStrings(clipped) {
				mp, err := mt.Project(part)
				if err != nil {
					continue
				}
				length += mp.(geom.LineString).Length()
			}
			if length == 0 {
				continue
			}
			cand, ok := byLevelPath[f.LevelPath]
			if !ok {
				cand = &candidate{}
				byLevelPath[f.LevelPath] = cand
			}
			cand.length += length
			if f.TotalDrainageArea > cand.drainage {
				cand.drainage = f.TotalDrainageArea
			}
		}
		if len(byLevelPath) == 0 {
			continue
		}
		paths := make([]string, 0, len(byLevelPath))
		for lp := range byLevelPath {
			paths = append(paths, lp)
		}
		sort.Slice(paths, func(i, j int) bool {
			a, b := byLevelPath[paths[i]], byLevelPath[paths[j]]
			if a.drainage != b.drainage {
				return a.drainage > b.drainage
			}
			return paths[i] < paths[j]
		})
		dgo.CenterlineLength = byLevelPath[paths[0]].length
	}
	return nil
}
