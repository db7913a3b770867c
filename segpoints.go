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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// utmZone returns the UTM zone number containing longitude lon.
func utmZone(lon float64) int {
	z := int(math.Floor((lon+180)/6)) + 1
	if z < 1 {
		z = 1
	}
	if z > 60 {
		z = 60
	}
	return z
}

// A MetricTransform reprojects geometry between a dataset's native spatial
// reference and a metric one, so distances and areas come out in meters. A
// nil MetricTransform is the identity, for data that is already metric.
type MetricTransform struct {
	to, from proj.Transformer
}

// NewMetricTransform builds a MetricTransform from the native spatial
// reference to metricProj (Proj4 format). If metricProj is empty, a UTM
// zone is selected from ref, which must be the data's approximate location
// in the native reference.
func NewMetricTransform(native *proj.SR, metricProj string, ref geom.Point) (*MetricTransform, error) {
	if metricProj == "" {
		lonlat, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
		if err != nil {
			return nil, fmt.Errorf("corridor: while parsing longlat reference: %v", err)
		}
		toLonLat, err := native.NewTransform(lonlat)
		if err != nil {
			return nil, fmt.Errorf("corridor: while creating longlat transform: %v", err)
		}
		g, err := ref.Transform(toLonLat)
		if err != nil {
			return nil, fmt.Errorf("corridor: while locating UTM zone: %v", err)
		}
		ll := g.(geom.Point)
		metricProj = fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", utmZone(ll.X))
		if ll.Y < 0 {
			metricProj += " +south"
		}
	}
	metric, err := proj.Parse(metricProj)
	if err != nil {
		return nil, fmt.Errorf("corridor: while parsing metric projection: %v", err)
	}
	to, err := native.NewTransform(metric)
	if err != nil {
		return nil, fmt.Errorf("corridor: while creating metric transform: %v", err)
	}
	from, err := metric.NewTransform(native)
	if err != nil {
		return nil, fmt.Errorf("corridor: while creating inverse metric transform: %v", err)
	}
	return &MetricTransform{to: to, from: from}, nil
}

// Project converts g from the native spatial reference to the metric one.
func (mt *MetricTransform) Project(g geom.Geom) (geom.Geom, error) {
	if mt == nil || mt.to == nil {
		return g, nil
	}
	return g.Transform(mt.to)
}

// Unproject converts g from the metric spatial reference back to the
// native one.
func (mt *MetricTransform) Unproject(g geom.Geom) (geom.Geom, error) {
	if mt == nil || mt.from == nil {
		return g, nil
	}
	return g.Transform(mt.from)
}

// GenerateSegmentationPoints merges the reaches of one level path into a
// single logical line, walks it in the metric projection starting at
// distance/2, and emits a point every distance meters. Reaches that do not
// join end to end are walked per component with the along-path distance
// accumulating across components; zero-length components are skipped.
// Output points are in the native spatial reference.
func GenerateSegmentationPoints(levelPath string, reaches []*Flowline, distance float64, mt *MetricTransform) ([]*SegmentationPoint, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("corridor: segmentation distance must be positive, got %g", distance)
	}
	if len(reaches) == 0 {
		return nil, nil
	}
	ml := make(geom.MultiLineString, 0, len(reaches))
	for _, f := range reaches {
		if len(f.LineString) >= 2 {
			ml = append(ml, f.LineString)
		}
	}
	if len(ml) == 0 {
		return nil, nil
	}
	var merged geom.Geom
	if line, err := MergeLineParts(ml, joinTolerance); err == nil {
		merged = line
	} else {
		merged = ml
	}
	projected, err := mt.Project(merged)
	if err != nil {
		return nil, fmt.Errorf("corridor: while projecting level path %s: %v", levelPath, err)
	}
	var components []geom.LineString
	switch t := projected.(type) {
	case geom.LineString:
		components = []geom.LineString{t}
	case geom.MultiLineString:
		components = t
	default:
		return nil, UnsupportedGeometryError{Geom: projected}
	}

	var points []*SegmentationPoint
	base := 0.
	for _, comp := range components {
		length := comp.Length()
		if length == 0 {
			continue
		}
		// d < length: a station exactly at the component's end would
		// own a zero-width cell at the corridor edge.
		for d := distance / 2; d < length; d += distance {
			p := PointAlong(comp, d)
			native, err := mt.Unproject(p)
			if err != nil {
				return nil, fmt.Errorf("corridor: while unprojecting point on level path %s: %v", levelPath, err)
			}
			points = append(points, &SegmentationPoint{
				Point:       native.(geom.Point),
				LevelPath:   levelPath,
				SegDistance: base + d,
			})
		}
		base += length
	}
	return points, nil
}
