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

	"gonum.org/v1/gonum/floats"
)

// MetricKind selects how a DGO metric aggregates over a window.
type MetricKind int

const (
	// MetricSum totals the metric over the window (counts, lengths).
	MetricSum MetricKind = iota
	// MetricDensity divides the summed metric by the summed window area.
	MetricDensity
	// MetricAreaWeighted averages the metric weighted by segment area.
	MetricAreaWeighted
)

// A MetricSpec names one DGO metric and how to aggregate it.
type MetricSpec struct {
	Name string
	Kind MetricKind
}

// AggregateWindows produces one IGO per segmentation point, aggregating
// the metrics of all DGOs on the same level path whose SegDistance falls
// within half the window width on either side of the point. A metric whose
// window has a zero denominator, or that no DGO in the window carries,
// comes out NaN to distinguish "unmeasured" from zero. Points and DGOs
// must belong to a single level path whose metric attribution has already
// completed.
func AggregateWindows(points []*SegmentationPoint, dgos []*DGO, width float64, specs []MetricSpec) []*IGO {
	sorted := make([]*DGO, len(dgos))
	copy(sorted, dgos)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SegDistance < sorted[j].SegDistance })

	igos := make([]*IGO, 0, len(points))
	for _, pt := range points {
		lo := pt.SegDistance - width/2
		hi := pt.SegDistance + width/2
		first := sort.Search(len(sorted), func(i int) bool { return sorted[i].SegDistance >= lo })
		var window []*DGO
		for i := first; i < len(sorted) && sorted[i].SegDistance <= hi; i++ {
			if sorted[i].LevelPath == pt.LevelPath {
				window = append(window, sorted[i])
			}
		}
		igo := &IGO{
			Point:       pt.Point,
			LevelPath:   pt.LevelPath,
			SegDistance: pt.SegDistance,
			Metrics:     make(map[string]float64, len(specs)),
		}
		windowArea := 0.
		for _, d := range window {
			windowArea += d.SegmentArea
		}
		for _, spec := range specs {
			igo.Metrics[spec.Name] = aggregate(spec, window, windowArea)
		}
		igos = append(igos, igo)
	}
	return igos
}

func aggregate(spec MetricSpec, window []*DGO, windowArea float64) float64 {
	var vals, areas []float64
	for _, d := range window {
		v, ok := d.Metrics[spec.Name]
		if !ok {
			continue
		}
		vals = append(vals, v)
		areas = append(areas, d.SegmentArea)
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	switch spec.Kind {
	case MetricDensity:
		if windowArea == 0 {
			return math.NaN()
		}
		return floats.Sum(vals) / windowArea
	case MetricAreaWeighted:
		den := floats.Sum(areas)
		if den == 0 {
			return math.NaN()
		}
		num := 0.
		for i, v := range vals {
			num += v * areas[i]
		}
		return num / den
	default:
		return floats.Sum(vals)
	}
}
