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

/*
Package corridor decomposes a classified river network and its valley-bottom
corridor into discrete, ordered geographic segments for per-reach and
per-window metric reporting. It places regularly spaced segmentation points
along the network, partitions the corridor polygon into per-segment areal
units (discrete geographic objects, or DGOs) with a Voronoi-seeded
decomposition, classifies corridor sub-areas as hydrologically connected or
disconnected from the active channel, and aggregates DGO metrics into
sliding-window summaries (integrated geographic objects, or IGOs).
*/
package corridor

import (
	"github.com/ctessum/geom"
)

// Version gives the version number.
const Version = "1.0.0"

// A Flowline is one classified reach of the stream network. Its geometry is
// a single LineString after repair; multi-part inputs are merged or rejected
// before they get here.
type Flowline struct {
	geom.LineString

	// FCode is the NHD feature classification code.
	FCode int

	// Name is the GNIS name of the reach, if any.
	Name string

	// LevelPath identifies the contiguous stream course this reach
	// belongs to.
	LevelPath string

	// TotalDrainageArea and DivergentDrainageArea are upstream
	// drainage areas [km²].
	TotalDrainageArea     float64
	DivergentDrainageArea float64
}

// A SegmentationPoint marks one regularly spaced station along a level path.
// Points are immutable once created and owned by the run that created them.
type SegmentationPoint struct {
	geom.Point

	LevelPath string

	// SegDistance is the along-path distance [m] from the start of the
	// level path.
	SegDistance float64
}

// A DGO (discrete geographic object) is one polygon segment of a corridor,
// owned by exactly one level path and along-path distance.
type DGO struct {
	geom.Polygon

	LevelPath   string
	SegDistance float64

	// CenterlineLength is the length [m] of the network geometry inside
	// this DGO, restricted to a single level path.
	CenterlineLength float64

	// SegmentArea is the planar area [m²] of the DGO in the metric
	// spatial reference.
	SegmentArea float64

	// Metrics holds per-tool scalar attributes keyed by name. A key that
	// is absent was not measured for this DGO.
	Metrics map[string]float64
}

// An IGO (integrated geographic object) is a point at a segmentation point
// location carrying window-aggregated metrics from the DGOs whose
// SegDistance falls within half the window width on either side.
type IGO struct {
	geom.Point

	LevelPath   string
	SegDistance float64

	// Metrics holds the aggregated values. NaN marks a metric whose
	// window had a zero denominator ("unmeasured", as opposed to zero).
	Metrics map[string]float64
}

// A FloodplainPolygon is one of the (at most two) merged corridor sub-areas
// produced by connectivity classification.
type FloodplainPolygon struct {
	geom.Polygon

	// Connected reports whether the area intersects the active channel
	// network.
	Connected bool
}

// StreamSize classifies a level path by upstream drainage area. It selects
// the moving-window width used when aggregating DGO metrics.
type StreamSize int

// Stream size classes, smallest to largest.
const (
	StreamSmall StreamSize = iota
	StreamMedium
	StreamLarge
	StreamVeryLarge
	StreamHuge
)

// Config holds the parameters for a segmentation run.
type Config struct {
	// SegmentationInterval is the spacing [m] between segmentation
	// points. Zero or negative disables segmentation.
	SegmentationInterval float64

	// MinimumSegmentLength is the shortest trailing segment [m] allowed
	// when cutting a line.
	MinimumSegmentLength float64

	// MinimumFeatureArea is the sliver threshold [m²]; corridor
	// intersection results smaller than this are discarded.
	MinimumFeatureArea float64

	// WindowWidths gives the moving-window width [m] for each stream
	// size class.
	WindowWidths [5]float64

	// StreamSizeBreaks are the drainage-area thresholds [km²] between
	// consecutive stream size classes.
	StreamSizeBreaks [4]float64

	// MetricProj is the spatial reference used for distance and area
	// calculations, in Proj4 format. If empty, a UTM zone is selected
	// from the data's longitude.
	MetricProj string

	// MergeNamed groups same-named features into one logical line before
	// cutting. Off by default: the junction-adjacency rule for
	// multi-segment names has not been settled, so grouping only joins
	// chains that connect end to end.
	MergeNamed bool
}

// DefaultConfig returns a Config with the standard interval, sliver
// threshold, and window width lookup.
func DefaultConfig() Config {
	return Config{
		SegmentationInterval: 200,
		MinimumSegmentLength: 50,
		MinimumFeatureArea:   1,
		WindowWidths:         [5]float64{200, 400, 1200, 2000, 8000},
		StreamSizeBreaks:     [4]float64{25, 260, 1000, 5000},
	}
}

// StreamSizeOf returns the stream size class for the given upstream
// drainage area [km²].
func (c *Config) StreamSizeOf(drainageArea float64) StreamSize {
	for i, brk := range c.StreamSizeBreaks {
		if drainageArea < brk {
			return StreamSize(i)
		}
	}
	return StreamHuge
}

// WindowWidth returns the moving-window width [m] for the given upstream
// drainage area [km²].
func (c *Config) WindowWidth(drainageArea float64) float64 {
	return c.WindowWidths[c.StreamSizeOf(drainageArea)]
}
