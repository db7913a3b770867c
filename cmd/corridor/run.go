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

package main

import (
	"fmt"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/riverscapes/corridor"
	"github.com/sirupsen/logrus"
)

// Run executes the full pipeline: load the inputs, process every level
// path, classify floodplain connectivity, and write the outputs to
// outputDir.
func Run(cfg corridor.Config, metrics []corridor.MetricSpec,
	flowlineFile, corridorFile, roadFile, railFile, outputDir string) error {
	flowSrc, err := corridor.OpenFlowlineShapefile(flowlineFile)
	if err != nil {
		return err
	}
	defer flowSrc.Close()
	sr, err := flowSrc.SR()
	if err != nil {
		return fmt.Errorf("corridor: reading flowline spatial reference: %v", err)
	}
	flowlines, err := corridor.LoadFlowlines(flowSrc)
	if err != nil {
		return err
	}
	logrus.WithField("count", len(flowlines)).Info("corridor: loaded flowlines")

	corrSrc, err := corridor.OpenCorridorShapefile(corridorFile)
	if err != nil {
		return err
	}
	defer corrSrc.Close()
	corridors, err := corridor.LoadCorridors(corrSrc)
	if err != nil {
		return err
	}
	logrus.WithField("level_paths", len(corridors)).Info("corridor: loaded corridors")

	roads, err := loadTransport(roadFile)
	if err != nil {
		return err
	}
	railroads, err := loadTransport(railFile)
	if err != nil {
		return err
	}

	sink, err := corridor.NewShapefileSink(outputDir, metrics)
	if err != nil {
		return err
	}
	engine := &corridor.Engine{Config: cfg}
	summary, err := engine.Run(&corridor.Input{
		Flowlines: flowlines,
		Corridors: corridors,
		Roads:     roads,
		Railroads: railroads,
		SR:        sr,
		Metrics:   metrics,
	}, sink)
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d level paths (%d skipped).\n",
		summary.Processed, summary.Skipped)
	return nil
}

// loadTransport reads a road or railroad layer; an empty filename means
// the layer is absent.
func loadTransport(filename string) ([]geom.LineString, error) {
	if filename == "" {
		return nil, nil
	}
	src, err := corridor.OpenShapefile(filename)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return corridor.LoadTransportLines(src)
}

// SegmentNetwork cuts the flowline network into interval-length segments
// and writes the result to segmented.shp in outputDir. Cutting happens in
// a metric projection so the interval is in meters regardless of the
// input projection.
func SegmentNetwork(cfg corridor.Config, mergeNamed bool, flowlineFile, outputDir string) error {
	src, err := corridor.OpenFlowlineShapefile(flowlineFile)
	if err != nil {
		return err
	}
	defer src.Close()
	sr, err := src.SR()
	if err != nil {
		return fmt.Errorf("corridor: reading flowline spatial reference: %v", err)
	}
	flowlines, err := corridor.LoadFlowlines(src)
	if err != nil {
		return err
	}
	if len(flowlines) == 0 {
		return fmt.Errorf("corridor: no usable flowlines in %s", flowlineFile)
	}

	mt, err := metricTransform(sr, cfg.MetricProj, flowlines[0].LineString[0])
	if err != nil {
		return err
	}
	if err := projectFlowlines(flowlines, mt.Project); err != nil {
		return err
	}
	pieces := corridor.SegmentFlowlines(flowlines, cfg.SegmentationInterval,
		cfg.MinimumSegmentLength, mergeNamed)
	if err := projectFlowlines(pieces, mt.Unproject); err != nil {
		return err
	}

	type segRec struct {
		geom.LineString
		FCode     int
		GNISName  string
		LevelPath string
		TotDASqKm float64
	}
	enc, err := shp.NewEncoder(filepath.Join(outputDir, "segmented.shp"), segRec{})
	if err != nil {
		return fmt.Errorf("corridor: creating segmented shapefile: %v", err)
	}
	for _, p := range pieces {
		err := enc.Encode(segRec{
			LineString: p.LineString,
			FCode:      p.FCode,
			GNISName:   p.Name,
			LevelPath:  p.LevelPath,
			TotDASqKm:  p.TotalDrainageArea,
		})
		if err != nil {
			enc.Close()
			return fmt.Errorf("corridor: encoding segment: %v", err)
		}
	}
	enc.Close()
	fmt.Printf("Wrote %d segments.\n", len(pieces))
	return nil
}

func metricTransform(sr *proj.SR, metricProj string, ref geom.Point) (*corridor.MetricTransform, error) {
	if sr == nil {
		return nil, nil
	}
	return corridor.NewMetricTransform(sr, metricProj, ref)
}

func projectFlowlines(flowlines []*corridor.Flowline, project func(geom.Geom) (geom.Geom, error)) error {
	for _, f := range flowlines {
		g, err := project(f.LineString)
		if err != nil {
			return err
		}
		f.LineString = g.(geom.LineString)
	}
	return nil
}
