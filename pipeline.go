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
	"runtime"
	"sort"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
)

type logFields = logrus.Fields

var logger = logrus.StandardLogger()

// SetLogger redirects the package's log output.
func SetLogger(l *logrus.Logger) { logger = l }

// Input holds the repaired feature sets for one run.
type Input struct {
	// Flowlines is the full classified network.
	Flowlines []*Flowline

	// Corridors maps each level path to its corridor polygon.
	Corridors map[string]geom.Polygon

	// Roads and Railroads are the crossing-infrastructure features used
	// by connectivity classification.
	Roads, Railroads []geom.LineString

	// SR is the native spatial reference of the inputs. Nil means the
	// inputs are already in a metric projection.
	SR *proj.SR

	// Metrics names the DGO metrics to aggregate into IGOs.
	Metrics []MetricSpec
}

// A Sink persists run outputs. DGO and IGO writes for one level path
// happen inside a single transaction so readers never observe a partial
// polygon set; floodplain polygons are whole-run outputs written outside
// any level path transaction. Sinks must tolerate concurrent transactions
// for different level paths.
type Sink interface {
	Begin(levelPath string) (SinkTx, error)
	WriteFloodplain(*FloodplainPolygon) error
}

// A SinkTx is one level path's write transaction.
type SinkTx interface {
	WriteDGO(*DGO) error
	WriteIGO(*IGO) error
	Commit() error
	Rollback() error
}

// A LevelPathRun carries one level path through the pipeline stages.
type LevelPathRun struct {
	Config    Config
	LevelPath string

	// Reaches are this level path's flowlines; Network is the whole
	// network, used for centerline attribution.
	Reaches []*Flowline
	Network []*Flowline

	Corridor geom.Polygon
	Metric   *MetricTransform
	Specs    []MetricSpec

	Points []*SegmentationPoint
	DGOs   []*DGO
	IGOs   []*IGO
}

// A Stage performs one step of the per-level-path pipeline.
type Stage func(*LevelPathRun) error

// GeneratePoints returns a Stage that places segmentation points along the
// level path. With segmentation disabled (SegmentationInterval <= 0) the
// stage is a no-op: the level path processes with no points and no DGOs.
func GeneratePoints() Stage {
	return func(r *LevelPathRun) error {
		if r.Config.SegmentationInterval <= 0 {
			return nil
		}
		points, err := GenerateSegmentationPoints(r.LevelPath, r.Reaches, r.Config.SegmentationInterval, r.Metric)
		if err != nil {
			return err
		}
		r.Points = points
		return nil
	}
}

// PartitionCorridor returns a Stage that decomposes the corridor into
// DGOs seeded by the segmentation points.
func PartitionCorridor() Stage {
	return func(r *LevelPathRun) error {
		dgos, err := Partition(r.Corridor, r.Points, 0)
		if err != nil {
			return err
		}
		r.DGOs = dgos
		return nil
	}
}

// AttributeDGOs returns a Stage that computes segment areas and centerline
// lengths, then discards slivers below the minimum feature area.
func AttributeDGOs() Stage {
	return func(r *LevelPathRun) error {
		if err := AttributeMetrics(r.DGOs, r.Network, r.Metric); err != nil {
			return err
		}
		if r.Config.MinimumFeatureArea > 0 {
			kept := r.DGOs[:0]
			for _, d := range r.DGOs {
				if d.SegmentArea >= r.Config.MinimumFeatureArea {
					kept = append(kept, d)
				}
			}
			r.DGOs = kept
		}
		return nil
	}
}

// AggregateIGOs returns a Stage that rolls DGO metrics up into one IGO
// per segmentation point. It must run after AttributeDGOs.
func AggregateIGOs() Stage {
	return func(r *LevelPathRun) error {
		var drainage float64
		for _, f := range r.Reaches {
			if f.TotalDrainageArea > drainage {
				drainage = f.TotalDrainageArea
			}
		}
		width := r.Config.WindowWidth(drainage)
		r.IGOs = AggregateWindows(r.Points, r.DGOs, width, r.Specs)
		return nil
	}
}

// An Engine runs the full segmentation pipeline over a network.
type Engine struct {
	Config Config
}

// A LevelPathSummary reports the outcome for one level path.
type LevelPathSummary struct {
	LevelPath string
	Points    int
	DGOs      int
	IGOs      int

	// Err is set when the level path was skipped; it is never fatal for
	// the batch.
	Err error
}

// A RunSummary reports per-level-path accounting for a whole run.
type RunSummary struct {
	Processed, Skipped int
	LevelPaths         map[string]*LevelPathSummary
}

// Run executes the pipeline for every level path in the input, writing
// DGOs and IGOs through per-level-path sink transactions, and finishes
// with connectivity classification over the merged corridor. Level paths
// are independent and are processed concurrently. Geometry failures skip
// the offending level path with a warning; only sink failures abort the
// run.
func (e *Engine) Run(in *Input, sink Sink) (*RunSummary, error) {
	byPath := make(map[string][]*Flowline)
	for _, f := range in.Flowlines {
		byPath[f.LevelPath] = append(byPath[f.LevelPath], f)
	}
	paths := make([]string, 0, len(byPath))
	for lp := range byPath {
		paths = append(paths, lp)
	}
	sort.Strings(paths)

	summary := &RunSummary{LevelPaths: make(map[string]*LevelPathSummary)}
	var mu sync.Mutex
	pathChan := make(chan string, len(paths))
	for _, lp := range paths {
		pathChan <- lp
	}
	close(pathChan)
	errChan := make(chan error)
	nprocs := runtime.GOMAXPROCS(0)

	for p := 0; p < nprocs; p++ {
		go func() {
			for lp := range pathChan {
				s, err := e.runLevelPath(lp, byPath[lp], in, sink)
				mu.Lock()
				summary.LevelPaths[lp] = s
				if s.Err != nil {
					summary.Skipped++
					logger.WithFields(logFields{"level_path": lp}).
						Warnf("corridor: skipping level path: %v", s.Err)
				} else {
					summary.Processed++
				}
				mu.Unlock()
				if err != nil {
					errChan <- err
					return
				}
			}
			errChan <- nil
		}()
	}
	var runErr error
	for p := 0; p < nprocs; p++ {
		if err := <-errChan; err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return summary, runErr
	}

	corridors := make([]geom.Polygon, 0, len(in.Corridors))
	for _, c := range in.Corridors {
		corridors = append(corridors, c)
	}
	floodplains, err := ClassifyConnectivity(in.Flowlines, corridors, in.Roads, in.Railroads)
	if err != nil {
		// Best effort: a missing connectivity layer is preferable to a
		// failed run.
		logger.Warnf("corridor: connectivity classification failed: %v", err)
	}
	for _, fp := range floodplains {
		if err := sink.WriteFloodplain(fp); err != nil {
			return summary, fmt.Errorf("corridor: writing floodplain polygon: %w", err)
		}
	}

	logger.WithFields(logFields{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
	}).Info("corridor: run complete")
	return summary, nil
}

// runLevelPath runs the stage chain for one level path inside a single
// sink transaction. The summary's Err field records geometry-level skips;
// the returned error is reserved for sink failures, which are fatal for
// the run.
func (e *Engine) runLevelPath(lp string, reaches []*Flowline, in *Input, sink Sink) (*LevelPathSummary, error) {
	s := &LevelPathSummary{LevelPath: lp}
	corr, ok := in.Corridors[lp]
	if !ok {
		s.Err = fmt.Errorf("no corridor polygon for level path %s", lp)
		return s, nil
	}
	var mt *MetricTransform
	if in.SR != nil {
		b := corr.Bounds()
		ref := geom.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
		var err error
		mt, err = NewMetricTransform(in.SR, e.Config.MetricProj, ref)
		if err != nil {
			s.Err = err
			return s, nil
		}
	}
	run := &LevelPathRun{
		Config:    e.Config,
		LevelPath: lp,
		Reaches:   reaches,
		Network:   in.Flowlines,
		Corridor:  corr,
		Metric:    mt,
		Specs:     in.Metrics,
	}
	tx, err := sink.Begin(lp)
	if err != nil {
		return s, fmt.Errorf("corridor: beginning transaction for level path %s: %w", lp, err)
	}
	for _, stage := range []Stage{GeneratePoints(), PartitionCorridor(), AttributeDGOs(), AggregateIGOs()} {
		if err := stage(run); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return s, fmt.Errorf("corridor: rolling back level path %s: %w", lp, rbErr)
			}
			s.Err = err
			return s, nil
		}
	}
	for _, d := range run.DGOs {
		if err := tx.WriteDGO(d); err != nil {
			tx.Rollback()
			return s, fmt.Errorf("corridor: writing DGO for level path %s: %w", lp, err)
		}
	}
	for _, igo := range run.IGOs {
		if err := tx.WriteIGO(igo); err != nil {
			tx.Rollback()
			return s, fmt.Errorf("corridor: writing IGO for level path %s: %w", lp, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s, fmt.Errorf("corridor: committing level path %s: %w", lp, err)
	}
	s.Points = len(run.Points)
	s.DGOs = len(run.DGOs)
	s.IGOs = len(run.IGOs)
	return s, nil
}
