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
	"path/filepath"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	goshp "github.com/jonas-p/go-shp"
)

// shpNoData is the attribute value written for metrics with no
// measurement, since DBF has no native null for numbers.
const shpNoData = -9999

// A ShapefileSource reads features from a shapefile layer.
type ShapefileSource struct {
	d      *shp.Decoder
	fields []string
}

// OpenShapefile opens the given shapefile, reading the named attribute
// columns from each row.
func OpenShapefile(filename string, fields ...string) (*ShapefileSource, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("corridor: opening shapefile %s: %v", filename, err)
	}
	return &ShapefileSource{d: d, fields: fields}, nil
}

// OpenFlowlineShapefile opens a classified flowline layer, selecting the
// attribute columns LoadFlowlines expects.
func OpenFlowlineShapefile(filename string) (*ShapefileSource, error) {
	return OpenShapefile(filename, attrFCode, attrGNISName, attrLevelPath,
		attrDrainage, attrDivDrainage)
}

// OpenCorridorShapefile opens a corridor polygon layer, selecting the
// attribute columns LoadCorridors expects.
func OpenCorridorShapefile(filename string) (*ShapefileSource, error) {
	return OpenShapefile(filename, attrLevelPath)
}

func (s *ShapefileSource) SR() (*proj.SR, error) { return s.d.SR() }

func (s *ShapefileSource) Next() (geom.Geom, map[string]string, bool) {
	return s.d.DecodeRowFields(s.fields...)
}

func (s *ShapefileSource) Error() error { return s.d.Error() }

func (s *ShapefileSource) Close() error {
	s.d.Close()
	return nil
}

// A ShapefileSink writes run outputs as three shapefiles in a directory:
// dgos.shp, igos.shp and floodplains.shp. Features for one level path
// are buffered in memory until Commit, so a partially processed level
// path never reaches disk.
type ShapefileSink struct {
	mx      sync.Mutex
	metrics []MetricSpec
	dgos    *shp.Encoder
	igos    *shp.Encoder
	fps     *shp.Encoder
}

// NewShapefileSink creates output shapefiles in dir with one attribute
// column per metric in addition to the fixed columns.
func NewShapefileSink(dir string, metrics []MetricSpec) (*ShapefileSink, error) {
	dgoFields := []goshp.Field{
		goshp.StringField("level_path", 32),
		goshp.FloatField("seg_dist", 20, 6),
		goshp.FloatField("centerline", 20, 6),
		goshp.FloatField("seg_area", 20, 6),
	}
	igoFields := []goshp.Field{
		goshp.StringField("level_path", 32),
		goshp.FloatField("seg_dist", 20, 6),
	}
	for _, m := range metrics {
		f := goshp.FloatField(m.Name, 20, 6)
		dgoFields = append(dgoFields, f)
		igoFields = append(igoFields, f)
	}
	s := &ShapefileSink{metrics: metrics}
	var err error
	s.dgos, err = shp.NewEncoderFromFields(filepath.Join(dir, "dgos.shp"),
		goshp.POLYGON, dgoFields...)
	if err != nil {
		return nil, fmt.Errorf("corridor: creating DGO shapefile: %v", err)
	}
	s.igos, err = shp.NewEncoderFromFields(filepath.Join(dir, "igos.shp"),
		goshp.POINT, igoFields...)
	if err != nil {
		return nil, fmt.Errorf("corridor: creating IGO shapefile: %v", err)
	}
	s.fps, err = shp.NewEncoderFromFields(filepath.Join(dir, "floodplains.shp"),
		goshp.POLYGON, goshp.NumberField("connected", 10))
	if err != nil {
		return nil, fmt.Errorf("corridor: creating floodplain shapefile: %v", err)
	}
	return s, nil
}

// Begin starts a buffered transaction for one level path.
func (s *ShapefileSink) Begin(levelPath string) (SinkTx, error) {
	return &shpTx{sink: s, levelPath: levelPath}, nil
}

// WriteFloodplain writes one connectivity polygon.
func (s *ShapefileSink) WriteFloodplain(fp *FloodplainPolygon) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	connected := 0
	if fp.Connected {
		connected = 1
	}
	return s.fps.EncodeFields(fp.Polygon, connected)
}

// Close flushes and closes the output files.
func (s *ShapefileSink) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.dgos.Close()
	s.igos.Close()
	s.fps.Close()
	return nil
}

func metricValue(metrics map[string]float64, name string) float64 {
	v, ok := metrics[name]
	if !ok || math.IsNaN(v) {
		return shpNoData
	}
	return v
}

type shpTx struct {
	sink      *ShapefileSink
	levelPath string
	dgos      []*DGO
	igos      []*IGO
	done      bool
}

func (tx *shpTx) WriteDGO(d *DGO) error {
	if tx.done {
		return fmt.Errorf("corridor: write on finished transaction for level path %s", tx.levelPath)
	}
	tx.dgos = append(tx.dgos, d)
	return nil
}

func (tx *shpTx) WriteIGO(igo *IGO) error {
	if tx.done {
		return fmt.Errorf("corridor: write on finished transaction for level path %s", tx.levelPath)
	}
	tx.igos = append(tx.igos, igo)
	return nil
}

// Commit encodes the buffered features into the output files.
func (tx *shpTx) Commit() error {
	if tx.done {
		return fmt.Errorf("corridor: double commit for level path %s", tx.levelPath)
	}
	tx.done = true
	s := tx.sink
	s.mx.Lock()
	defer s.mx.Unlock()
	for _, d := range tx.dgos {
		vals := []interface{}{d.LevelPath, d.SegDistance, d.CenterlineLength, d.SegmentArea}
		for _, m := range s.metrics {
			vals = append(vals, metricValue(d.Metrics, m.Name))
		}
		if err := s.dgos.EncodeFields(d.Polygon, vals...); err != nil {
			return fmt.Errorf("corridor: encoding DGO: %v", err)
		}
	}
	for _, igo := range tx.igos {
		vals := []interface{}{igo.LevelPath, igo.SegDistance}
		for _, m := range s.metrics {
			vals = append(vals, metricValue(igo.Metrics, m.Name))
		}
		if err := s.igos.EncodeFields(igo.Point, vals...); err != nil {
			return fmt.Errorf("corridor: encoding IGO: %v", err)
		}
	}
	return nil
}

// Rollback discards the buffered features.
func (tx *shpTx) Rollback() error {
	tx.done = true
	tx.dgos, tx.igos = nil, nil
	return nil
}
