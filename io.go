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
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// A FeatureSource iterates over the features of one vector layer.
// Next reports false when the layer is exhausted or an error occurred;
// Error distinguishes the two.
type FeatureSource interface {
	// SR returns the layer's spatial reference.
	SR() (*proj.SR, error)

	// Next returns the next feature's geometry and attributes.
	Next() (geom.Geom, map[string]string, bool)

	Error() error
	Close() error
}

// Attribute names read from input layers.
const (
	attrFCode       = "FCode"
	attrGNISName    = "GNIS_Name"
	attrLevelPath   = "level_path"
	attrDrainage    = "TotDASqKm"
	attrDivDrainage = "DivDASqKm"
)

// s2f converts a string to a float64, treating the empty string and
// shapefile null markers as zero.
func s2f(s string) (float64, error) {
	s = strings.Trim(s, "\x00* ")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// s2i converts a string to an int with the same null handling as s2f.
func s2i(s string) (int, error) {
	s = strings.Trim(s, "\x00* ")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// LoadFlowlines reads and repairs a classified flowline layer.
// Features whose geometry cannot be repaired into a single linestring
// are skipped with a warning.
func LoadFlowlines(src FeatureSource) ([]*Flowline, error) {
	var flowlines []*Flowline
	for {
		g, fields, ok := src.Next()
		if !ok {
			break
		}
		line, err := RepairLine(g)
		if err != nil {
			logger.WithFields(logFields{
				"level_path": fields[attrLevelPath],
			}).Warnf("corridor: skipping flowline: %v", err)
			continue
		}
		f := &Flowline{
			LineString: line,
			Name:       strings.Trim(fields[attrGNISName], "\x00* "),
			LevelPath:  strings.Trim(fields[attrLevelPath], "\x00* "),
		}
		if f.FCode, err = s2i(fields[attrFCode]); err != nil {
			return nil, fmt.Errorf("corridor: parsing %s: %v", attrFCode, err)
		}
		if f.TotalDrainageArea, err = s2f(fields[attrDrainage]); err != nil {
			return nil, fmt.Errorf("corridor: parsing %s: %v", attrDrainage, err)
		}
		if f.DivergentDrainageArea, err = s2f(fields[attrDivDrainage]); err != nil {
			return nil, fmt.Errorf("corridor: parsing %s: %v", attrDivDrainage, err)
		}
		flowlines = append(flowlines, f)
	}
	if err := src.Error(); err != nil {
		return nil, fmt.Errorf("corridor: reading flowlines: %w", err)
	}
	return flowlines, nil
}

// LoadCorridors reads and repairs a corridor polygon layer, returning one
// polygon per level path. Multiple features sharing a level path are
// unioned.
func LoadCorridors(src FeatureSource) (map[string]geom.Polygon, error) {
	parts := make(map[string][]geom.Polygon)
	for {
		g, fields, ok := src.Next()
		if !ok {
			break
		}
		lp := strings.Trim(fields[attrLevelPath], "\x00* ")
		poly, err := RepairPolygon(g, 0)
		if err != nil {
			logger.WithFields(logFields{
				"level_path": lp,
			}).Warnf("corridor: skipping corridor polygon: %v", err)
			continue
		}
		parts[lp] = append(parts[lp], poly)
	}
	if err := src.Error(); err != nil {
		return nil, fmt.Errorf("corridor: reading corridors: %w", err)
	}
	corridors := make(map[string]geom.Polygon, len(parts))
	for lp, polys := range parts {
		if len(polys) == 1 {
			corridors[lp] = polys[0]
			continue
		}
		corridors[lp] = unionPolygons(polys)
	}
	return corridors, nil
}

// LoadTransportLines reads a road or railroad layer, repairing each
// feature and splitting multipart geometries into their parts.
func LoadTransportLines(src FeatureSource) ([]geom.LineString, error) {
	var lines []geom.LineString
	for {
		g, _, ok := src.Next()
		if !ok {
			break
		}
		switch t := g.(type) {
		case geom.LineString:
			line, err := RepairLine(t)
			if err != nil {
				logger.Warnf("corridor: skipping transport line: %v", err)
				continue
			}
			lines = append(lines, line)
		case geom.MultiLineString:
			for _, part := range t {
				line, err := RepairLine(part)
				if err != nil {
					logger.Warnf("corridor: skipping transport line part: %v", err)
					continue
				}
				lines = append(lines, line)
			}
		default:
			logger.Warnf("corridor: %v", UnsupportedGeometryError{Geom: g})
		}
	}
	if err := src.Error(); err != nil {
		return nil, fmt.Errorf("corridor: reading transport lines: %w", err)
	}
	return lines, nil
}
