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

	"github.com/ctessum/geom"
)

// DisjointPartsError is returned when the parts of a multi-part line cannot
// be joined end to end into a single LineString. It is fatal for the feature
// being processed but not for the batch.
type DisjointPartsError struct {
	// Parts is the number of parts left after joining.
	Parts int
}

func (e DisjointPartsError) Error() string {
	return fmt.Sprintf("corridor: %d disjoint line parts cannot be merged into a single LineString", e.Parts)
}

// UnrepairableGeometryError is returned when a geometry remains invalid
// after all repair attempts.
type UnrepairableGeometryError struct {
	Geom geom.Geom
}

func (e UnrepairableGeometryError) Error() string {
	return fmt.Sprintf("corridor: geometry with bounds %+v could not be repaired", e.Geom.Bounds())
}

// UnsupportedGeometryError is returned when a geometry of an unexpected
// type reaches a stage that cannot process it, for example a multi-part
// line arriving at the segmenter without prior repair.
type UnsupportedGeometryError struct {
	Geom geom.Geom
}

func (e UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("corridor: unsupported geometry type %T", e.Geom)
}
