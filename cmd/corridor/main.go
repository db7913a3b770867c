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

// Command corridor is the command-line interface to the Corridor
// riverscape segmentation engine.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := Root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
