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
	"strconv"
	"strings"

	"github.com/lnashier/viper"
	"github.com/riverscapes/corridor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

func init() {
	// Options are the configuration options available to Corridor.
	options := []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose enables debug-level log output.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Flowlines",
			usage: `
              Flowlines is the path to the classified flowline network
              shapefile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), segmentCmd.Flags()},
		},
		{
			name: "Corridors",
			usage: `
              Corridors is the path to the corridor polygon shapefile, with
              one or more polygons per level path.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Roads",
			usage: `
              Roads is the path to the road network shapefile used for
              floodplain connectivity classification. It may be empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Railroads",
			usage: `
              Railroads is the path to the railroad shapefile used for
              floodplain connectivity classification. It may be empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where output shapefiles are
              written.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), segmentCmd.Flags()},
		},
		{
			name: "Metrics",
			usage: `
              Metrics lists DGO metrics to aggregate into IGOs, each as
              name=kind where kind is one of sum, density or area.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SegmentationInterval",
			usage: `
              SegmentationInterval is the spacing between segmentation
              points along a level path [m].`,
			defaultVal: 200.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), segmentCmd.Flags()},
		},
		{
			name: "MinimumSegmentLength",
			usage: `
              MinimumSegmentLength is the shortest trailing segment a cut
              may leave behind [m].`,
			defaultVal: 50.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), segmentCmd.Flags()},
		},
		{
			name: "MinimumFeatureArea",
			usage: `
              MinimumFeatureArea is the sliver threshold [m²]; corridor
              partition results smaller than this are discarded.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MetricProj",
			usage: `
              MetricProj is a proj4 string for the projection used for
              length and area measurement. When empty, a UTM zone is
              chosen per level path.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), segmentCmd.Flags()},
		},
		{
			name: "MergeNamed",
			usage: `
              MergeNamed merges flowlines sharing a GNIS name into single
              features before segmentation.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{segmentCmd.Flags()},
		},
		{
			name: "WindowWidths",
			usage: `
              WindowWidths gives the moving-window width [m] for each of
              the five stream size classes.`,
			defaultVal: []string{"200", "400", "1200", "2000", "8000"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StreamSizeBreaks",
			usage: `
              StreamSizeBreaks gives the drainage-area thresholds [km²]
              between consecutive stream size classes.`,
			defaultVal: []string{"25", "260", "1000", "5000"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CORRIDOR")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(segmentCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("corridor: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("verbose") {
		logrus.StandardLogger().SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "corridor",
	Short: "A stream network segmentation and corridor partitioning engine.",
	Long: `Corridor segments classified flowline networks, partitions riverscape
corridor polygons into discrete geographic objects, classifies floodplain
connectivity, and aggregates metrics with moving windows.
Use the subcommands specified below to access the functionality.

Configuration variables can be set in a configuration file (and by
specifying the path to the file with the --config flag), by using
command-line arguments, or by setting environment variables in the format
'CORRIDOR_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Corridor.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Corridor v%s\n", corridor.Version)
		cmd.Usage()
		return nil
	},
}

// runCmd runs the full pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Segment, partition and aggregate a riverscape network.",
	Long: `run places segmentation points along every level path, partitions each
corridor polygon into DGOs, attributes and windows metrics into IGOs,
classifies floodplain connectivity, and writes the results as shapefiles
in the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig(Cfg)
		if err != nil {
			return err
		}
		metrics, err := metricSpecs(Cfg.GetStringSlice("Metrics"))
		if err != nil {
			return err
		}
		return Run(cfg, metrics,
			Cfg.GetString("Flowlines"), Cfg.GetString("Corridors"),
			Cfg.GetString("Roads"), Cfg.GetString("Railroads"),
			Cfg.GetString("OutputDir"))
	},
}

// segmentCmd cuts the flowline network without partitioning corridors.
var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Cut flowlines into equal-length segments.",
	Long: `segment cuts each flowline (or each set of flowlines sharing a GNIS
name, with --MergeNamed) into segments of the configured interval and
writes the segmented network as a shapefile in the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig(Cfg)
		if err != nil {
			return err
		}
		return SegmentNetwork(cfg, Cfg.GetBool("MergeNamed"),
			Cfg.GetString("Flowlines"), Cfg.GetString("OutputDir"))
	},
}

// engineConfig builds a run configuration from the settings in cfg.
func engineConfig(cfg *viper.Viper) (corridor.Config, error) {
	c := corridor.DefaultConfig()
	c.SegmentationInterval = cfg.GetFloat64("SegmentationInterval")
	c.MinimumSegmentLength = cfg.GetFloat64("MinimumSegmentLength")
	c.MinimumFeatureArea = cfg.GetFloat64("MinimumFeatureArea")
	c.MetricProj = cfg.GetString("MetricProj")
	c.MergeNamed = cfg.GetBool("MergeNamed")
	widths, err := floatList(cfg.GetStringSlice("WindowWidths"), len(c.WindowWidths))
	if err != nil {
		return c, fmt.Errorf("corridor: parsing WindowWidths: %v", err)
	}
	copy(c.WindowWidths[:], widths)
	breaks, err := floatList(cfg.GetStringSlice("StreamSizeBreaks"), len(c.StreamSizeBreaks))
	if err != nil {
		return c, fmt.Errorf("corridor: parsing StreamSizeBreaks: %v", err)
	}
	copy(c.StreamSizeBreaks[:], breaks)
	return c, nil
}

func floatList(s []string, n int) ([]float64, error) {
	if len(s) != n {
		return nil, fmt.Errorf("expected %d values but got %d", n, len(s))
	}
	out := make([]float64, n)
	for i, v := range s {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// metricSpecs parses name=kind metric definitions.
func metricSpecs(defs []string) ([]corridor.MetricSpec, error) {
	specs := make([]corridor.MetricSpec, 0, len(defs))
	for _, def := range defs {
		name, kind, found := strings.Cut(def, "=")
		if !found {
			return nil, fmt.Errorf("corridor: metric %q is not in name=kind form", def)
		}
		spec := corridor.MetricSpec{Name: strings.TrimSpace(name)}
		switch strings.TrimSpace(kind) {
		case "sum":
			spec.Kind = corridor.MetricSum
		case "density":
			spec.Kind = corridor.MetricDensity
		case "area":
			spec.Kind = corridor.MetricAreaWeighted
		default:
			return nil, fmt.Errorf("corridor: unknown metric kind %q", kind)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
