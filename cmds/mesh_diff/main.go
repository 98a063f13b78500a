package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/meshdiff/meshdiff"
)

const (
	defaultIdealPath  = "../meshes/cylinder_matrix_ideal.stl"
	defaultDefectPath = "../meshes/cylinder_matrix_defect.stl"
)

func main() {
	var configPath string
	var outputDir string
	var name string
	var voxelSize float64
	var global bool
	var chop bool
	var watch bool
	var logFormat string
	var verbose bool
	flag.StringVar(&configPath, "config", "", "optional YAML, TOML, or JSON config file")
	flag.StringVar(&outputDir, "output-dir", "",
		"directory for output meshes (default: directory of the ideal mesh)")
	flag.StringVar(&name, "name", "", "base name for output meshes (default: ideal mesh name)")
	flag.Float64Var(&voxelSize, "voxel-size", meshdiff.DefaultVoxelSize, "rebuild voxel size")
	flag.BoolVar(&global, "global", false, "run global registration before local registration")
	flag.BoolVar(&chop, "chop", false, "restrict the result to the working volume")
	flag.BoolVar(&watch, "watch", false, "re-run whenever an input mesh changes")
	flag.StringVar(&logFormat, "log-format", "text", "log format: text, logfmt, or json")
	flag.BoolVar(&verbose, "verbose", false, "print debug information")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mesh_diff [flags] [<ideal.stl> <defect.stl>]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	idealPath, defectPath := defaultIdealPath, defaultDefectPath
	switch args := flag.Args(); len(args) {
	case 0:
	case 2:
		idealPath, defectPath = args[0], args[1]
	default:
		flag.Usage()
		os.Exit(meshdiff.ExitUsage)
	}

	cfg := meshdiff.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = meshdiff.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(meshdiff.ExitUsage)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-dir":
			cfg.OutputDir = outputDir
		case "name":
			cfg.Name = name
		case "voxel-size":
			cfg.VoxelSize = voxelSize
		case "global":
			cfg.GlobalRegistration = global
		case "chop":
			if !chop {
				cfg.Chop = nil
			} else if cfg.Chop == nil {
				cfg.Chop = meshdiff.DefaultWorkingVolume()
			}
		case "log-format":
			cfg.LogFormat = logFormat
		case "verbose":
			cfg.Verbose = verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(meshdiff.ExitUsage)
	}

	reporter := meshdiff.NewReporter(os.Stdout, os.Stderr, cfg.LogFormat, cfg.Verbose)
	pipeline := meshdiff.NewPipeline(cfg, reporter)
	if watch {
		essentials.Must(WatchInputs(pipeline, idealPath, defectPath))
		return
	}
	os.Exit(pipeline.Run(idealPath, defectPath).ExitCode())
}
