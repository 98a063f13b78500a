package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/meshdiff/meshdiff"
)

func main() {
	var voxelSize float64
	var decimate bool
	var noRebuild bool
	flag.Float64Var(&voxelSize, "voxel-size", meshdiff.DefaultVoxelSize, "rebuild voxel size")
	flag.BoolVar(&decimate, "decimate", false, "simplify flat regions after rebuilding")
	flag.BoolVar(&noRebuild, "no-rebuild", false, "only fill holes, without rebuilding")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: fill_holes [flags] <input.stl> <output.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	reporter := meshdiff.DefaultReporter()
	io := &meshdiff.STLIO{Log: reporter}
	log.Println("Loading mesh...")
	mesh, err := io.Load(inputPath)
	essentials.Must(err)

	if noRebuild {
		log.Println("Filling holes...")
		n, err := meshdiff.FillHoles(mesh, meshdiff.LoopFiller{}, meshdiff.UniversalMetric{})
		log.Printf(" - filled %d holes", n)
		essentials.Must(err)
	} else {
		log.Println("Repairing mesh...")
		progress := meshdiff.NewDecileProgress(func(percent int) {
			log.Printf(" - rebuilding: %d%%", percent)
		})
		var n int
		mesh, n, err = meshdiff.RepairMesh(
			mesh,
			meshdiff.LoopFiller{},
			meshdiff.UniversalMetric{},
			meshdiff.VoxelRebuilder{},
			meshdiff.RebuildSettings{
				Decimate:  decimate,
				VoxelSize: voxelSize,
				Progress:  progress.Func(),
			},
			func(err error) {
				reporter.Warnf("%v", err)
			},
		)
		log.Printf(" - filled %d holes", n)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(meshdiff.ExitRebuild)
		}
	}

	log.Println("Saving mesh...")
	essentials.Must(io.Save(mesh, outputPath))
}
