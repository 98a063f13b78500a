package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/meshdiff/meshdiff"
	"github.com/unixpickle/model3d/model3d"
)

// Both registration passes get more room than the pipeline's default.
const defaultIterLimit = 1000

func main() {
	var outputDir string
	var iterLimit int
	flag.StringVar(&outputDir, "output-dir", "",
		"directory for aligned meshes (default: directory of the moving mesh)")
	flag.IntVar(&iterLimit, "iter-limit", defaultIterLimit, "maximum ICP iterations per pass")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: align_meshes [flags] <reference.stl> <moving.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	refPath, movingPath := args[0], args[1]
	if outputDir == "" {
		outputDir = filepath.Dir(movingPath)
	}
	stem := strings.TrimSuffix(filepath.Base(movingPath), filepath.Ext(movingPath))

	io := &meshdiff.STLIO{}
	log.Println("Loading meshes...")
	ref, err := io.Load(refPath)
	essentials.Must(err)
	moving, err := io.Load(movingPath)
	essentials.Must(err)

	icpConfig := meshdiff.DefaultConfig().ICP
	icpConfig.IterLimit = iterLimit
	voxel, params := meshdiff.DeriveICPParams(meshdiff.BoundingDiagonal(ref), icpConfig)
	local := &meshdiff.ICPAligner{}

	log.Println("Global registration...")
	global := (&meshdiff.PCAGlobalAligner{Local: local}).GlobalAlign(
		[]*model3d.Mesh{ref, moving},
		voxel,
		params,
	)[1]
	log.Println(" - transform:", global)
	moving = meshdiff.TransformMesh(moving, global)
	essentials.Must(io.Save(moving, filepath.Join(outputDir, stem+"_icpg.stl")))

	log.Println("Local registration...")
	xf := local.Align(moving, ref, voxel, params)
	log.Println(" - transform:", xf)
	moving = meshdiff.TransformMesh(moving, xf)
	essentials.Must(io.Save(moving, filepath.Join(outputDir, stem+"_icpgl.stl")))

	fmt.Println("Total transform:", xf.Compose(global))
}
