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
	var opName string
	flag.Float64Var(&voxelSize, "voxel-size", meshdiff.DefaultVoxelSize, "marching cubes voxel size")
	flag.StringVar(&opName, "op", "difference", "operation: difference, intersection, or union")
	flag.Parse()

	args := flag.Args()
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: simple_boolean [flags] <a.stl> <b.stl> <output.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	aPath, bPath, outputPath := args[0], args[1], args[2]

	var op meshdiff.BooleanOp
	switch opName {
	case "difference":
		op = meshdiff.Difference
	case "intersection":
		op = meshdiff.Intersection
	case "union":
		op = meshdiff.Union
	default:
		essentials.Die("unknown operation:", opName)
	}

	io := &meshdiff.STLIO{}
	log.Println("Loading meshes...")
	a, err := io.Load(aPath)
	essentials.Must(err)
	b, err := io.Load(bPath)
	essentials.Must(err)

	log.Printf("Computing %s...", op)
	res := (&meshdiff.SolidCombiner{VoxelSize: voxelSize}).Combine(a, b, op)
	if !res.Valid {
		fmt.Fprintln(os.Stderr, "boolean failed:", res.ErrorString)
		os.Exit(meshdiff.ExitCombine)
	}

	log.Println("Saving result...")
	essentials.Must(io.Save(res.Mesh, outputPath))
	fmt.Println("Result volume:", meshdiff.MeshVolume(res.Mesh))
}
