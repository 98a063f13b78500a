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
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mesh_info [flags] <input.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath := args[0]

	log.Println("Loading mesh...")
	mesh, err := (&meshdiff.STLIO{}).Load(inputPath)
	essentials.Must(err)

	loops := meshdiff.LoopFiller{}.FindBoundaryLoops(mesh)
	fmt.Println("Number of triangles:", mesh.NumTriangles())
	fmt.Println("Boundary loops:", len(loops))
	for i, loop := range loops {
		fmt.Printf(" - loop %d: %d vertices\n", i, len(loop.Vertices))
	}
	fmt.Println("Bounds:", mesh.Min(), mesh.Max())
	fmt.Println("Diagonal:", meshdiff.BoundingDiagonal(mesh))
	if len(loops) == 0 {
		fmt.Println("Volume:", meshdiff.MeshVolume(mesh))
	}
}
