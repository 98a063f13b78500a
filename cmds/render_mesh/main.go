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
	"github.com/unixpickle/model3d/render3d"
)

func main() {
	var gridSize int
	var imageSize int
	var fps float64
	var frames int
	var overlayPath string
	flag.IntVar(&gridSize, "grid-size", 3, "grid size (used for rows and columns)")
	flag.IntVar(&imageSize, "image-size", 300, "size of each image in the grid")
	flag.Float64Var(&fps, "fps", 10.0, "FPS for GIF outputs")
	flag.IntVar(&frames, "frames", 20, "total number of frames for GIF outputs")
	flag.StringVar(&overlayPath, "overlay", "", "optional second mesh, rendered in red")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: render_mesh [flags] <input.stl> <output.png>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	io := &meshdiff.STLIO{}
	log.Println("Loading mesh...")
	mesh, err := io.Load(inputPath)
	essentials.Must(err)

	log.Println("Creating renderable object...")
	var object render3d.Object = render3d.Objectify(model3d.MeshToCollider(mesh), nil)
	if overlayPath != "" {
		log.Println(" - Loading overlay...")
		overlay, err := io.Load(overlayPath)
		essentials.Must(err)
		red := render3d.NewColor(0)
		red.X = 1
		object = render3d.JoinedObject{
			object,
			render3d.Objectify(model3d.MeshToCollider(overlay), func(model3d.Coord3D, model3d.RayCollision) render3d.Color {
				return red
			}),
		}
	}

	log.Println("Rendering...")
	ext := filepath.Ext(outputPath)
	if strings.ToLower(ext) == ".gif" {
		essentials.Must(
			render3d.SaveRotatingGIF(
				outputPath,
				object,
				model3d.Z(1),
				model3d.YZ(-1, 0.1).Normalize(),
				imageSize,
				frames,
				fps,
				nil,
			),
		)
	} else {
		essentials.Must(
			render3d.SaveRandomGrid(outputPath, object, gridSize, gridSize, imageSize, nil),
		)
	}
}
