// meshtool is a CLI utility for inspecting and scripting edits of GMSH meshes.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-meshedit/internal/config"
	"github.com/Faultbox/midgard-meshedit/internal/logger"
	"github.com/Faultbox/midgard-meshedit/internal/meshedit"
	"github.com/Faultbox/midgard-meshedit/internal/undo"
	"github.com/Faultbox/midgard-meshedit/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "edit":
		cmdEdit(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - GMSH mesh inspection and editing utility

Usage:
  meshtool [flags] <command> [options]

Commands:
  info <file.gmsh>                          Show models, geometries and buffer problems
  edit -script <edits.yaml> [-o out] <file> Apply a scripted edit session and save
  config init [path]                        Write the default config file

Flags:
  -config <path>         Config file (default: ./meshedit.yaml, then user config dir)
  -debug                 Enable debug logging
  -pick-distance <d>     Max ray distance for vertex and edge picks
  -edge-picking <name>   Edge pick metric: midpoint or segment
  -log-file <path>       Write logs to this file

Examples:
  meshtool info prontera_wall.gmsh
  meshtool -debug edit -script flatten.yaml -o out.gmsh prontera_wall.gmsh`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file.gmsh>")
		os.Exit(1)
	}

	asset, err := formats.ParseMeshFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:     %s\n", args[0])
	fmt.Printf("Name:     %s\n", asset.Name)
	fmt.Printf("Version:  %s\n", asset.Version)
	if asset.Drawable == nil {
		fmt.Println("Drawable: none")
		return
	}
	fmt.Printf("Models:   %d\n", len(asset.Drawable.Models))
	fmt.Printf("Vertices: %d\n", asset.TotalVertexCount())
	fmt.Printf("Faces:    %d\n", asset.TotalFaceCount())
	fmt.Println()

	for mi, m := range asset.Drawable.Models {
		if m == nil {
			continue
		}
		fmt.Printf("Model %d %q: %d geometries\n", mi, m.Name, len(m.Geometries))
		for gi, g := range m.Geometries {
			if g == nil {
				continue
			}
			vertices, stride, indices := 0, 0, 0
			if g.VertexData != nil {
				vertices, stride = g.VertexData.VertexCount, g.VertexData.VertexStride
			}
			if g.IndexBuffer != nil {
				indices = len(g.IndexBuffer.Indices)
			}
			fmt.Printf("  [%d] vertices=%-6d stride=%-3d indices=%-6d triangles=%d\n",
				gi, vertices, stride, indices, g.TrianglesCount)
		}
	}

	if errs := multierr.Errors(asset.Validate()); len(errs) > 0 {
		fmt.Println()
		fmt.Printf("Problems (%d):\n", len(errs))
		for _, err := range errs {
			fmt.Printf("  - %v\n", err)
		}
	}
}

func cmdEdit(args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	scriptPath := fs.String("script", "", "YAML edit script")
	output := fs.String("o", "", "Output file (default: overwrite input)")
	fs.Parse(args)

	if fs.NArg() < 1 || *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: meshtool edit -script <edits.yaml> [-o out.gmsh] <file.gmsh>")
		os.Exit(1)
	}
	input := fs.Arg(0)
	if *output == "" {
		*output = input
	}

	cfg := loadConfig()
	defer logger.Sync()

	metric, err := meshedit.ParseEdgeMetric(cfg.Editor.EdgePicking)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	script, err := loadScript(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	asset, err := formats.ParseMeshFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	editor := meshedit.New(
		meshedit.WithLogger(logger.Log),
		meshedit.WithEdgeMetric(metric),
		meshedit.WithRenderableCache(meshedit.LogRenderableCache{Log: logger.Named("renderables")}),
	)
	if !editor.StartEditing(asset, script.Placement.Matrix()) {
		fmt.Fprintf(os.Stderr, "Error: %s has no editable drawable\n", input)
		os.Exit(1)
	}

	r := newRunner(editor, undo.NewStack(cfg.Undo.Limit), cfg.Editor.PickDistance, logger.Named("script"))
	if script.Camera != nil {
		r.useCamera(script.Camera)
	}
	if err := r.run(script.Steps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !editor.IsActive() {
		fmt.Println("Edit cancelled, nothing written")
		return
	}
	fmt.Println(editor.Status())

	data, err := editor.SaveModifications()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	editor.StopEditing()

	logger.Info("mesh saved", zap.String("path", *output), zap.Int("bytes", len(data)))
	fmt.Printf("Wrote %s (%d vertices, %d faces)\n", *output, asset.TotalVertexCount(), asset.TotalFaceCount())
}

func cmdConfig(args []string) {
	if len(args) < 1 || args[0] != "init" {
		fmt.Fprintln(os.Stderr, "Usage: meshtool config init [path]")
		os.Exit(1)
	}

	cfg := config.Default()
	var err error
	if len(args) > 1 {
		err = cfg.SaveTo(args[1])
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Config written")
}
