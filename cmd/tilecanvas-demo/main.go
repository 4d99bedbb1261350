// Command tilecanvas-demo drives a tilecanvas.Canvas with a turmite or
// random noise and shows the result as a PNG or in the terminal.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/gogpu/tilecanvas/backend"
	_ "github.com/gogpu/tilecanvas/backend/wgpu"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Error running demo", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tilecanvas-demo"
	app.Description = "Tiled pixel canvas demo"
	app.Usage = "tilecanvas-demo [options]"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "width", Usage: "Canvas width in pixels", Value: 800},
		cli.IntFlag{Name: "height", Usage: "Canvas height in pixels", Value: 600},
		cli.IntFlag{Name: "tiles-x", Usage: "Tile columns", Value: 8},
		cli.IntFlag{Name: "tiles-y", Usage: "Tile rows", Value: 6},
		cli.BoolFlag{Name: "top-left", Usage: "Present canvas row 0 at the top"},
		cli.StringFlag{Name: "producer", Usage: "Request producer: turmite or noise", Value: "turmite"},
		cli.IntFlag{Name: "turmites", Usage: "Number of turmites", Value: 1},
		cli.IntFlag{Name: "steps", Usage: "Producer steps per frame", Value: 10000},
		cli.IntFlag{Name: "frames", Usage: "Frames to run without the terminal preview", Value: 64},
		cli.Uint64Flag{Name: "seed", Usage: "Seed for noise and extra turmite placement", Value: 1},
		cli.IntFlag{Name: "workers", Usage: "Upload builder goroutines (0 = GOMAXPROCS)", Value: 1},
		cli.StringFlag{Name: "output", Usage: "PNG file written after the last frame"},
		cli.IntFlag{Name: "scale", Usage: "PNG scale factor", Value: 1},
		cli.StringSliceFlag{Name: "sink", Usage: "Extra upload sinks, any of: " + strings.Join(backend.Available(), ", ")},
		cli.BoolFlag{Name: "term", Usage: "Show a live terminal preview"},
		cli.IntFlag{Name: "fps", Usage: "Terminal preview frame rate", Value: 30},
		cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
	}
	app.Action = run
	return app
}
