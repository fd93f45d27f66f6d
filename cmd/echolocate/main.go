package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/echolocation/cmd"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "echolocate: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "echolocate"
	app.Usage = "sweep a scene with echolocation waves and draw the returns as fading points"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "run the echolocation demo",
			Description: `
Fire waves of rays from an emitter orbiting a small arena and draw every hit
as a billboarded point that fades over its lifetime. Each wave owns one slot
of a fixed pool of GPU buffers; completed raycasts are reaped in trigger order.

The software renderer runs headless and records draw calls instead of
rasterizing them. Pass --backend wgpu --window to open a window. Space fires
an extra wave, P pauses the automatic waves, W/S and the mouse wheel zoom and
escape quits.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "backend",
					Value: "software",
					Usage: "renderer backend (software, wgpu)",
				},
				cli.BoolFlag{
					Name:  "window",
					Usage: "present to a window (wgpu only)",
				},
				cli.IntFlag{
					Name:  "width",
					Value: 1280,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 720,
					Usage: "frame height",
				},
				cli.StringFlag{
					Name:  "raycaster",
					Value: "pool",
					Usage: "raycaster backend (pool, immediate)",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "max raycast workers for the pool backend",
				},
				cli.IntFlag{
					Name:  "rays",
					Value: 50000,
					Usage: "rays per wave",
				},
				cli.IntFlag{
					Name:  "waves",
					Value: 6,
					Usage: "max live waves (buffer pool slots)",
				},
				cli.Float64Flag{
					Name:  "max-distance",
					Value: 100,
					Usage: "ray range in world units",
				},
				cli.DurationFlag{
					Name:  "lifetime",
					Value: 5 * time.Second,
					Usage: "how long a point stays visible",
				},
				cli.Float64Flag{
					Name:  "speed",
					Value: 40,
					Usage: "wave front speed in world units per second",
				},
				cli.Float64Flag{
					Name:  "point-size",
					Value: 0.05,
					Usage: "point billboard size in world units",
				},
				cli.StringFlag{
					Name:  "overflow",
					Value: "reject",
					Usage: "what a trigger does when its slot is busy (reject, force, panic)",
				},
				cli.DurationFlag{
					Name:  "stall-timeout",
					Value: 0,
					Usage: "abandon a wave whose raycast takes longer than this (0 disables)",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Value: 0,
					Usage: "ray direction seed (0 picks one from the clock)",
				},
				cli.DurationFlag{
					Name:  "interval",
					Value: 750 * time.Millisecond,
					Usage: "time between automatic waves (0 fires every tick)",
				},
				cli.DurationFlag{
					Name:  "duration",
					Value: 10 * time.Second,
					Usage: "stop after this long (0 runs until interrupted)",
				},
				cli.Uint64Flag{
					Name:  "ticks",
					Value: 0,
					Usage: "stop after this many ticks (0 disables)",
				},
				cli.Float64Flag{
					Name:  "tick-rate",
					Value: 60,
					Usage: "ticks per second",
				},
				cli.BoolFlag{
					Name:  "profile",
					Usage: "log tick and renderer statistics",
				},
				cli.DurationFlag{
					Name:  "profile-interval",
					Value: time.Second,
					Usage: "time between profiling samples",
				},
			},
			Action: cmd.RunDemo,
		},
		{
			Name:   "layout",
			Usage:  "print the byte layout of the structs shared with the GPU kernels",
			Action: cmd.PrintLayout,
		},
	}

	return app
}
