package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/render"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A Game Boy (DMG) emulator"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to the 256-byte DMG boot ROM",
			Value: "DMG_ROM.bin",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.BoolFlag{
			Name:  "sdl2",
			Usage: "Present frames in an SDL2 window instead of the terminal",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale factor for the SDL2 renderer",
			Value: 3,
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := dotmatrix.NewWithFile(romPath)
	if err != nil {
		return err
	}

	if bootPath := c.String("boot-rom"); bootPath != "" {
		if err := emu.LoadBootROM(bootPath); err != nil {
			slog.Warn("Boot ROM not loaded, starting from cartridge", "path", bootPath, "error", err)
		}
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}

		slog.Info("Running headless mode", "frames", frames)
		for i := 0; i < frames; i++ {
			emu.RunUntilFrame()
		}
		if err := emu.SaveSAV(); err != nil {
			return err
		}
		slog.Info("Headless execution completed", "frames", frames)
		return nil
	}

	emu.SetFrameLimiter(timing.NewFrameLimiter())

	if c.Bool("sdl2") {
		renderer, err := render.NewSDL2Renderer(emu, c.Int("scale"))
		if err != nil {
			return fmt.Errorf("starting SDL2 renderer: %w", err)
		}
		return renderer.Run()
	}

	renderer, err := render.NewTerminalRenderer(emu)
	if err != nil {
		return err
	}
	return renderer.Run()
}
