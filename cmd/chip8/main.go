// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/translate"
)

type options struct {
	rom      string
	compile  string
	save     string
	font     string
	frontend string
	ips      int
	config   string
	dump     string
	verbose  bool
}

func main() {
	var opt options

	flag.StringVar(&opt.rom, "r", "", "ROM image to run")
	flag.StringVar(&opt.compile, "c", "", "Assembly source to compile and run")
	flag.StringVar(&opt.save, "s", "", "Save compiled ROM to file, do not execute")
	flag.StringVar(&opt.font, "font", "", "80 byte font to replace the default")
	flag.StringVar(&opt.frontend, "frontend", "", "Frontend: term or window")
	flag.IntVar(&opt.ips, "ips", -1, "Instructions per second, 0 for unthrottled")
	flag.StringVar(&opt.config, "config", "", "TOML configuration file")
	flag.StringVar(&opt.dump, "dump", "", "Save the final display as a PNG image")
	flag.BoolVar(&opt.verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(opt.rom) == 0 && len(opt.compile) == 0 {
		log.Fatalf("%v: one of -r or -c is required", os.Args[0])
	}

	err := run(&opt)
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the configuration file, then applies flag overrides.
func loadConfig(opt *options) (config emulator.Config, err error) {
	config = emulator.DefaultConfig()

	if len(opt.config) != 0 {
		var inf *os.File
		inf, err = os.Open(opt.config)
		if err != nil {
			return
		}
		defer inf.Close()

		err = emulator.LoadConfig(inf, &config)
		if err != nil {
			err = fmt.Errorf("%v: %w", opt.config, err)
			return
		}
	}

	if opt.ips >= 0 {
		config.InstructionsPerSecond = opt.ips
	}
	if len(opt.frontend) != 0 {
		config.Frontend = opt.frontend
	}

	err = config.Validate()
	return
}

// assemble compiles a source file with the emulator defines predefined.
func assemble(emu *emulator.Emulator, path string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	if verbose {
		for addr, op := range prog.Codes() {
			log.Printf("%03x: %04x %v", addr, uint16(op), op)
		}
	}

	return
}

func run(opt *options) (err error) {
	config, err := loadConfig(opt)
	if err != nil {
		return
	}

	emu := emulator.NewEmulator(config)
	emu.Verbose = opt.verbose

	if len(opt.compile) != 0 {
		emu.Program, err = assemble(emu, opt.compile, opt.verbose)
		if err != nil {
			return
		}

		if len(opt.save) != 0 {
			err = os.WriteFile(opt.save, emu.Program.Binary(), 0o644)
			return
		}
	}

	if len(opt.rom) != 0 {
		emu.Rom, err = io.OpenRom(os.DirFS(filepath.Dir(opt.rom)), filepath.Base(opt.rom))
		if err != nil {
			err = fmt.Errorf("%v: %w", opt.rom, err)
			return
		}
	}

	if len(opt.font) != 0 {
		emu.Font, err = io.OpenFont(os.DirFS(filepath.Dir(opt.font)), filepath.Base(opt.font))
		if err != nil {
			err = fmt.Errorf("%v: %w", opt.font, err)
			return
		}
	}

	keymap, err := io.NewKeymap(config.Keymap)
	if err != nil {
		return
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch config.Frontend {
	case "term":
		err = runTerminal(ctx, cancel, emu, keymap)
	case "window":
		err = runWindow(ctx, cancel, emu, keymap)
	default:
		err = emulator.ErrConfigValue{Key: "frontend", Value: config.Frontend}
	}

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil && opt.verbose {
		log.Printf("\n%v", emu.Cpu)
	}
	if opt.verbose {
		log.Print(translate.From("%d cycles, %d unknown", emu.Cpu.Ticks, emu.Cpu.Unknown))
	}

	if len(opt.dump) != 0 {
		derr := dump(opt.dump, emu.Cpu.Display.Snapshot())
		if err == nil {
			err = derr
		}
	}

	return
}

// dump saves a frame as a PNG image.
func dump(path string, frame cpu.Frame) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = io.WritePNG(ouf, frame, WINDOW_SCALE)
	return
}

func runTerminal(ctx context.Context, cancel context.CancelFunc, emu *emulator.Emulator, keymap io.Keymap) (err error) {
	tm := io.NewTerminal(os.Stdin, os.Stdout, keymap)
	tm.Verbose = emu.Verbose

	restore, err := tm.MakeRaw()
	if err != nil {
		return
	}
	defer restore()

	go func() {
		<-tm.Scan(ctx)
		cancel()
	}()

	emu.Display = tm
	emu.Keypad = tm
	emu.Speaker = tm

	err = emu.Run(ctx)
	return
}

func runWindow(ctx context.Context, cancel context.CancelFunc, emu *emulator.Emulator, keymap io.Keymap) (err error) {
	win := NewWindow(ctx, cancel, keymap)

	speaker, err := NewSpeaker()
	if err != nil {
		log.Printf("speaker: %v", err)
		err = nil
	} else {
		defer speaker.Close()
		emu.Speaker = speaker
	}

	emu.Display = win
	emu.Keypad = win

	done := make(chan error, 1)
	go func() {
		done <- emu.Run(ctx)
		cancel()
	}()

	err = win.Run("chip8")
	if err != nil {
		cancel()
		<-done
		return
	}

	err = <-done
	return
}
