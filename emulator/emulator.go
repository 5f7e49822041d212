/*
Copyright (C) 2019-2021 Andreas T Jonsson

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package emulator assembles the board from its peripherals and drives
// the processor until it halts or the user quits.
package emulator

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/andreas-jonsson/virtualz80/emulator/peripheral"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral/console"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral/ctc"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral/debug"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral/rom"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/cpu"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/validator"
	"github.com/andreas-jonsson/virtualz80/platform"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ROM         string
	Binary      bool
	Base        uint16
	MIPS        float64
	Trace       bool
	Validate    string
	CTCPeriod   uint32
	Breakpoints []uint16
	Monitor     string
}

var (
	config = Config{ROM: "rom/monitor.hex"}

	romBase,
	ctcPeriod uint
	breakpoints string
	verbose     bool
)

func init() {
	if p, ok := os.LookupEnv("VZ80_DEFAULT_ROM_PATH"); ok {
		config.ROM = p
	}

	flag.StringVar(&config.ROM, "rom", config.ROM, "Path to ROM image")
	flag.BoolVar(&config.Binary, "b", false, "ROM image is raw binary instead of Intel HEX")
	flag.UintVar(&romBase, "base", 0, "Load address of a binary ROM image")
	flag.Float64Var(&config.MIPS, "mips", 0, "Limit CPU speed")
	flag.BoolVar(&config.Trace, "trace", false, "Log every executed instruction (requires -headless)")
	flag.StringVar(&config.Validate, "validate", "", "Record instruction events to file")
	flag.UintVar(&ctcPeriod, "ctc", 0, "Raise a timer interrupt every N instructions")
	flag.StringVar(&breakpoints, "break", "", "Comma separated list of breakpoint addresses")
	flag.StringVar(&config.Monitor, "monitor", "", "Serve the debug monitor on this TCP address")
	flag.BoolVar(&verbose, "debug", false, "Verbose logging")
}

// Start runs the machine described by the command line on p.
func Start(p platform.Platform) error {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config
	cfg.Base = uint16(romBase)
	cfg.CTCPeriod = uint32(ctcPeriod)

	var err error
	if cfg.Breakpoints, err = ParseBreakpoints(breakpoints); err != nil {
		return err
	}
	if err = checkFrontEnd(cfg, platform.IsHeadless()); err != nil {
		return err
	}

	// The terminal front end owns the screen.
	debug.MuteLogging(!platform.IsHeadless())
	defer debug.MuteLogging(false)

	return Run(p, cfg)
}

// checkFrontEnd rejects options the front end cannot honour. The terminal
// front end mutes logging, so an instruction trace is only printed headless.
func checkFrontEnd(cfg Config, headless bool) error {
	if cfg.Trace && !headless {
		return errors.New("-trace requires -headless")
	}
	return nil
}

// ParseBreakpoints reads a comma separated list of hexadecimal addresses.
func ParseBreakpoints(s string) ([]uint16, error) {
	var res []uint16
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field == "" {
			continue
		}
		field = strings.TrimPrefix(strings.ToLower(field), "0x")
		v, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", field, err)
		}
		res = append(res, uint16(v))
	}
	return res, nil
}

// Run builds the machine and steps it until the processor halts with
// interrupts disabled, the monitor quits or shutdown is requested.
func Run(p platform.Platform, cfg Config) error {
	if err := validator.Initialize(cfg.Validate, validator.DefaultQueueSize, validator.DefaultBufferSize); err != nil {
		return err
	}
	defer validator.Shutdown()

	image, err := rom.Open(p.FileSystem(), cfg.ROM, cfg.Binary)
	if err != nil {
		return err
	}
	image.Base = cfg.Base

	con := &console.Device{Output: p.Console()}
	timer := &ctc.Device{BasePort: ctc.DefaultPort, Period: cfg.CTCPeriod}

	peripherals := []peripheral.Peripheral{
		image, // Program ROM
		con,   // Serial Console
		timer, // Counter/Timer
	}

	var dbg *debug.Device
	if cfg.Trace || cfg.Monitor != "" || len(cfg.Breakpoints) > 0 {
		dbg = &debug.Device{Listen: cfg.Monitor, Breakpoints: cfg.Breakpoints}
		peripherals = append(peripherals, dbg)
	}

	m, errs := cpu.NewCPU(peripherals)
	defer m.Close()
	if len(errs) > 0 {
		return fmt.Errorf("machine setup failed: %w", errs[0])
	}

	p.SetKeyboardHandler(func(key byte) {
		if !con.SendKey(key) {
			logrus.WithField("key", key).Debug("Key dropped")
		}
	})
	defer p.SetKeyboardHandler(nil)

	p.SetTitle("VirtualZ80 - " + image.Name())
	return loop(m, dbg, cfg)
}

func loop(m *cpu.CPU, dbg *debug.Device, cfg Config) error {
	// Nanoseconds per instruction.
	var limitSpeed int64
	if cfg.MIPS > 0 {
		limitSpeed = int64(1000 / cfg.MIPS)
	}

	start := time.Now()
	var executed int64

	for !platform.ShutdownRequested() {
		pc := m.PC
		ins, args, err := m.Step()
		if ins != nil && dbg != nil {
			dbg.Record(pc, ins, args)
			if cfg.Trace {
				logrus.Infof("[0x%04X] %s", pc, ins.Disassemble(args))
			}
		}

		switch {
		case errors.Is(err, processor.ErrCPUHalt):
			logrus.WithField("pc", fmt.Sprintf("0x%04X", m.PC)).Info("CPU halted")
			logrus.Debugf("%+v", m.GetStats())
			return nil
		case errors.Is(err, debug.ErrQuit):
			return nil
		case err != nil:
			return err
		}

		if m.Halted {
			runtime.Gosched()
		}

		if limitSpeed > 0 {
			executed++
			if ahead := time.Duration(executed*limitSpeed) - time.Since(start); ahead > time.Millisecond {
				time.Sleep(ahead)
			}
		}
	}
	return nil
}
