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

package debug

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/z80"
	"github.com/sirupsen/logrus"
)

const HistorySize = 128

var ErrQuit = errors.New("QUIT!")

// MuteLogging silences the global logger. Used when the terminal is owned
// by the front end.
func MuteLogging(b bool) {
	if b {
		logrus.SetOutput(io.Discard)
		return
	}
	logrus.SetOutput(os.Stderr)
}

type Device struct {
	// Input and Output carry the interactive monitor. When Listen is set the
	// monitor is served to the first TCP client instead.
	Input  io.Reader
	Output io.Writer
	Listen string

	Breakpoints []uint16

	historyChan         chan string
	numInstructionsLost uint64
	stepping            bool

	scanner  *bufio.Scanner
	listener net.Listener
	conns    chan net.Conn
	conn     net.Conn

	r *processor.Registers
	p processor.Processor
}

func (m *Device) Install(p processor.Processor) error {
	m.historyChan = make(chan string, HistorySize)
	m.p = p
	m.r = p.GetRegisters()

	if m.Input != nil {
		m.scanner = bufio.NewScanner(m.Input)
	}
	if m.Output == nil {
		m.Output = io.Discard
	}

	if m.Listen != "" {
		ln, err := net.Listen("tcp", m.Listen)
		if err != nil {
			return err
		}
		m.listener = ln
		m.conns = make(chan net.Conn, 1)

		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				logrus.WithField("remote", conn.RemoteAddr()).Info("Debugger connected")
				m.conns <- conn
			}
		}()
	}
	return nil
}

func (m *Device) Name() string {
	return "Debug Device"
}

func (m *Device) Reset() {
	m.stepping = false
}

func (m *Device) Close() error {
	if m.conn != nil {
		m.conn.Close()
	}
	if m.listener != nil {
		return m.listener.Close()
	}
	return nil
}

func (m *Device) Break() {
	m.r.Debug = true
}

func (m *Device) Continue() {
	m.r.Debug = false
}

func (m *Device) SetBreakpoint(pc uint16) {
	m.Breakpoints = append(m.Breakpoints, pc)
}

// Record adds an executed instruction to the history. The oldest entry is
// dropped when the history is full.
func (m *Device) Record(pc uint16, ins processor.Instruction, args processor.Args) {
	m.pushHistory(fmt.Sprintf("[0x%04X] %s", pc, ins.Disassemble(args)))
}

func (m *Device) pushHistory(inst string) {
	select {
	case m.historyChan <- inst:
	default:
		<-m.historyChan
		m.numInstructionsLost++
		m.historyChan <- inst
	}
}

// History returns the recorded instructions, oldest first.
func (m *Device) History() []string {
	n := len(m.historyChan)
	res := make([]string, 0, n)
	for i := 0; i < n; i++ {
		inst := <-m.historyChan
		res = append(res, inst)
		m.historyChan <- inst
	}
	return res
}

func (m *Device) LostInstructions() uint64 {
	return m.numInstructionsLost
}

func (m *Device) Step(int) error {
	for i, br := range m.Breakpoints {
		if m.r.PC == br {
			logrus.WithField("pc", fmt.Sprintf("0x%04X", br)).Info("BREAK: ", i)
			m.Break()
		}
	}

	if m.stepping {
		m.stepping = false
		m.Break()
	}

	if !m.r.Debug {
		return nil
	}

	if m.scanner == nil && m.conns != nil {
		logrus.WithField("address", m.listener.Addr()).Info("Waiting for debugger")
		m.conn = <-m.conns
		m.scanner = bufio.NewScanner(m.conn)
		m.Output = m.conn
	}

	if m.scanner == nil {
		// No monitor attached, dump the trail and keep running.
		for _, inst := range m.History() {
			logrus.Info(inst)
		}
		m.Continue()
		return nil
	}
	return m.monitor()
}

func (m *Device) readLine() (string, bool) {
	if !m.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.scanner.Text()), true
}

func (m *Device) printf(format string, a ...interface{}) {
	fmt.Fprintf(m.Output, format, a...)
}

func (m *Device) monitor() error {
	for m.r.Debug {
		text, _ := z80.Disassemble(m.p.ReadByte, m.r.PC)
		m.printf("[0x%04X] %s\nDEBUG> ", m.r.PC, text)

		ln, ok := m.readLine()
		if !ok {
			return ErrQuit
		}

		switch {
		case ln == "q":
			return ErrQuit
		case ln == "c":
			m.Continue()
		case ln == "" || ln == "s":
			m.Continue()
			m.stepping = true
		case ln == "r":
			m.printf("%v\n", m.r)
		case ln == "h":
			m.showHistory(16)
		case ln == "ch":
			for len(m.historyChan) > 0 {
				<-m.historyChan
				m.numInstructionsLost++
			}
			m.printf("Clear history!\n")
		case ln == "t":
			m.printf("%+v\n", m.p.GetStats())
		case ln == "b":
			for i, br := range m.Breakpoints {
				m.printf("%d:\t0x%04X\n", i, br)
			}
		case ln == "cb":
			m.Breakpoints = m.Breakpoints[:0]
			m.printf("Clear breakpoints!\n")
		case ln == "d":
			m.disassemble(m.r.PC, 8)
		case strings.HasPrefix(ln, "h "):
			var num int
			if n, _ := fmt.Sscanf(ln[2:], "%d", &num); n == 1 {
				m.showHistory(num)
			}
		case strings.HasPrefix(ln, "b "):
			var b uint16
			if n, _ := fmt.Sscanf(ln[2:], "%x", &b); n == 1 {
				m.SetBreakpoint(b)
				m.printf("Breakpoint set at: 0x%04X\n", b)
			}
		case strings.HasPrefix(ln, "rb "):
			var i int
			if n, _ := fmt.Sscanf(ln[3:], "%d", &i); n == 1 && i >= 0 && i < len(m.Breakpoints) {
				m.printf("Removed breakpoint %d at: 0x%04X\n", i, m.Breakpoints[i])
				m.Breakpoints = append(m.Breakpoints[:i], m.Breakpoints[i+1:]...)
			}
		case strings.HasPrefix(ln, "m "):
			m.showMemory(ln[2:])
		default:
			m.printf("unknown command: %s\n", ln)
		}
	}
	return nil
}

func (m *Device) showHistory(num int) {
	m.printf("| Lost instructions: %d\n", m.numInstructionsLost)
	hist := m.History()
	if num > 0 && num < len(hist) {
		hist = hist[len(hist)-num:]
	}
	for _, inst := range hist {
		m.printf("| %s\n", inst)
	}
}

func (m *Device) showMemory(rng string) {
	var from, to uint16
	switch n, _ := fmt.Sscanf(rng, "%x,%x", &from, &to); n {
	case 1:
		d := m.p.ReadByte(from)
		m.printf("0x%04X: 0x%02X (%d)\n", from, d, d)
	case 2:
		if to < from {
			m.printf("invalid memory range\n")
			return
		}
		buffer := make([]byte, int(to-from)+1)
		for i := range buffer {
			buffer[i] = m.p.ReadByte(from + uint16(i))
		}
		m.printf("%s", hex.Dump(buffer))
	default:
		m.printf("invalid memory range\n")
	}
}

func (m *Device) disassemble(pc uint16, num int) {
	for i := 0; i < num; i++ {
		text, n := z80.Disassemble(m.p.ReadByte, pc)
		m.printf("0x%04X: %s\n", pc, text)
		pc += uint16(n)
	}
}
