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

package cpu

import (
	"fmt"
	"sync/atomic"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/validator"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/z80"
	"github.com/sirupsen/logrus"
)

type CPU struct {
	processor.Registers

	decoder processor.Decoder
	pending atomic.Bool

	stats       processor.Stats
	peripherals []peripheral.Peripheral

	mem   memory.RAM
	iomap memory.IOMap
}

var _ processor.Processor = (*CPU)(nil)

// NewCPU creates a machine with a Z80 instruction set and installs the
// given peripherals. Install failures are logged and returned, the
// machine is still usable.
func NewCPU(peripherals []peripheral.Peripheral) (*CPU, []error) {
	p := &CPU{peripherals: peripherals}
	p.Registers.Reset()
	p.decoder = z80.NewInstructionSet(&p.Registers)
	return p, p.installPeripherals()
}

// SetDecoder replaces the instruction decoder. The decoder is expected
// to operate on the registers returned by GetRegisters.
func (p *CPU) SetDecoder(d processor.Decoder) {
	p.decoder = d
}

func (p *CPU) installPeripherals() []error {
	var errs []error
	for _, d := range p.peripherals {
		if err := d.Install(p); err != nil {
			logrus.WithField("peripheral", d.Name()).Error("Failed to install peripheral: ", err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
		}
	}
	return errs
}

func (p *CPU) Close() {
	for _, d := range p.peripherals {
		if cd, b := d.(peripheral.PeripheralCloser); b {
			if err := cd.Close(); err != nil {
				logrus.WithField("peripheral", d.Name()).Error("Failed to close peripheral: ", err)
			}
		}
	}
}

func (p *CPU) Break() {
	p.Debug = true
}

func (p *CPU) GetStats() processor.Stats {
	s := p.stats
	p.stats = processor.Stats{}
	return s
}

// Reset restores the registers and peripherals. Memory is left intact.
func (p *CPU) Reset() {
	logrus.Info("CPU reset!")

	p.Registers.Reset()
	p.decoder.Reset()
	p.pending.Store(false)
	for _, d := range p.peripherals {
		d.Reset()
	}
}

// RaiseInterrupt may be called from any goroutine. Requests made before
// the previous one was delivered collapse into one.
func (p *CPU) RaiseInterrupt() {
	p.pending.Store(true)
}

func (p *CPU) InterruptPending() bool {
	return p.pending.Load()
}

func (p *CPU) GetRegisters() *processor.Registers {
	return &p.Registers
}

func (p *CPU) GetMappedIODevice(port byte) (memory.IO, bool) {
	return p.iomap.Device(port)
}

func (p *CPU) InstallIODevice(device memory.PortDevice) {
	p.InstallIODeviceAt(device, device.Ports()...)
}

func (p *CPU) InstallIODeviceAt(device memory.IO, port ...byte) {
	p.iomap.Bind(device, port...)
}

func (p *CPU) InByte(port byte) (byte, error) {
	p.stats.RX++
	return p.iomap.In(port)
}

func (p *CPU) OutByte(port, data byte) {
	p.stats.TX++
	if err := p.iomap.Out(port, data); err != nil {
		p.stats.UnmappedWrites++
		logrus.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%04X", p.PC),
			"data": fmt.Sprintf("0x%02X", data),
		}).Warn(err)
	}
}

func (p *CPU) ReadByte(addr uint16) byte {
	return p.mem.ReadByte(addr)
}

func (p *CPU) WriteByte(addr uint16, data byte) {
	p.mem.WriteByte(addr, data)
}

// Read resolves addr against memory or the port map. Reading an unbound
// port is an error.
func (p *CPU) Read(addr memory.Address) (byte, error) {
	var v byte
	if addr.IsPort() {
		var err error
		if v, err = p.InByte(addr.PortNumber()); err != nil {
			return 0, err
		}
	} else {
		v = p.ReadByte(addr.Offset)
	}
	validator.Read(addr, v)
	return v, nil
}

// Write resolves addr against memory or the port map. Writes to unbound
// ports are logged and dropped.
func (p *CPU) Write(addr memory.Address, data byte) {
	validator.Write(addr, data)
	if addr.IsPort() {
		p.OutByte(addr.PortNumber(), data)
		return
	}
	p.WriteByte(addr.Offset, data)
}
