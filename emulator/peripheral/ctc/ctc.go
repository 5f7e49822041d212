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

// Package ctc is a simplified counter/timer that raises an interrupt every
// Period executed instructions.
package ctc

import (
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
)

const DefaultPort byte = 0x10

type Device struct {
	BasePort byte
	Period   uint32

	initial, counter uint32
	irq              processor.Interruptible
}

func (m *Device) Install(p processor.Processor) error {
	m.irq = p
	m.initial = m.Period
	p.InstallIODeviceAt(m, m.BasePort)
	return nil
}

func (m *Device) Name() string {
	return "Counter/Timer Circuit"
}

func (m *Device) Reset() {
	m.Period = m.initial
	m.counter = 0
}

func (m *Device) Step(n int) error {
	if m.Period == 0 {
		return nil
	}
	if m.counter += uint32(n); m.counter >= m.Period {
		m.counter = 0
		m.irq.RaiseInterrupt()
	}
	return nil
}

// In returns the high byte of the instructions left until the next interrupt.
func (m *Device) In(byte) byte {
	if m.Period == 0 {
		return 0
	}
	return byte((m.Period - m.counter) >> 8)
}

// Out programs the period in units of 256 instructions. Zero disables the timer.
func (m *Device) Out(_ byte, data byte) {
	m.Period = uint32(data) * 256
	m.counter = 0
}
