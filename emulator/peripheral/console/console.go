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

// Package console implements the board's character terminal. Reads from
// the data port return the last key pressed, writes append to Output.
package console

import (
	"io"
	"sync"

	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/sirupsen/logrus"
)

const (
	DataPort   byte = 0x00
	StatusPort byte = 0x01
)

// Status port bits.
const KeyAvailable byte = 0x01

const KeyEnter byte = 13

type Device struct {
	sync.Mutex

	Output io.Writer

	key    byte
	hasKey bool
	irq    processor.Interruptible
}

// Install binds the console ports. A key queued before install raises
// its interrupt now.
func (m *Device) Install(p processor.Processor) error {
	m.Lock()
	m.irq = p
	pending := m.hasKey
	m.Unlock()

	p.InstallIODevice(m)
	if pending {
		p.RaiseInterrupt()
	}
	return nil
}

func (m *Device) Ports() []byte {
	return []byte{DataPort, StatusPort}
}

func (m *Device) Name() string {
	return "Serial Console"
}

func (m *Device) Reset() {
	m.Lock()
	m.key, m.hasKey = 0, false
	m.Unlock()
}

func (m *Device) Step(int) error {
	return nil
}

// SendKey queues a key and raises an interrupt. The console holds a single
// key, it returns false and drops the key if the previous one is unread.
func (m *Device) SendKey(key byte) bool {
	m.Lock()
	if m.hasKey {
		m.Unlock()
		return false
	}
	m.key, m.hasKey = key, true
	irq := m.irq
	m.Unlock()

	if irq != nil {
		irq.RaiseInterrupt()
	}
	return true
}

func (m *Device) In(port byte) byte {
	m.Lock()
	defer m.Unlock()

	switch port {
	case DataPort:
		if m.hasKey {
			m.hasKey = false
			return m.key
		}
	case StatusPort:
		if m.hasKey {
			return KeyAvailable
		}
	}
	return 0
}

func (m *Device) Out(port, data byte) {
	if port != DataPort || m.Output == nil {
		return
	}
	if _, err := m.Output.Write([]byte{data}); err != nil {
		logrus.WithField("device", m.Name()).Error(err)
	}
}
