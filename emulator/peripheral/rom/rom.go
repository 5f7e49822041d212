/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Package rom loads a program image into memory when installed. Images
// are either Intel HEX or raw binary.
package rom

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	ErrBadStartCode = errors.New("bad start code in hex file")
	ErrChecksum     = errors.New("bad checksum in hex file")
	ErrTooLarge     = errors.New("ROM image too large")
)

const (
	recordData = 0x00
	recordEOF  = 0x01
)

type Device struct {
	peripheral.NullDevice

	RomName string
	Reader  io.Reader
	Base    uint16
	Binary  bool

	size int
}

// Open creates a device that reads name from fs. The file is closed with
// the device.
func Open(fs afero.Fs, name string, binary bool) (*Device, error) {
	fp, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &Device{RomName: name, Reader: fp, Binary: binary}, nil
}

func (m *Device) Install(p processor.Processor) error {
	var err error
	if m.Binary {
		m.size, err = loadBinary(m.Reader, m.Base, p)
	} else {
		m.size, err = loadHex(m.Reader, p)
	}
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"rom":  m.Name(),
		"size": m.size,
	}).Info("ROM loaded")
	return nil
}

func (m *Device) Name() string {
	if m.RomName == "" {
		return "ROM"
	}
	return m.RomName
}

// Size is the number of bytes written to memory by Install.
func (m *Device) Size() int {
	return m.size
}

func (m *Device) Close() error {
	if c, ok := m.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func loadBinary(r io.Reader, base uint16, mem memory.Memory) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if int(base)+len(data) > memory.Size {
		return 0, fmt.Errorf("%w: %d bytes at 0x%04X", ErrTooLarge, len(data), base)
	}
	for i, v := range data {
		mem.WriteByte(base+uint16(i), v)
	}
	return len(data), nil
}

func loadHex(r io.Reader, mem memory.Memory) (int, error) {
	var size int
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] != ':' {
			return size, fmt.Errorf("%w: line %d", ErrBadStartCode, n)
		}

		rec, err := hex.DecodeString(line[1:])
		if err != nil {
			return size, fmt.Errorf("line %d: %w", n, err)
		}
		if len(rec) < 5 || len(rec) != int(rec[0])+5 {
			return size, fmt.Errorf("line %d: invalid record length", n)
		}

		var sum byte
		for _, v := range rec {
			sum += v
		}
		if sum != 0 {
			return size, fmt.Errorf("%w: line %d", ErrChecksum, n)
		}

		count := int(rec[0])
		addr := int(rec[1])<<8 | int(rec[2])
		data := rec[4 : 4+count]

		switch rec[3] {
		case recordEOF:
			return size, nil
		case recordData:
			if addr+count > memory.Size {
				return size, fmt.Errorf("%w: record at 0x%04X", ErrTooLarge, addr)
			}
			for i, v := range data {
				mem.WriteByte(uint16(addr+i), v)
			}
			size += count
		default:
			logrus.WithField("line", n).Debugf("Ignoring hex record type 0x%02X", rec[3])
		}
	}

	if err := scanner.Err(); err != nil {
		return size, err
	}
	logrus.Warn("Hex file has no end of file record")
	return size, nil
}
