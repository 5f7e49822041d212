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

package processor

import (
	"errors"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
)

// MaxInstructionLength bounds the number of bytes fed to a decoder
// before the stream is considered corrupt.
const MaxInstructionLength = 8

type Stats struct {
	NumInterrupts   uint32
	NumInstructions uint64
	RX, TX          uint64
	UnmappedWrites  uint64
}

var (
	ErrCPUHalt       = errors.New("CPU HALT")
	ErrDecodeOverrun = errors.New("no instruction decoded within bound")
	ErrInterruptMode = errors.New("unsupported interrupt mode")
)

// Args are the operand bytes that followed the opcode in the instruction stream.
type Args []byte

func (a Args) Word(i int) uint16 {
	return uint16(a[i]) | uint16(a[i+1])<<8
}

// Instruction is a fully decoded operation. It never touches memory or
// devices itself; every load and store goes through the engine.
type Instruction interface {
	ReadList(args Args) []memory.Address
	Execute(data []byte, args Args) []memory.Write
	Disassemble(args Args) string
}

// Decoder accumulates an instruction one byte at a time. It returns
// false until the fed bytes form a complete instruction.
type Decoder interface {
	Feed(b byte) (Instruction, Args, bool)
	Reset()
}

type Debug interface {
	Break()
	GetStats() Stats
}

type Interruptible interface {
	RaiseInterrupt()
}

type Processor interface {
	Debug
	Interruptible

	InByte(port byte) (byte, error)
	OutByte(port byte, data byte)

	ReadByte(addr uint16) byte
	WriteByte(addr uint16, data byte)

	GetRegisters() *Registers
	GetMappedIODevice(port byte) (memory.IO, bool)

	InstallIODevice(device memory.PortDevice)
	InstallIODeviceAt(device memory.IO, port ...byte)
}
