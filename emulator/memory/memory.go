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

package memory

import (
	"fmt"
)

// Size of the flat memory address space.
const Size = 0x10000

type Space byte

const (
	MemorySpace Space = iota
	PortSpace
)

// Address selects a cell in either the memory or the port address space.
// The two spaces never alias each other.
type Address struct {
	Space  Space
	Offset uint16
}

func Mem(addr uint16) Address {
	return Address{MemorySpace, addr}
}

func Port(port byte) Address {
	return Address{PortSpace, uint16(port)}
}

// FromLinear decodes the single-integer overlay where any value at or
// above Size denotes a port and the low 8 bits are the port number.
func FromLinear(a uint32) Address {
	if a < Size {
		return Mem(uint16(a))
	}
	return Port(byte(a & 0xFF))
}

func (a Address) Linear() uint32 {
	if a.IsPort() {
		return Size + uint32(a.Offset&0xFF)
	}
	return uint32(a.Offset)
}

func (a Address) IsPort() bool {
	return a.Space == PortSpace
}

func (a Address) PortNumber() byte {
	return byte(a.Offset)
}

func (a Address) String() string {
	if a.IsPort() {
		return fmt.Sprintf("port 0x%02X", a.PortNumber())
	}
	return fmt.Sprintf("0x%04X", a.Offset)
}

// Write is a single pending store produced by an instruction.
type Write struct {
	Addr Address
	Data byte
}

func (w Write) String() string {
	return fmt.Sprintf("%v <- 0x%02X", w.Addr, w.Data)
}

type Memory interface {
	ReadByte(addr uint16) byte
	WriteByte(addr uint16, data byte)
}

type IO interface {
	In(port byte) byte
	Out(port byte, data byte)
}

// PortDevice is implemented by devices that declare the ports they claim.
type PortDevice interface {
	IO
	Ports() []byte
}

type RAM [Size]byte

func (m *RAM) ReadByte(addr uint16) byte {
	return m[addr]
}

func (m *RAM) WriteByte(addr uint16, data byte) {
	m[addr] = data
}

// Load copies data starting at base. Writes past 0xFFFF wrap around.
func (m *RAM) Load(base uint16, data []byte) {
	for i, v := range data {
		m[base+uint16(i)] = v
	}
}
