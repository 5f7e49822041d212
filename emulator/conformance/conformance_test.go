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

// Package conformance runs small programs on the emulator and on an
// independent Z80 core and compares the resulting machine state.
package conformance

import (
	"context"
	"errors"
	"testing"

	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/cpu"
	"github.com/koron-go/z80"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxSteps = 100000

// Undocumented bits 3 and 5 are not compared.
const documentedFlags = byte(processor.Sign | processor.Zero | processor.HalfCarry | processor.ParityOverflow | processor.Subtract | processor.Carry)

type referenceMemory [0x10000]byte

func (m *referenceMemory) Get(addr uint16) uint8 {
	return m[addr]
}

func (m *referenceMemory) Set(addr uint16, value uint8) {
	m[addr] = value
}

type snapshot struct {
	A, F, B, C, D, E, H, L byte
	IX, IY, SP             uint16
}

type segment struct {
	addr uint16
	data []byte
}

func runEmulator(t *testing.T, image []segment) (*cpu.CPU, snapshot) {
	p, errs := cpu.NewCPU(nil)
	require.Empty(t, errs)
	t.Cleanup(p.Close)

	for _, seg := range image {
		for i, v := range seg.data {
			p.WriteByte(seg.addr+uint16(i), v)
		}
	}

	var err error
	for n := 0; err == nil; n++ {
		require.Less(t, n, maxSteps, "program did not halt")
		_, _, err = p.Step()
	}
	require.True(t, errors.Is(err, processor.ErrCPUHalt), err.Error())

	return p, snapshot{
		A: p.A, F: byte(p.F) & documentedFlags,
		B: p.B, C: p.C, D: p.D, E: p.E, H: p.H, L: p.L,
		IX: p.IX, IY: p.IY, SP: p.SP,
	}
}

func runReference(t *testing.T, image []segment) (*referenceMemory, snapshot) {
	mem := &referenceMemory{}
	for _, seg := range image {
		copy(mem[seg.addr:], seg.data)
	}

	ref := z80.CPU{Memory: mem}
	require.NoError(t, ref.Run(context.Background()))

	return mem, snapshot{
		A: ref.AF.Hi, F: ref.AF.Lo & documentedFlags,
		B: ref.BC.Hi, C: ref.BC.Lo, D: ref.DE.Hi, E: ref.DE.Lo, H: ref.HL.Hi, L: ref.HL.Lo,
		IX: ref.IX, IY: ref.IY, SP: ref.SP,
	}
}

func compare(t *testing.T, image ...segment) snapshot {
	p, got := runEmulator(t, image)
	mem, want := runReference(t, image)

	assert.Equal(t, want, got)
	for addr := 0; addr < len(mem); addr++ {
		if v := p.ReadByte(uint16(addr)); v != mem[addr] {
			t.Errorf("memory differs at 0x%04X: 0x%02X != 0x%02X", addr, v, mem[addr])
			break
		}
	}
	return got
}

func TestConformance(t *testing.T) {
	t.Run("Arithmetic", func(t *testing.T) {
		s := compare(t, segment{0x0000, []byte{
			0x31, 0x00, 0x80, // LD SP,0x8000
			0x3E, 0x7F,       // LD A,0x7F
			0xC6, 0x01,       // ADD A,0x01
			0x32, 0x00, 0x90, // LD (0x9000),A
			0xCE, 0xFF,       // ADC A,0xFF
			0x47,             // LD B,A
			0xDE, 0x80,       // SBC A,0x80
			0x4F,             // LD C,A
			0x3E, 0x15,       // LD A,0x15
			0xC6, 0x27,       // ADD A,0x27
			0x27,             // DAA
			0x57,             // LD D,A
			0xED, 0x44,       // NEG
			0x5F,             // LD E,A
			0xFE, 0x10,       // CP 0x10
			0x76,             // HALT
		}})
		assert.Equal(t, byte(0x42), s.D)
	})

	t.Run("DecimalAdjust", func(t *testing.T) {
		s := compare(t, segment{0x0000, []byte{
			0x31, 0x00, 0x80, // LD SP,0x8000
			0x3E, 0x0B,       // LD A,0x0B
			0xD6, 0x00,       // SUB 0x00
			0x27,             // DAA
			0x47,             // LD B,A
			0x3E, 0xAC,       // LD A,0xAC
			0xD6, 0x01,       // SUB 0x01
			0x27,             // DAA
			0x4F,             // LD C,A
			0x3E, 0x10,       // LD A,0x10
			0xD6, 0x01,       // SUB 0x01
			0x27,             // DAA
			0x57,             // LD D,A
			0x3E, 0x9F,       // LD A,0x9F
			0xD6, 0x00,       // SUB 0x00
			0x27,             // DAA
			0x5F,             // LD E,A
			0x76,             // HALT
		}})
		assert.Equal(t, byte(0x05), s.B)
		assert.Equal(t, byte(0x45), s.C)
		assert.Equal(t, byte(0x09), s.D)
	})

	t.Run("DecimalAdjustAllValues", func(t *testing.T) {
		for _, f := range []byte{0x00, 0x01, 0x02, 0x03, 0x10, 0x11, 0x12, 0x13} {
			for a := 0; a < 0x100; a++ {
				compare(t, segment{0x0000, []byte{
					0x31, 0x00, 0x80, // LD SP,0x8000
					0x01, f, byte(a), // LD BC,a<<8|f
					0xC5,             // PUSH BC
					0xF1,             // POP AF
					0x27,             // DAA
					0x76,             // HALT
				}})
			}
		}
	})

	t.Run("Wide", func(t *testing.T) {
		s := compare(t, segment{0x0000, []byte{
			0x31, 0x00, 0x80, // LD SP,0x8000
			0x21, 0xFF, 0x7F, // LD HL,0x7FFF
			0x11, 0x01, 0x00, // LD DE,0x0001
			0x19,             // ADD HL,DE
			0x22, 0x00, 0x90, // LD (0x9000),HL
			0x37,             // SCF
			0xED, 0x52,       // SBC HL,DE
			0x01, 0x02, 0x80, // LD BC,0x8002
			0xED, 0x4A,       // ADC HL,BC
			0x23,             // INC HL
			0x1B,             // DEC DE
			0x03,             // INC BC
			0x76,             // HALT
		}})
		assert.Equal(t, byte(0x01), s.L)
	})

	t.Run("Stack", func(t *testing.T) {
		s := compare(t,
			segment{0x0000, []byte{
				0x31, 0x00, 0x80, // LD SP,0x8000
				0x21, 0x34, 0x12, // LD HL,0x1234
				0x01, 0x78, 0x56, // LD BC,0x5678
				0xC5,             // PUSH BC
				0xE3,             // EX (SP),HL
				0xD1,             // POP DE
				0xCD, 0x20, 0x00, // CALL 0x0020
				0xD9,             // EXX
				0x22, 0x00, 0x90, // LD (0x9000),HL
				0xD9,             // EXX
				0x08,             // EX AF,AF'
				0x32, 0x02, 0x90, // LD (0x9002),A
				0x76,             // HALT
			}},
			segment{0x0020, []byte{
				0xD9,             // EXX
				0x21, 0xEF, 0xBE, // LD HL,0xBEEF
				0xD9,             // EXX
				0x08,             // EX AF,AF'
				0x3E, 0x99,       // LD A,0x99
				0x08,             // EX AF,AF'
				0xC9,             // RET
			}},
		)
		assert.Equal(t, uint16(0x8000), s.SP)
		assert.Equal(t, byte(0x99), s.A)
	})

	t.Run("Block", func(t *testing.T) {
		s := compare(t,
			segment{0x0000, []byte{
				0x31, 0x00, 0x80, // LD SP,0x8000
				0x21, 0x40, 0x00, // LD HL,0x0040
				0x11, 0x00, 0x90, // LD DE,0x9000
				0x01, 0x05, 0x00, // LD BC,0x0005
				0xED, 0xB0,       // LDIR
				0x21, 0x00, 0x90, // LD HL,0x9000
				0x01, 0x05, 0x00, // LD BC,0x0005
				0x3E, 0x4C,       // LD A,'L'
				0xED, 0xB1,       // CPIR
				0x76,             // HALT
			}},
			segment{0x0040, []byte("HELLO")},
		)
		assert.Equal(t, byte(0x02), s.C)
		assert.Equal(t, byte(0x03), s.L)
	})

	t.Run("Bits", func(t *testing.T) {
		s := compare(t, segment{0x0000, []byte{
			0x31, 0x00, 0x80,       // LD SP,0x8000
			0x3E, 0x81,             // LD A,0x81
			0x07,                   // RLCA
			0x1F,                   // RRA
			0x47,                   // LD B,A
			0xCB, 0x38,             // SRL B
			0xCB, 0x10,             // RL B
			0xCB, 0xE0,             // SET 4,B
			0xCB, 0x80,             // RES 0,B
			0xCB, 0x78,             // BIT 7,B
			0xDD, 0x21, 0x00, 0x90, // LD IX,0x9000
			0xDD, 0x36, 0x05, 0x3C, // LD (IX+0x05),0x3C
			0xDD, 0xCB, 0x05, 0x26, // SLA (IX+0x05)
			0xDD, 0x34, 0x05,       // INC (IX+0x05)
			0xDD, 0x4E, 0x05,       // LD C,(IX+0x05)
			0x21, 0x05, 0x90,       // LD HL,0x9005
			0xED, 0x67,             // RRD
			0x06, 0x03,             // LD B,0x03
			0xAF,                   // XOR A
			0xC6, 0x05,             // ADD A,0x05
			0x10, 0xFC,             // DJNZ $-2
			0x76,                   // HALT
		}})
		assert.Equal(t, byte(0x79), s.C)
		assert.Equal(t, byte(0x0F), s.A)
	})

	t.Run("Branches", func(t *testing.T) {
		s := compare(t,
			segment{0x0000, []byte{
				0x31, 0x00, 0x80, // LD SP,0x8000
				0x3E, 0x05,       // LD A,0x05
				0xFE, 0x05,       // CP 0x05
				0x28, 0x02,       // JR Z,$+4
				0x3E, 0xFF,       // LD A,0xFF
				0xC2, 0x20, 0x00, // JP NZ,0x0020
				0xCC, 0x30, 0x00, // CALL Z,0x0030
				0xD8,             // RET C
				0x47,             // LD B,A
				0x76,             // HALT
			}},
			segment{0x0020, []byte{0x76}}, // HALT
			segment{0x0030, []byte{
				0x3C, // INC A
				0xC0, // RET NZ
			}},
		)
		assert.Equal(t, byte(0x06), s.B)
	})
}
