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

package z80

import (
	"fmt"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
)

// bitOp returns the CB group transform for x = 0 (rotate/shift),
// 2 (RES) and 3 (SET). BIT is handled separately since it stores nothing.
func (s *InstructionSet) bitOp(x, y byte) (string, func(byte) byte) {
	r := s.r
	switch x {
	case 0:
		return rotNames[y] + " ", func(v byte) byte { return rotate(r, y, v) }
	case 2:
		return fmt.Sprintf("RES %d,", y), func(v byte) byte { return v &^ (1 << y) }
	}
	return fmt.Sprintf("SET %d,", y), func(v byte) byte { return v | 1<<y }
}

func (s *InstructionSet) cbOp(opcode byte) *op {
	r := s.r
	x, y, z := opcode>>6, (opcode>>3)&7, opcode&7

	if x == 1 {
		name := fmt.Sprintf("BIT %d,%s", y, reg8Names[z])
		if z == 6 {
			return &op{mnemonic: name, reads: s.readMem(indexHL), exec: func(data []byte, _ processor.Args) []memory.Write {
				bit(r, y, data[0])
				return nil
			}}
		}
		return &op{mnemonic: name, exec: func([]byte, processor.Args) []memory.Write {
			bit(r, y, s.get8(z, indexHL))
			return nil
		}}
	}

	prefix, fn := s.bitOp(x, y)
	if z == 6 {
		return &op{mnemonic: prefix + "(HL)", reads: s.readMem(indexHL), exec: func(data []byte, _ processor.Args) []memory.Write {
			return []memory.Write{{Addr: memory.Mem(r.HL()), Data: fn(data[0])}}
		}}
	}
	return &op{mnemonic: prefix + reg8Names[z], exec: func([]byte, processor.Args) []memory.Write {
		s.set8(z, indexHL, fn(s.get8(z, indexHL)))
		return nil
	}}
}

// indexedCBOp builds DD CB d op and FD CB d op. The operand is always
// (IX+d) or (IY+d), undocumented forms also copy the result to a register.
func (s *InstructionSet) indexedCBOp(opcode byte, idx index) *op {
	r := s.r
	x, y, z := opcode>>6, (opcode>>3)&7, opcode&7
	mem := memName(idx)

	if x == 1 {
		return &op{mnemonic: fmt.Sprintf("BIT %d,%s", y, mem), reads: s.readMem(idx), exec: func(data []byte, _ processor.Args) []memory.Write {
			bit(r, y, data[0])
			return nil
		}}
	}

	prefix, fn := s.bitOp(x, y)
	name := prefix + mem
	if z != 6 {
		name += "," + reg8Names[z]
	}
	return &op{mnemonic: name, reads: s.readMem(idx), exec: func(data []byte, args processor.Args) []memory.Write {
		v := fn(data[0])
		if z != 6 {
			s.set8(z, indexHL, v)
		}
		return []memory.Write{{Addr: memory.Mem(s.memAddr(idx, args)), Data: v}}
	}}
}

var interruptModes = [8]byte{0, 0, 1, 2, 0, 0, 1, 2}

func (s *InstructionSet) edOp(opcode byte) *op {
	x, y, z := opcode>>6, (opcode>>3)&7, opcode&7
	switch {
	case x == 1:
		return s.edX1(y, z)
	case x == 2 && z <= 3 && y >= 4:
		return s.blockOp(y-4, z)
	}
	return &op{mnemonic: "NOP"}
}

func (s *InstructionSet) edX1(y, z byte) *op {
	r := s.r
	p, q := y>>1, y&1

	switch z {
	case 0:
		name := "IN " + reg8Names[y] + ",(C)"
		if y == 6 {
			name = "IN (C)"
		}
		return &op{mnemonic: name, reads: s.readPortC, exec: func(data []byte, _ processor.Args) []memory.Write {
			v := data[0]
			r.F = r.F.Get(processor.Carry) | flagsSZP(v)
			if y != 6 {
				s.set8(y, indexHL, v)
			}
			return nil
		}}
	case 1:
		name := "OUT (C)," + reg8Names[y]
		if y == 6 {
			name = "OUT (C),0"
		}
		return &op{mnemonic: name, exec: func([]byte, processor.Args) []memory.Write {
			var v byte
			if y != 6 {
				v = s.get8(y, indexHL)
			}
			return []memory.Write{{Addr: memory.Port(r.C), Data: v}}
		}}
	case 2:
		if q == 0 {
			return &op{mnemonic: "SBC HL," + pairNames[p], exec: func([]byte, processor.Args) []memory.Write {
				r.SetHL(sbc16(r, r.HL(), s.getPair(p, indexHL)))
				return nil
			}}
		}
		return &op{mnemonic: "ADC HL," + pairNames[p], exec: func([]byte, processor.Args) []memory.Write {
			r.SetHL(adc16(r, r.HL(), s.getPair(p, indexHL)))
			return nil
		}}
	case 3:
		if q == 0 {
			return &op{mnemonic: "LD (%w)," + pairNames[p], size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
				return writeWord(args.Word(0), s.getPair(p, indexHL))
			}}
		}
		return &op{
			mnemonic: "LD " + pairNames[p] + ",(%w)",
			size:     2,
			reads: func(args processor.Args) []memory.Address {
				return readWord(args.Word(0))
			},
			exec: func(data []byte, _ processor.Args) []memory.Write {
				s.setPair(p, indexHL, word(data))
				return nil
			},
		}
	case 4:
		return &op{mnemonic: "NEG", exec: func([]byte, processor.Args) []memory.Write {
			neg(r)
			return nil
		}}
	case 5:
		name := "RETN"
		if y == 1 {
			name = "RETI"
		}
		return &op{mnemonic: name, reads: s.readStack, exec: func(data []byte, _ processor.Args) []memory.Write {
			r.PC = s.pop(data)
			r.IFF = r.IFF2
			return nil
		}}
	case 6:
		mode := interruptModes[y]
		return &op{mnemonic: fmt.Sprintf("IM %d", mode), exec: func([]byte, processor.Args) []memory.Write {
			r.IM = mode
			return nil
		}}
	}
	return s.edMisc(y)
}

func (s *InstructionSet) edMisc(y byte) *op {
	r := s.r
	loadA := func(v byte) {
		r.A = v
		f := r.F.Get(processor.Carry) | flagsSZ(v)
		if r.IFF2 {
			f |= processor.ParityOverflow
		}
		r.F = f
	}

	switch y {
	case 0:
		return &op{mnemonic: "LD I,A", exec: func([]byte, processor.Args) []memory.Write {
			r.I = r.A
			return nil
		}}
	case 1:
		return &op{mnemonic: "LD R,A", exec: func([]byte, processor.Args) []memory.Write {
			r.R = r.A
			return nil
		}}
	case 2:
		return &op{mnemonic: "LD A,I", exec: func([]byte, processor.Args) []memory.Write {
			loadA(r.I)
			return nil
		}}
	case 3:
		return &op{mnemonic: "LD A,R", exec: func([]byte, processor.Args) []memory.Write {
			loadA(r.R)
			return nil
		}}
	case 4, 5:
		name := "RRD"
		if y == 5 {
			name = "RLD"
		}
		return &op{mnemonic: name, reads: s.readMem(indexHL), exec: func(data []byte, _ processor.Args) []memory.Write {
			m, a := data[0], r.A
			var res byte
			if y == 4 {
				res = a<<4 | m>>4
				r.A = a&0xF0 | m&0x0F
			} else {
				res = m<<4 | a&0x0F
				r.A = a&0xF0 | m>>4
			}
			r.F = r.F.Get(processor.Carry) | flagsSZP(r.A)
			return []memory.Write{{Addr: memory.Mem(r.HL()), Data: res}}
		}}
	}
	return &op{mnemonic: "NOP"}
}

func (s *InstructionSet) readPortC(processor.Args) []memory.Address {
	return []memory.Address{memory.Port(s.r.C)}
}

var blockNames = [4][4]string{
	{"LDI", "CPI", "INI", "OUTI"},
	{"LDD", "CPD", "IND", "OUTD"},
	{"LDIR", "CPIR", "INIR", "OTIR"},
	{"LDDR", "CPDR", "INDR", "OTDR"},
}

// blockOp builds the block transfer, compare and I/O group. Repeating
// forms run one iteration per step and rewind PC onto themselves while
// work remains.
func (s *InstructionSet) blockOp(a, b byte) *op {
	r := s.r
	delta := uint16(1)
	if a&1 != 0 {
		delta = 0xFFFF
	}
	repeat := a >= 2

	again := func(more bool) {
		if repeat && more {
			r.PC -= 2
		}
	}

	ioFlags := func() {
		f := r.F.Get(processor.Carry) | flagsSZ(r.B) | processor.Subtract
		r.F = f
	}

	o := &op{mnemonic: blockNames[a][b]}
	switch b {
	case 0:
		o.reads = s.readMem(indexHL)
		o.exec = func(data []byte, _ processor.Args) []memory.Write {
			v := data[0]
			dst := r.DE()
			r.SetHL(r.HL() + delta)
			r.SetDE(dst + delta)
			r.SetBC(r.BC() - 1)

			n := r.A + v
			f := r.F.Get(processor.Sign|processor.Zero|processor.Carry) | processor.Flags(n)&processor.X
			if n&0x02 != 0 {
				f |= processor.Y
			}
			if r.BC() != 0 {
				f |= processor.ParityOverflow
			}
			r.F = f

			again(r.BC() != 0)
			return []memory.Write{{Addr: memory.Mem(dst), Data: v}}
		}
	case 1:
		o.reads = s.readMem(indexHL)
		o.exec = func(data []byte, _ processor.Args) []memory.Write {
			carry := r.F.Get(processor.Carry)
			sub8(r, data[0], 0, false)
			r.SetHL(r.HL() + delta)
			r.SetBC(r.BC() - 1)

			f := r.F&^(processor.Carry|processor.ParityOverflow) | carry
			if r.BC() != 0 {
				f |= processor.ParityOverflow
			}
			r.F = f

			again(r.BC() != 0 && !r.F.GetBool(processor.Zero))
			return nil
		}
	case 2:
		o.reads = s.readPortC
		o.exec = func(data []byte, _ processor.Args) []memory.Write {
			dst := r.HL()
			r.B--
			r.SetHL(dst + delta)
			ioFlags()
			again(r.B != 0)
			return []memory.Write{{Addr: memory.Mem(dst), Data: data[0]}}
		}
	default:
		o.reads = s.readMem(indexHL)
		o.exec = func(data []byte, _ processor.Args) []memory.Write {
			port := r.C
			r.B--
			r.SetHL(r.HL() + delta)
			ioFlags()
			again(r.B != 0)
			return []memory.Write{{Addr: memory.Port(port), Data: data[0]}}
		}
	}
	return o
}
