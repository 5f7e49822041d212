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

// baseOp builds the unprefixed (or DD/FD prefixed) entry for opcode.
// Opcodes are split into x = b7-6, y = b5-3 and z = b2-0.
func (s *InstructionSet) baseOp(opcode byte, idx index) *op {
	x, y, z := opcode>>6, (opcode>>3)&7, opcode&7
	switch x {
	case 0:
		return s.baseX0(y, z, idx)
	case 1:
		return s.load8(y, z, idx)
	case 2:
		return s.alu8(y, z, idx)
	}
	return s.baseX3(y, z, idx)
}

func (s *InstructionSet) baseX0(y, z byte, idx index) *op {
	r := s.r
	p, q := y>>1, y&1
	disp := 0
	if idx != indexHL {
		disp = 1
	}

	switch z {
	case 0:
		switch y {
		case 0:
			return &op{mnemonic: "NOP"}
		case 1:
			return &op{mnemonic: "EX AF,AF'", exec: func([]byte, processor.Args) []memory.Write {
				r.ExchangeAF()
				return nil
			}}
		case 2:
			return &op{mnemonic: "DJNZ %r", size: 1, exec: func(_ []byte, args processor.Args) []memory.Write {
				if r.B--; r.B != 0 {
					r.PC += uint16(int8(args[0]))
				}
				return nil
			}}
		case 3:
			return &op{mnemonic: "JR %r", size: 1, exec: func(_ []byte, args processor.Args) []memory.Write {
				r.PC += uint16(int8(args[0]))
				return nil
			}}
		}
		cc := y - 4
		return &op{mnemonic: "JR " + condNames[cc] + ",%r", size: 1, exec: func(_ []byte, args processor.Args) []memory.Write {
			if s.cond(cc) {
				r.PC += uint16(int8(args[0]))
			}
			return nil
		}}
	case 1:
		if q == 0 {
			return &op{mnemonic: "LD " + pairName(p, idx) + ",%w", size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
				s.setPair(p, idx, args.Word(0))
				return nil
			}}
		}
		return &op{mnemonic: "ADD " + indexNames[idx] + "," + pairName(p, idx), exec: func([]byte, processor.Args) []memory.Write {
			s.set16(idx, add16(r, s.get16(idx), s.getPair(p, idx)))
			return nil
		}}
	case 2:
		return s.indirectLoad(y, idx)
	case 3:
		delta := uint16(1)
		name := "INC "
		if q == 1 {
			delta = 0xFFFF
			name = "DEC "
		}
		return &op{mnemonic: name + pairName(p, idx), exec: func([]byte, processor.Args) []memory.Write {
			s.setPair(p, idx, s.getPair(p, idx)+delta)
			return nil
		}}
	case 4, 5:
		fn, name := inc8, "INC "
		if z == 5 {
			fn, name = dec8, "DEC "
		}
		if y == 6 {
			return &op{mnemonic: name + memName(idx), size: disp, reads: s.readMem(idx), exec: func(data []byte, args processor.Args) []memory.Write {
				return []memory.Write{{Addr: memory.Mem(s.memAddr(idx, args)), Data: fn(r, data[0])}}
			}}
		}
		return &op{mnemonic: name + reg8Name(y, idx), exec: func([]byte, processor.Args) []memory.Write {
			s.set8(y, idx, fn(r, s.get8(y, idx)))
			return nil
		}}
	case 6:
		if y == 6 {
			return &op{mnemonic: "LD " + memName(idx) + ",%n", size: disp + 1, exec: func(_ []byte, args processor.Args) []memory.Write {
				return []memory.Write{{Addr: memory.Mem(s.memAddr(idx, args)), Data: args[disp]}}
			}}
		}
		return &op{mnemonic: "LD " + reg8Name(y, idx) + ",%n", size: 1, exec: func(_ []byte, args processor.Args) []memory.Write {
			s.set8(y, idx, args[0])
			return nil
		}}
	}

	names := [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
	return &op{mnemonic: names[y], exec: func([]byte, processor.Args) []memory.Write {
		switch y {
		case 4:
			daa(r)
		case 5:
			r.A = ^r.A
			r.F = r.F.Get(processor.Sign|processor.Zero|processor.ParityOverflow|processor.Carry) |
				processor.HalfCarry | processor.Subtract | processor.Flags(r.A)&undocumented
		case 6:
			r.F = r.F.Get(processor.Sign|processor.Zero|processor.ParityOverflow) |
				processor.Carry | processor.Flags(r.A)&undocumented
		case 7:
			f := r.F.Get(processor.Sign | processor.Zero | processor.ParityOverflow)
			if r.F.GetBool(processor.Carry) {
				f |= processor.HalfCarry
			} else {
				f |= processor.Carry
			}
			r.F = f | processor.Flags(r.A)&undocumented
		default:
			rotateA(r, y)
		}
		return nil
	}}
}

// indirectLoad covers LD (BC),A through LD A,(nn) and the 16-bit
// HL, IX and IY direct loads.
func (s *InstructionSet) indirectLoad(y byte, idx index) *op {
	r := s.r
	hl := indexNames[idx]

	switch y {
	case 0, 2:
		pair, name := r.BC, "LD (BC),A"
		if y == 2 {
			pair, name = r.DE, "LD (DE),A"
		}
		return &op{mnemonic: name, exec: func([]byte, processor.Args) []memory.Write {
			return []memory.Write{{Addr: memory.Mem(pair()), Data: r.A}}
		}}
	case 1, 3:
		pair, name := r.BC, "LD A,(BC)"
		if y == 3 {
			pair, name = r.DE, "LD A,(DE)"
		}
		return &op{
			mnemonic: name,
			reads: func(processor.Args) []memory.Address {
				return []memory.Address{memory.Mem(pair())}
			},
			exec: func(data []byte, _ processor.Args) []memory.Write {
				r.A = data[0]
				return nil
			},
		}
	case 4:
		return &op{mnemonic: "LD (%w)," + hl, size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
			return writeWord(args.Word(0), s.get16(idx))
		}}
	case 5:
		return &op{
			mnemonic: "LD " + hl + ",(%w)",
			size:     2,
			reads: func(args processor.Args) []memory.Address {
				return readWord(args.Word(0))
			},
			exec: func(data []byte, _ processor.Args) []memory.Write {
				s.set16(idx, word(data))
				return nil
			},
		}
	case 6:
		return &op{mnemonic: "LD (%w),A", size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
			return []memory.Write{{Addr: memory.Mem(args.Word(0)), Data: r.A}}
		}}
	}
	return &op{
		mnemonic: "LD A,(%w)",
		size:     2,
		reads: func(args processor.Args) []memory.Address {
			return []memory.Address{memory.Mem(args.Word(0))}
		},
		exec: func(data []byte, _ processor.Args) []memory.Write {
			r.A = data[0]
			return nil
		},
	}
}

func (s *InstructionSet) load8(y, z byte, idx index) *op {
	r := s.r
	disp := 0
	if idx != indexHL {
		disp = 1
	}

	switch {
	case y == 6 && z == 6:
		return &op{mnemonic: "HALT", exec: func([]byte, processor.Args) []memory.Write {
			// Spin on the HALT opcode until an interrupt moves PC past it.
			r.Halted = true
			r.PC--
			return nil
		}}
	case z == 6:
		// With a memory operand the other register is never an index half.
		return &op{mnemonic: "LD " + reg8Names[y] + "," + memName(idx), size: disp, reads: s.readMem(idx), exec: func(data []byte, _ processor.Args) []memory.Write {
			s.set8(y, indexHL, data[0])
			return nil
		}}
	case y == 6:
		return &op{mnemonic: "LD " + memName(idx) + "," + reg8Names[z], size: disp, exec: func(_ []byte, args processor.Args) []memory.Write {
			return []memory.Write{{Addr: memory.Mem(s.memAddr(idx, args)), Data: s.get8(z, indexHL)}}
		}}
	}
	return &op{mnemonic: "LD " + reg8Name(y, idx) + "," + reg8Name(z, idx), exec: func([]byte, processor.Args) []memory.Write {
		s.set8(y, idx, s.get8(z, idx))
		return nil
	}}
}

func (s *InstructionSet) alu8(y, z byte, idx index) *op {
	r := s.r
	if z == 6 {
		size := 0
		if idx != indexHL {
			size = 1
		}
		return &op{mnemonic: aluNames[y] + memName(idx), size: size, reads: s.readMem(idx), exec: func(data []byte, _ processor.Args) []memory.Write {
			alu(r, y, data[0])
			return nil
		}}
	}
	return &op{mnemonic: aluNames[y] + reg8Name(z, idx), exec: func([]byte, processor.Args) []memory.Write {
		alu(r, y, s.get8(z, idx))
		return nil
	}}
}

func (s *InstructionSet) baseX3(y, z byte, idx index) *op {
	r := s.r
	p, q := y>>1, y&1
	hl := indexNames[idx]

	switch z {
	case 0:
		return &op{mnemonic: "RET " + condNames[y], reads: s.readStack, exec: func(data []byte, _ processor.Args) []memory.Write {
			if s.cond(y) {
				r.PC = s.pop(data)
			}
			return nil
		}}
	case 1:
		if q == 0 {
			return &op{mnemonic: "POP " + pair2Name(p, idx), reads: s.readStack, exec: func(data []byte, _ processor.Args) []memory.Write {
				s.setPair2(p, idx, s.pop(data))
				return nil
			}}
		}
		switch p {
		case 0:
			return &op{mnemonic: "RET", reads: s.readStack, exec: func(data []byte, _ processor.Args) []memory.Write {
				r.PC = s.pop(data)
				return nil
			}}
		case 1:
			return &op{mnemonic: "EXX", exec: func([]byte, processor.Args) []memory.Write {
				r.Exchange()
				return nil
			}}
		case 2:
			return &op{mnemonic: "JP (" + hl + ")", exec: func([]byte, processor.Args) []memory.Write {
				r.PC = s.get16(idx)
				return nil
			}}
		}
		return &op{mnemonic: "LD SP," + hl, exec: func([]byte, processor.Args) []memory.Write {
			r.SP = s.get16(idx)
			return nil
		}}
	case 2:
		return &op{mnemonic: "JP " + condNames[y] + ",%w", size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
			if s.cond(y) {
				r.PC = args.Word(0)
			}
			return nil
		}}
	case 3:
		return s.baseMisc(y, idx)
	case 4:
		return &op{mnemonic: "CALL " + condNames[y] + ",%w", size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
			if !s.cond(y) {
				return nil
			}
			w := s.push(r.PC)
			r.PC = args.Word(0)
			return w
		}}
	case 5:
		if q == 0 {
			return &op{mnemonic: "PUSH " + pair2Name(p, idx), exec: func([]byte, processor.Args) []memory.Write {
				return s.push(s.getPair2(p, idx))
			}}
		}
		// DD, ED and FD never reach the table.
		return &op{mnemonic: "CALL %w", size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
			w := s.push(r.PC)
			r.PC = args.Word(0)
			return w
		}}
	case 6:
		return &op{mnemonic: aluNames[y] + "%n", size: 1, exec: func(_ []byte, args processor.Args) []memory.Write {
			alu(r, y, args[0])
			return nil
		}}
	}

	vector := uint16(y) * 8
	return &op{mnemonic: fmt.Sprintf("RST 0x%02X", vector), exec: func([]byte, processor.Args) []memory.Write {
		w := s.push(r.PC)
		r.PC = vector
		return w
	}}
}

func (s *InstructionSet) baseMisc(y byte, idx index) *op {
	r := s.r
	hl := indexNames[idx]

	switch y {
	case 0:
		return &op{mnemonic: "JP %w", size: 2, exec: func(_ []byte, args processor.Args) []memory.Write {
			r.PC = args.Word(0)
			return nil
		}}
	case 1:
		// CB is consumed by the decoder before the table lookup.
		return &op{mnemonic: "NOP"}
	case 2:
		return &op{mnemonic: "OUT (%n),A", size: 1, exec: func(_ []byte, args processor.Args) []memory.Write {
			return []memory.Write{{Addr: memory.Port(args[0]), Data: r.A}}
		}}
	case 3:
		return &op{
			mnemonic: "IN A,(%n)",
			size:     1,
			reads: func(args processor.Args) []memory.Address {
				return []memory.Address{memory.Port(args[0])}
			},
			exec: func(data []byte, _ processor.Args) []memory.Write {
				r.A = data[0]
				return nil
			},
		}
	case 4:
		return &op{mnemonic: "EX (SP)," + hl, reads: s.readStack, exec: func(data []byte, _ processor.Args) []memory.Write {
			old := s.get16(idx)
			s.set16(idx, word(data))
			return writeWord(r.SP, old)
		}}
	case 5:
		return &op{mnemonic: "EX DE,HL", exec: func([]byte, processor.Args) []memory.Write {
			de := r.DE()
			r.SetDE(r.HL())
			r.SetHL(de)
			return nil
		}}
	case 6:
		return &op{mnemonic: "DI", exec: func([]byte, processor.Args) []memory.Write {
			r.IFF, r.IFF2 = false, false
			return nil
		}}
	}
	return &op{mnemonic: "EI", exec: func([]byte, processor.Args) []memory.Write {
		r.IFF, r.IFF2 = true, true
		r.InhibitInterrupt = true
		return nil
	}}
}
