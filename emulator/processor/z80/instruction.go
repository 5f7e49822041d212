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

package z80

import (
	"fmt"
	"strings"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
)

type index byte

const (
	indexHL index = iota
	indexIX
	indexIY
)

var indexNames = [3]string{"HL", "IX", "IY"}

type (
	readFunc func(args processor.Args) []memory.Address
	execFunc func(data []byte, args processor.Args) []memory.Write
)

// op is a table entry. The mnemonic is a template where %n is an
// immediate byte, %w an immediate word, %d an index displacement and
// %r a relative jump offset. Tokens consume args left to right.
type op struct {
	mnemonic string
	size     int
	reads    readFunc
	exec     execFunc
}

func (o *op) ReadList(args processor.Args) []memory.Address {
	if o.reads == nil {
		return nil
	}
	return o.reads(args)
}

func (o *op) Execute(data []byte, args processor.Args) []memory.Write {
	if o.exec == nil {
		return nil
	}
	return o.exec(data, args)
}

func (o *op) Disassemble(args processor.Args) string {
	return render(o.mnemonic, args)
}

func (o *op) String() string {
	return o.mnemonic
}

func render(tmpl string, args processor.Args) string {
	var (
		sb strings.Builder
		i  int
	)
	for n := 0; n < len(tmpl); n++ {
		c := tmpl[n]
		if c != '%' || n+1 == len(tmpl) {
			sb.WriteByte(c)
			continue
		}

		n++
		need := 1
		if tmpl[n] == 'w' {
			need = 2
		}
		if i+need > len(args) {
			sb.WriteString("??")
			continue
		}

		switch tmpl[n] {
		case 'n':
			fmt.Fprintf(&sb, "0x%02X", args[i])
		case 'w':
			fmt.Fprintf(&sb, "0x%04X", args.Word(i))
		case 'd':
			if d := int8(args[i]); d < 0 {
				fmt.Fprintf(&sb, "-0x%02X", -int(d))
			} else {
				fmt.Fprintf(&sb, "+0x%02X", d)
			}
		case 'r':
			fmt.Fprintf(&sb, "$%+d", int(int8(args[i]))+2)
		default:
			sb.WriteByte('%')
			sb.WriteByte(tmpl[n])
			continue
		}
		i += need
	}
	return sb.String()
}

func word(data []byte) uint16 {
	return uint16(data[0]) | uint16(data[1])<<8
}

func writeWord(addr, v uint16) []memory.Write {
	return []memory.Write{
		{Addr: memory.Mem(addr), Data: byte(v)},
		{Addr: memory.Mem(addr + 1), Data: byte(v >> 8)},
	}
}

func readWord(addr uint16) []memory.Address {
	return []memory.Address{memory.Mem(addr), memory.Mem(addr + 1)}
}

var (
	reg8Names  = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	pairNames  = [4]string{"BC", "DE", "HL", "SP"}
	pair2Names = [4]string{"BC", "DE", "HL", "AF"}
	condNames  = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
)

func reg8Name(code byte, idx index) string {
	switch {
	case code == 6:
		return memName(idx)
	case idx != indexHL && code == 4:
		return indexNames[idx] + "H"
	case idx != indexHL && code == 5:
		return indexNames[idx] + "L"
	}
	return reg8Names[code]
}

func memName(idx index) string {
	if idx == indexHL {
		return "(HL)"
	}
	return "(" + indexNames[idx] + "%d)"
}

func pairName(p byte, idx index) string {
	if p == 2 {
		return indexNames[idx]
	}
	return pairNames[p]
}

func pair2Name(p byte, idx index) string {
	if p == 2 {
		return indexNames[idx]
	}
	return pair2Names[p]
}

func (s *InstructionSet) get16(idx index) uint16 {
	switch idx {
	case indexIX:
		return s.r.IX
	case indexIY:
		return s.r.IY
	}
	return s.r.HL()
}

func (s *InstructionSet) set16(idx index, v uint16) {
	switch idx {
	case indexIX:
		s.r.IX = v
	case indexIY:
		s.r.IY = v
	default:
		s.r.SetHL(v)
	}
}

// get8 reads register code (never 6). H and L map to the index halves
// when an index prefix is active.
func (s *InstructionSet) get8(code byte, idx index) byte {
	r := s.r
	switch code {
	case 0:
		return r.B
	case 1:
		return r.C
	case 2:
		return r.D
	case 3:
		return r.E
	case 4:
		if idx == indexHL {
			return r.H
		}
		return byte(s.get16(idx) >> 8)
	case 5:
		if idx == indexHL {
			return r.L
		}
		return byte(s.get16(idx))
	}
	return r.A
}

func (s *InstructionSet) set8(code byte, idx index, v byte) {
	r := s.r
	switch code {
	case 0:
		r.B = v
	case 1:
		r.C = v
	case 2:
		r.D = v
	case 3:
		r.E = v
	case 4:
		if idx == indexHL {
			r.H = v
		} else {
			s.set16(idx, s.get16(idx)&0x00FF|uint16(v)<<8)
		}
	case 5:
		if idx == indexHL {
			r.L = v
		} else {
			s.set16(idx, s.get16(idx)&0xFF00|uint16(v))
		}
	case 7:
		r.A = v
	}
}

func (s *InstructionSet) getPair(p byte, idx index) uint16 {
	switch p {
	case 0:
		return s.r.BC()
	case 1:
		return s.r.DE()
	case 2:
		return s.get16(idx)
	}
	return s.r.SP
}

func (s *InstructionSet) setPair(p byte, idx index, v uint16) {
	switch p {
	case 0:
		s.r.SetBC(v)
	case 1:
		s.r.SetDE(v)
	case 2:
		s.set16(idx, v)
	default:
		s.r.SP = v
	}
}

func (s *InstructionSet) getPair2(p byte, idx index) uint16 {
	if p == 3 {
		return s.r.AF()
	}
	return s.getPair(p, idx)
}

func (s *InstructionSet) setPair2(p byte, idx index, v uint16) {
	if p == 3 {
		s.r.SetAF(v)
		return
	}
	s.setPair(p, idx, v)
}

// memAddr resolves (HL) or (IX+d)/(IY+d). The displacement is always
// the first argument of an indexed instruction.
func (s *InstructionSet) memAddr(idx index, args processor.Args) uint16 {
	if idx == indexHL {
		return s.r.HL()
	}
	return s.get16(idx) + uint16(int8(args[0]))
}

func (s *InstructionSet) readMem(idx index) readFunc {
	return func(args processor.Args) []memory.Address {
		return []memory.Address{memory.Mem(s.memAddr(idx, args))}
	}
}

func (s *InstructionSet) readStack(processor.Args) []memory.Address {
	return readWord(s.r.SP)
}

// push decrements SP and returns the stores for v, high byte first.
func (s *InstructionSet) push(v uint16) []memory.Write {
	s.r.SP -= 2
	return []memory.Write{
		{Addr: memory.Mem(s.r.SP + 1), Data: byte(v >> 8)},
		{Addr: memory.Mem(s.r.SP), Data: byte(v)},
	}
}

func (s *InstructionSet) pop(data []byte) uint16 {
	s.r.SP += 2
	return word(data)
}

func (s *InstructionSet) cond(cc byte) bool {
	f := &s.r.F
	switch cc {
	case 0:
		return !f.GetBool(processor.Zero)
	case 1:
		return f.GetBool(processor.Zero)
	case 2:
		return !f.GetBool(processor.Carry)
	case 3:
		return f.GetBool(processor.Carry)
	case 4:
		return !f.GetBool(processor.ParityOverflow)
	case 5:
		return f.GetBool(processor.ParityOverflow)
	case 6:
		return !f.GetBool(processor.Sign)
	}
	return f.GetBool(processor.Sign)
}
