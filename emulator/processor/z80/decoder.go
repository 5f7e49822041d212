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

// Package z80 implements the Zilog Z80 instruction set as an incremental
// byte decoder. Decoded instructions describe the locations they read and
// return the stores they want performed, the engine owns all bus traffic.
package z80

import (
	"sync"

	"github.com/andreas-jonsson/virtualz80/emulator/processor"
)

type stage byte

const (
	stageOpcode stage = iota
	stageCB
	stageED
	stageDisplacement
	stageIndexedCB
	stageOperands
)

type decodeState struct {
	stage stage
	index index
	op    *op
	args  processor.Args
}

type InstructionSet struct {
	r     *processor.Registers
	state decodeState

	base      [3][0x100]*op
	cb        [0x100]*op
	indexedCB [3][0x100]*op
	ed        [0x100]*op
}

var _ processor.Decoder = (*InstructionSet)(nil)

// NewInstructionSet creates a decoder whose instructions operate on r.
func NewInstructionSet(r *processor.Registers) *InstructionSet {
	s := &InstructionSet{r: r}
	for i := 0; i < 0x100; i++ {
		opcode := byte(i)
		for idx := indexHL; idx <= indexIY; idx++ {
			s.base[idx][opcode] = s.baseOp(opcode, idx)
		}
		s.indexedCB[indexIX][opcode] = s.indexedCBOp(opcode, indexIX)
		s.indexedCB[indexIY][opcode] = s.indexedCBOp(opcode, indexIY)
		s.cb[opcode] = s.cbOp(opcode)
		s.ed[opcode] = s.edOp(opcode)
	}
	return s
}

func (s *InstructionSet) Reset() {
	s.state = decodeState{}
}

// Pending reports whether the decoder holds a partial instruction.
func (s *InstructionSet) Pending() bool {
	return s.state.stage != stageOpcode || s.state.index != indexHL
}

func (s *InstructionSet) Feed(b byte) (processor.Instruction, processor.Args, bool) {
	st := &s.state
	switch st.stage {
	case stageOpcode:
		s.r.IncR()
		switch b {
		case 0xDD:
			st.index = indexIX
			return nil, nil, false
		case 0xFD:
			st.index = indexIY
			return nil, nil, false
		case 0xCB:
			if st.index == indexHL {
				st.stage = stageCB
			} else {
				st.stage = stageDisplacement
			}
			return nil, nil, false
		case 0xED:
			st.index = indexHL
			st.stage = stageED
			return nil, nil, false
		}
		return s.begin(s.base[st.index][b])
	case stageCB:
		s.r.IncR()
		return s.begin(s.cb[b])
	case stageED:
		s.r.IncR()
		return s.begin(s.ed[b])
	case stageDisplacement:
		st.args = append(st.args, b)
		st.stage = stageIndexedCB
		return nil, nil, false
	case stageIndexedCB:
		st.op = s.indexedCB[st.index][b]
		return s.complete()
	default:
		st.args = append(st.args, b)
		if len(st.args) < st.op.size {
			return nil, nil, false
		}
		return s.complete()
	}
}

func (s *InstructionSet) begin(o *op) (processor.Instruction, processor.Args, bool) {
	s.state.op = o
	if o.size == 0 {
		return s.complete()
	}
	s.state.stage = stageOperands
	return nil, nil, false
}

func (s *InstructionSet) complete() (processor.Instruction, processor.Args, bool) {
	o, args := s.state.op, s.state.args
	s.state = decodeState{}
	return o, args, true
}

var disassembler struct {
	sync.Mutex
	regs processor.Registers
	set  *InstructionSet
}

// Disassemble decodes the instruction at pc without side effects and
// returns its text and length in bytes.
func Disassemble(read func(addr uint16) byte, pc uint16) (string, int) {
	disassembler.Lock()
	defer disassembler.Unlock()

	s := disassembler.set
	if s == nil {
		s = NewInstructionSet(&disassembler.regs)
		disassembler.set = s
	}

	for n := 1; n <= processor.MaxInstructionLength; n++ {
		if ins, args, ok := s.Feed(read(pc)); ok {
			return ins.Disassemble(args), n
		}
		pc++
	}
	s.Reset()
	return "???", processor.MaxInstructionLength
}
