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

package cpu

import (
	"fmt"

	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/validator"
	"github.com/sirupsen/logrus"
)

// Mode 1 delivery is the encoding of CALL 0x0038.
var interruptSequence = [...]byte{0xCD, 0x38, 0x00}

func (p *CPU) doInterrupt() (processor.Instruction, processor.Args, error) {
	p.IFF, p.IFF2 = false, false
	p.pending.Store(false)
	p.stats.NumInterrupts++

	if p.IM != 1 {
		return nil, nil, fmt.Errorf("%w: IM %d", processor.ErrInterruptMode, p.IM)
	}

	if p.Halted {
		p.PC++
		p.Halted = false
	}

	logrus.WithField("pc", fmt.Sprintf("0x%04X", p.PC)).Debug("Interrupt")

	var (
		ins  processor.Instruction
		args processor.Args
		ok   bool
	)
	for _, b := range interruptSequence {
		ins, args, ok = p.decoder.Feed(b)
	}
	if !ok {
		p.decoder.Reset()
		return nil, nil, fmt.Errorf("%w: interrupt sequence", processor.ErrDecodeOverrun)
	}
	return ins, args, nil
}

func (p *CPU) fetch() (processor.Instruction, processor.Args, error) {
	inhibit := p.InhibitInterrupt
	p.InhibitInterrupt = false

	if !inhibit && p.IFF && p.pending.Load() {
		return p.doInterrupt()
	}

	pc := p.PC
	for n := 0; n < processor.MaxInstructionLength; n++ {
		b := p.ReadByte(p.PC)
		p.PC++
		if ins, args, ok := p.decoder.Feed(b); ok {
			return ins, args, nil
		}
	}

	p.decoder.Reset()
	return nil, nil, fmt.Errorf("%w: at 0x%04X", processor.ErrDecodeOverrun, pc)
}

// Step executes one instruction, or delivers a pending interrupt, and
// then steps every peripheral once. The executed instruction is returned
// for tracing.
func (p *CPU) Step() (processor.Instruction, processor.Args, error) {
	validator.Begin(p.PC, &p.Registers)

	ins, args, err := p.fetch()
	if err != nil {
		validator.Discard()
		return nil, nil, err
	}

	reads := ins.ReadList(args)
	data := make([]byte, len(reads))
	for i, addr := range reads {
		if data[i], err = p.Read(addr); err != nil {
			validator.Discard()
			return ins, args, err
		}
	}

	for _, w := range ins.Execute(data, args) {
		p.Write(w.Addr, w.Data)
	}
	p.stats.NumInstructions++

	if validator.Enabled() {
		validator.End(ins.Disassemble(args), &p.Registers)
	}

	if p.Halted && !p.IFF {
		return ins, args, processor.ErrCPUHalt
	}

	for _, d := range p.peripherals {
		if err := d.Step(1); err != nil {
			return ins, args, err
		}
	}
	return ins, args, nil
}
