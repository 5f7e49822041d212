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

package processor

import (
	"fmt"
	"strings"
)

const (
	Carry          Flags = 0x01
	Subtract       Flags = 0x02
	ParityOverflow Flags = 0x04
	X              Flags = 0x08
	HalfCarry      Flags = 0x10
	Y              Flags = 0x20
	Zero           Flags = 0x40
	Sign           Flags = 0x80
)

const AllFlags = Carry | Subtract | ParityOverflow | X | HalfCarry | Y | Zero | Sign

type Flags byte

func (r *Flags) Get(f Flags) Flags {
	return *r & f
}

func (r *Flags) GetBool(f Flags) bool {
	return r.Get(f) != 0
}

func (r *Flags) Set(f Flags) {
	*r |= f
}

func (r *Flags) SetBool(f Flags, b bool) {
	if b {
		r.Set(f)
		return
	}
	r.Clear(f)
}

func (r *Flags) Clear(f Flags) {
	*r &= ^f
}

func (r Flags) String() string {
	s := []byte("SZYHXPNC")
	for i := range s {
		if r&(0x80>>i) == 0 {
			s[i] = '-'
		}
	}
	return string(s)
}

type Registers struct {
	A, B, C, D, E, H, L byte
	F                   Flags

	// Alternate register set.
	A_, B_, C_, D_, E_, H_, L_ byte
	F_                         Flags

	IX, IY, SP, PC uint16
	I, R           byte

	IFF, IFF2 bool
	IM        byte

	// InhibitInterrupt is set by EI and holds off delivery for one boundary.
	InhibitInterrupt bool
	Halted           bool
	Debug            bool
}

func (r *Registers) Reset() {
	*r = Registers{SP: 0xFFFF}
}

func (r *Registers) AF() uint16 {
	return uint16(r.A)<<8 | uint16(r.F)
}

func (r *Registers) SetAF(v uint16) {
	r.A, r.F = byte(v>>8), Flags(v)
}

func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

func (r *Registers) SetBC(v uint16) {
	r.B, r.C = byte(v>>8), byte(v)
}

func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

func (r *Registers) SetDE(v uint16) {
	r.D, r.E = byte(v>>8), byte(v)
}

func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

func (r *Registers) SetHL(v uint16) {
	r.H, r.L = byte(v>>8), byte(v)
}

func (r *Registers) ExchangeAF() {
	r.A, r.A_ = r.A_, r.A
	r.F, r.F_ = r.F_, r.F
}

func (r *Registers) Exchange() {
	r.B, r.B_ = r.B_, r.B
	r.C, r.C_ = r.C_, r.C
	r.D, r.D_ = r.D_, r.D
	r.E, r.E_ = r.E_, r.E
	r.H, r.H_ = r.H_, r.H
	r.L, r.L_ = r.L_, r.L
}

// IncR advances the memory refresh counter. Bit 7 is preserved.
func (r *Registers) IncR() {
	r.R = (r.R & 0x80) | ((r.R + 1) & 0x7F)
}

func (r *Registers) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "AF 0x%04X\tBC 0x%04X\tDE 0x%04X\tHL 0x%04X\n", r.AF(), r.BC(), r.DE(), r.HL())
	fmt.Fprintf(&sb, "IX 0x%04X\tIY 0x%04X\tSP 0x%04X\tPC 0x%04X\n", r.IX, r.IY, r.SP, r.PC)
	fmt.Fprintf(&sb, "I 0x%02X\tR 0x%02X\tIM %d\tIFF %v\n", r.I, r.R, r.IM, r.IFF)
	sb.WriteString(r.F.String())
	return sb.String()
}
