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
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
)

const undocumented = processor.X | processor.Y

func parity(v byte) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

func b2ui8(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// flagsSZP returns sign, zero, parity and the undocumented bits of v.
func flagsSZP(v byte) processor.Flags {
	f := processor.Flags(v) & (processor.Sign | undocumented)
	if v == 0 {
		f |= processor.Zero
	}
	if parity(v) {
		f |= processor.ParityOverflow
	}
	return f
}

func flagsSZ(v byte) processor.Flags {
	f := processor.Flags(v) & (processor.Sign | undocumented)
	if v == 0 {
		f |= processor.Zero
	}
	return f
}

func add8(r *processor.Registers, v, carry byte) {
	a := r.A
	sum := uint16(a) + uint16(v) + uint16(carry)
	res := byte(sum)

	f := flagsSZ(res)
	if ((a&0xF)+(v&0xF)+carry)&0x10 != 0 {
		f |= processor.HalfCarry
	}
	if (^(a^v))&(a^res)&0x80 != 0 {
		f |= processor.ParityOverflow
	}
	if sum > 0xFF {
		f |= processor.Carry
	}
	r.A, r.F = res, f
}

func sub8(r *processor.Registers, v, carry byte, store bool) {
	a := r.A
	diff := int(a) - int(v) - int(carry)
	res := byte(diff)

	f := flagsSZ(res) | processor.Subtract
	if int(a&0xF)-int(v&0xF)-int(carry) < 0 {
		f |= processor.HalfCarry
	}
	if (a^v)&(a^res)&0x80 != 0 {
		f |= processor.ParityOverflow
	}
	if diff < 0 {
		f |= processor.Carry
	}
	if store {
		r.A = res
	} else {
		// CP takes the undocumented bits from the operand.
		f = f&^undocumented | processor.Flags(v)&undocumented
	}
	r.F = f
}

func and8(r *processor.Registers, v byte) {
	r.A &= v
	r.F = flagsSZP(r.A) | processor.HalfCarry
}

func xor8(r *processor.Registers, v byte) {
	r.A ^= v
	r.F = flagsSZP(r.A)
}

func or8(r *processor.Registers, v byte) {
	r.A |= v
	r.F = flagsSZP(r.A)
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func alu(r *processor.Registers, op, v byte) {
	switch op {
	case 0:
		add8(r, v, 0)
	case 1:
		add8(r, v, b2ui8(r.F.GetBool(processor.Carry)))
	case 2:
		sub8(r, v, 0, true)
	case 3:
		sub8(r, v, b2ui8(r.F.GetBool(processor.Carry)), true)
	case 4:
		and8(r, v)
	case 5:
		xor8(r, v)
	case 6:
		or8(r, v)
	case 7:
		sub8(r, v, 0, false)
	}
}

func inc8(r *processor.Registers, v byte) byte {
	res := v + 1
	f := r.F.Get(processor.Carry) | flagsSZ(res)
	if v&0xF == 0xF {
		f |= processor.HalfCarry
	}
	if v == 0x7F {
		f |= processor.ParityOverflow
	}
	r.F = f
	return res
}

func dec8(r *processor.Registers, v byte) byte {
	res := v - 1
	f := r.F.Get(processor.Carry) | flagsSZ(res) | processor.Subtract
	if v&0xF == 0 {
		f |= processor.HalfCarry
	}
	if v == 0x80 {
		f |= processor.ParityOverflow
	}
	r.F = f
	return res
}

func add16(r *processor.Registers, a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	res := uint16(sum)

	f := r.F.Get(processor.Sign | processor.Zero | processor.ParityOverflow)
	if ((a&0xFFF)+(b&0xFFF))&0x1000 != 0 {
		f |= processor.HalfCarry
	}
	if sum > 0xFFFF {
		f |= processor.Carry
	}
	r.F = f | processor.Flags(res>>8)&undocumented
	return res
}

func adc16(r *processor.Registers, a, b uint16) uint16 {
	carry := uint16(b2ui8(r.F.GetBool(processor.Carry)))
	sum := uint32(a) + uint32(b) + uint32(carry)
	res := uint16(sum)

	f := processor.Flags(res>>8) & (processor.Sign | undocumented)
	if res == 0 {
		f |= processor.Zero
	}
	if ((a&0xFFF)+(b&0xFFF)+carry)&0x1000 != 0 {
		f |= processor.HalfCarry
	}
	if (^(a^b))&(a^res)&0x8000 != 0 {
		f |= processor.ParityOverflow
	}
	if sum > 0xFFFF {
		f |= processor.Carry
	}
	r.F = f
	return res
}

func sbc16(r *processor.Registers, a, b uint16) uint16 {
	carry := uint16(b2ui8(r.F.GetBool(processor.Carry)))
	diff := int32(a) - int32(b) - int32(carry)
	res := uint16(diff)

	f := processor.Flags(res>>8)&(processor.Sign|undocumented) | processor.Subtract
	if res == 0 {
		f |= processor.Zero
	}
	if int32(a&0xFFF)-int32(b&0xFFF)-int32(carry) < 0 {
		f |= processor.HalfCarry
	}
	if (a^b)&(a^res)&0x8000 != 0 {
		f |= processor.ParityOverflow
	}
	if diff < 0 {
		f |= processor.Carry
	}
	r.F = f
	return res
}

// daa picks the correction from H, C and both nibbles. N only selects
// whether it is added or subtracted.
func daa(r *processor.Registers) {
	a := r.A
	sub := r.F.GetBool(processor.Subtract)

	var adj byte
	if r.F.GetBool(processor.HalfCarry) || a&0xF > 9 {
		adj |= 0x06
	}
	if r.F.GetBool(processor.Carry) || a > 0x99 {
		adj |= 0x60
	}

	res := a + adj
	if sub {
		res = a - adj
	}

	f := flagsSZP(res) | r.F.Get(processor.Subtract)
	if sub {
		if (a^res)&0x10 != 0 {
			f |= processor.HalfCarry
		}
	} else if (a&0xF)+(adj&0xF) > 0xF {
		f |= processor.HalfCarry
	}
	if adj >= 0x60 {
		f |= processor.Carry
	}
	r.A, r.F = res, f
}

func neg(r *processor.Registers) {
	a := r.A
	r.A = 0
	sub8(r, a, 0, true)
}

var rotNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

// rotate implements the CB prefixed shift group and returns the result
// together with the new flags.
func rotate(r *processor.Registers, op, v byte) byte {
	var (
		res   byte
		carry bool
	)

	switch op {
	case 0:
		res, carry = v<<1|v>>7, v&0x80 != 0
	case 1:
		res, carry = v>>1|v<<7, v&1 != 0
	case 2:
		res, carry = v<<1|b2ui8(r.F.GetBool(processor.Carry)), v&0x80 != 0
	case 3:
		res, carry = v>>1|b2ui8(r.F.GetBool(processor.Carry))<<7, v&1 != 0
	case 4:
		res, carry = v<<1, v&0x80 != 0
	case 5:
		res, carry = v>>1|v&0x80, v&1 != 0
	case 6:
		res, carry = v<<1|1, v&0x80 != 0
	case 7:
		res, carry = v>>1, v&1 != 0
	}

	r.F = flagsSZP(res)
	r.F.SetBool(processor.Carry, carry)
	return res
}

// rotateA implements RLCA, RRCA, RLA and RRA which leave S, Z and P/V alone.
func rotateA(r *processor.Registers, op byte) {
	keep := r.F.Get(processor.Sign | processor.Zero | processor.ParityOverflow)
	r.A = rotate(r, op, r.A)
	r.F = keep | r.F.Get(processor.Carry) | processor.Flags(r.A)&undocumented
}

func bit(r *processor.Registers, n, v byte) {
	f := r.F.Get(processor.Carry) | processor.HalfCarry | processor.Flags(v)&undocumented
	if v&(1<<n) == 0 {
		f |= processor.Zero | processor.ParityOverflow
	} else if n == 7 {
		f |= processor.Sign
	}
	r.F = f
}
