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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags(t *testing.T) {
	var f Flags
	f.Set(Carry | Zero)
	assert.True(t, f.GetBool(Carry))
	assert.True(t, f.GetBool(Zero))
	assert.False(t, f.GetBool(Sign))

	f.SetBool(Carry, false)
	assert.Equal(t, Zero, f)
	f.SetBool(Sign, true)
	assert.Equal(t, Zero|Sign, f.Get(AllFlags))
	assert.Equal(t, "SZ------", f.String())

	f.Clear(AllFlags)
	assert.Equal(t, Flags(0), f)
}

func TestRegisterPairs(t *testing.T) {
	var r Registers
	r.Reset()
	assert.Equal(t, uint16(0xFFFF), r.SP)
	assert.Equal(t, uint16(0), r.PC)
	assert.False(t, r.IFF)

	r.SetBC(0x1234)
	r.SetDE(0x5678)
	r.SetHL(0x9ABC)
	r.SetAF(0xDEF1)
	assert.Equal(t, byte(0x12), r.B)
	assert.Equal(t, byte(0x34), r.C)
	assert.Equal(t, uint16(0x5678), r.DE())
	assert.Equal(t, uint16(0x9ABC), r.HL())
	assert.Equal(t, Flags(0xF1), r.F)

	r.Exchange()
	assert.Equal(t, uint16(0), r.BC())
	assert.Equal(t, byte(0x12), r.B_)
	r.Exchange()
	assert.Equal(t, uint16(0x1234), r.BC())

	r.ExchangeAF()
	assert.Equal(t, uint16(0), r.AF())
	r.ExchangeAF()
	assert.Equal(t, uint16(0xDEF1), r.AF())
}

func TestRefreshCounter(t *testing.T) {
	r := Registers{R: 0xFF}
	r.IncR()
	assert.Equal(t, byte(0x80), r.R)
	r.R = 0x10
	r.IncR()
	assert.Equal(t, byte(0x11), r.R)
}

func TestArgsWord(t *testing.T) {
	assert.Equal(t, uint16(0x0038), Args{0x38, 0x00}.Word(0))
	assert.Equal(t, uint16(0x1234), Args{0xFF, 0x34, 0x12}.Word(1))
}
