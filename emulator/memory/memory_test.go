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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIO struct {
	reads  []byte
	writes []Write
	value  byte
}

func (r *recordingIO) In(port byte) byte {
	r.reads = append(r.reads, port)
	return r.value
}

func (r *recordingIO) Out(port, data byte) {
	r.writes = append(r.writes, Write{Port(port), data})
}

func TestLinearOverlay(t *testing.T) {
	assert.Equal(t, Mem(0), FromLinear(0))
	assert.Equal(t, Mem(0xFFFF), FromLinear(0xFFFF))
	assert.Equal(t, Port(0), FromLinear(0x10000))
	assert.Equal(t, Port(0x42), FromLinear(0x10042))
	assert.Equal(t, Port(0x34), FromLinear(0x11234))

	assert.Equal(t, uint32(0x10042), Port(0x42).Linear())
	assert.Equal(t, uint32(0x1234), Mem(0x1234).Linear())

	for _, a := range []uint32{0, 1, 0x8000, 0xFFFF, 0x10000, 0x100FF} {
		assert.Equal(t, a, FromLinear(a).Linear())
	}
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "0x0038", Mem(0x38).String())
	assert.Equal(t, "port 0x01", Port(1).String())
}

func TestRAMRoundTrip(t *testing.T) {
	var m RAM
	for _, a := range []uint16{0, 1, 0x7FFF, 0xFFFF} {
		m.WriteByte(a, byte(a)^0x5A)
		assert.Equal(t, byte(a)^0x5A, m.ReadByte(a))
	}

	m.Load(0xFFFE, []byte{1, 2, 3})
	assert.Equal(t, byte(1), m[0xFFFE])
	assert.Equal(t, byte(2), m[0xFFFF])
	assert.Equal(t, byte(3), m[0])
}

func TestIOMapBind(t *testing.T) {
	var (
		m     IOMap
		first = &recordingIO{value: 1}
		last  = &recordingIO{value: 2}
	)

	m.Bind(first, 0x00, 0x01)
	m.Bind(last, 0x01)

	v, err := m.In(0x00)
	require.NoError(t, err)
	assert.Equal(t, byte(1), v)

	v, err = m.In(0x01)
	require.NoError(t, err)
	assert.Equal(t, byte(2), v)

	require.NoError(t, m.Out(0x01, 0x41))
	assert.Equal(t, []Write{{Port(1), 0x41}}, last.writes)
	assert.Empty(t, first.writes)
	assert.Equal(t, []byte{0x00}, first.reads)
}

func TestIOMapUnbound(t *testing.T) {
	var m IOMap

	_, err := m.In(0x10)
	assert.True(t, errors.Is(err, ErrPortNotMapped))

	err = m.Out(0x10, 0)
	assert.True(t, errors.Is(err, ErrPortNotMapped))
	assert.Contains(t, err.Error(), "output device not found at 0x10")

	_, ok := m.Device(0x10)
	assert.False(t, ok)
}
