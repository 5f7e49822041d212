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

package rom

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/andreas-jonsson/virtualz80/emulator/peripheral"
	"github.com/andreas-jonsson/virtualz80/emulator/processor/cpu"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `:030000003E417608
:02010000AABB98
:00000001FF
`

func install(t *testing.T, dev *Device) (*cpu.CPU, []error) {
	t.Helper()
	p, errs := cpu.NewCPU([]peripheral.Peripheral{dev})
	t.Cleanup(p.Close)
	return p, errs
}

func TestIntelHex(t *testing.T) {
	dev := &Device{Reader: strings.NewReader(program)}
	p, errs := install(t, dev)
	require.Empty(t, errs)

	assert.Equal(t, byte(0x3E), p.ReadByte(0x0000))
	assert.Equal(t, byte(0x41), p.ReadByte(0x0001))
	assert.Equal(t, byte(0x76), p.ReadByte(0x0002))
	assert.Equal(t, byte(0xAA), p.ReadByte(0x0100))
	assert.Equal(t, byte(0xBB), p.ReadByte(0x0101))
	assert.Equal(t, 5, dev.Size())
	assert.Equal(t, "ROM", dev.Name())
}

func TestIntelHexErrors(t *testing.T) {
	cases := []struct {
		name, image string
		err         error
	}{
		{"StartCode", "030000003E417608\n", ErrBadStartCode},
		{"Checksum", ":030000003E417609\n", ErrChecksum},
		{"TooLarge", ":02FFFF000102FD\n", ErrTooLarge},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, errs := install(t, &Device{Reader: strings.NewReader(c.image)})
			require.Len(t, errs, 1)
			assert.True(t, errors.Is(errs[0], c.err), errs[0].Error())
		})
	}

	t.Run("Malformed", func(t *testing.T) {
		_, errs := install(t, &Device{Reader: strings.NewReader(":0300\n")})
		assert.Len(t, errs, 1)
	})
}

func TestBinary(t *testing.T) {
	dev := &Device{Reader: bytes.NewReader([]byte{0x3E, 0x41}), Base: 0x100, Binary: true}
	p, errs := install(t, dev)
	require.Empty(t, errs)
	assert.Equal(t, byte(0x3E), p.ReadByte(0x100))
	assert.Equal(t, byte(0x41), p.ReadByte(0x101))
	assert.Equal(t, 2, dev.Size())

	_, errs = install(t, &Device{Reader: bytes.NewReader(make([]byte, 0x10)), Base: 0xFFF8, Binary: true})
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrTooLarge))
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "monitor.hex", []byte(program), 0644))

	dev, err := Open(fs, "monitor.hex", false)
	require.NoError(t, err)
	assert.Equal(t, "monitor.hex", dev.Name())

	p, errs := install(t, dev)
	require.Empty(t, errs)
	assert.Equal(t, byte(0x41), p.ReadByte(0x0001))

	_, err = Open(fs, "missing.hex", false)
	assert.Error(t, err)
}
