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

package cpu

import (
	"errors"
	"testing"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
	"github.com/andreas-jonsson/virtualz80/emulator/peripheral"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueDevice struct {
	queue   []byte
	out     []byte
	inCalls int
}

func (d *queueDevice) In(byte) byte {
	d.inCalls++
	if len(d.queue) == 0 {
		return 0
	}
	v := d.queue[0]
	d.queue = d.queue[1:]
	return v
}

func (d *queueDevice) Out(_ byte, data byte) {
	d.out = append(d.out, data)
}

func (d *queueDevice) Ports() []byte {
	return []byte{0x00}
}

type testPeripheral struct {
	queueDevice
	installErr error
	steps      int
	resets     int
}

func (d *testPeripheral) Name() string {
	return "Test Device"
}

func (d *testPeripheral) Reset() {
	d.resets++
}

func (d *testPeripheral) Step(int) error {
	d.steps++
	return nil
}

func (d *testPeripheral) Install(p processor.Processor) error {
	if d.installErr != nil {
		return d.installErr
	}
	p.InstallIODeviceAt(d, 0x10, 0x11)
	return nil
}

type recordingDecoder struct {
	processor.Decoder
	fed []byte
}

func (d *recordingDecoder) Feed(b byte) (processor.Instruction, processor.Args, bool) {
	d.fed = append(d.fed, b)
	return d.Decoder.Feed(b)
}

type probeInstruction struct {
	reads  []memory.Address
	writes []memory.Write
	data   []byte
}

func (i *probeInstruction) ReadList(processor.Args) []memory.Address {
	return i.reads
}

func (i *probeInstruction) Execute(data []byte, _ processor.Args) []memory.Write {
	i.data = append([]byte(nil), data...)
	return i.writes
}

func (i *probeInstruction) Disassemble(processor.Args) string {
	return "PROBE"
}

type probeDecoder struct {
	ins *probeInstruction
}

func (d probeDecoder) Feed(byte) (processor.Instruction, processor.Args, bool) {
	return d.ins, nil, true
}

func (probeDecoder) Reset() {}

func newTestCPU(t *testing.T, code ...byte) *CPU {
	p, errs := NewCPU(nil)
	require.Empty(t, errs)
	p.mem.Load(0, code)
	return p
}

func TestMemoryRoundTrip(t *testing.T) {
	p := newTestCPU(t)
	for _, a := range []uint16{0x0000, 0x0038, 0x7FFF, 0xFFFF} {
		p.Write(memory.Mem(a), byte(a>>8)^0x5A)
		v, err := p.Read(memory.Mem(a))
		require.NoError(t, err)
		assert.Equal(t, byte(a>>8)^0x5A, v)
	}
}

func TestPortDispatch(t *testing.T) {
	p := newTestCPU(t)
	dev := &queueDevice{queue: []byte{0x41}}
	p.InstallIODevice(dev)

	p.Write(memory.FromLinear(0x10000), 0x99)
	assert.Equal(t, []byte{0x99}, dev.out)

	v, err := p.Read(memory.FromLinear(0x10000))
	require.NoError(t, err)
	assert.Equal(t, byte(0x41), v)
	assert.Equal(t, 1, dev.inCalls)

	// Memory is untouched by port traffic.
	assert.Equal(t, byte(0), p.ReadByte(0x0000))

	mapped, ok := p.GetMappedIODevice(0x00)
	require.True(t, ok)
	assert.Equal(t, dev, mapped)
}

func TestUnboundPorts(t *testing.T) {
	t.Run("Write", func(t *testing.T) {
		p := newTestCPU(t, 0xD3, 0x05)
		before := p.mem

		_, _, err := p.Step()
		require.NoError(t, err)
		assert.Equal(t, uint16(2), p.PC)
		assert.True(t, before == p.mem)
		assert.Equal(t, uint64(1), p.GetStats().UnmappedWrites)
	})

	t.Run("Read", func(t *testing.T) {
		p := newTestCPU(t, 0xDB, 0x05)
		_, _, err := p.Step()
		assert.True(t, errors.Is(err, memory.ErrPortNotMapped))
	})
}

func TestNOP(t *testing.T) {
	p := newTestCPU(t, 0x00)
	before := p.mem

	ins, args, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), p.PC)
	assert.Equal(t, "NOP", ins.Disassemble(args))
	assert.Empty(t, ins.Execute(nil, args))
	assert.True(t, before == p.mem)
}

func TestProgramCounterWrap(t *testing.T) {
	p := newTestCPU(t, 0x41)
	p.mem[0xFFFF] = 0x3E
	p.PC = 0xFFFF

	_, _, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0001), p.PC)
	assert.Equal(t, byte(0x41), p.A)
}

func TestOperandGather(t *testing.T) {
	p := newTestCPU(t)
	p.InstallIODevice(&queueDevice{queue: []byte{0x41}})

	probe := &probeInstruction{
		reads:  []memory.Address{memory.FromLinear(0x10000)},
		writes: []memory.Write{{Addr: memory.Mem(0x2000), Data: 0x42}},
	}
	p.SetDecoder(probeDecoder{probe})

	ins, _, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, probe, ins)
	assert.Equal(t, []byte{0x41}, probe.data)
	assert.Equal(t, byte(0x42), p.ReadByte(0x2000))
}

func TestInterrupt(t *testing.T) {
	t.Run("ModeOne", func(t *testing.T) {
		p := newTestCPU(t)
		rec := &recordingDecoder{Decoder: p.decoder}
		p.SetDecoder(rec)

		p.PC, p.SP = 0x1234, 0x8000
		p.IFF, p.IM = true, 1
		p.RaiseInterrupt()
		p.RaiseInterrupt()

		ins, args, err := p.Step()
		require.NoError(t, err)
		assert.Equal(t, []byte{0xCD, 0x38, 0x00}, rec.fed)
		assert.Equal(t, "CALL 0x0038", ins.Disassemble(args))
		assert.False(t, p.IFF)
		assert.False(t, p.InterruptPending())
		assert.Equal(t, uint16(0x0038), p.PC)
		assert.Equal(t, uint16(0x7FFE), p.SP)
		assert.Equal(t, byte(0x12), p.ReadByte(0x7FFF))
		assert.Equal(t, byte(0x34), p.ReadByte(0x7FFE))
		assert.Equal(t, uint32(1), p.GetStats().NumInterrupts)
	})

	t.Run("Disabled", func(t *testing.T) {
		p := newTestCPU(t, 0x00)
		p.IM = 1
		p.RaiseInterrupt()

		_, _, err := p.Step()
		require.NoError(t, err)
		assert.Equal(t, uint16(1), p.PC)
		assert.True(t, p.InterruptPending())
	})

	t.Run("EnableDelay", func(t *testing.T) {
		p := newTestCPU(t, 0xFB, 0x00, 0x00)
		p.IM = 1
		p.SP = 0x8000
		p.RaiseInterrupt()

		_, _, err := p.Step()
		require.NoError(t, err)
		assert.True(t, p.IFF)

		ins, args, err := p.Step()
		require.NoError(t, err)
		assert.Equal(t, "NOP", ins.Disassemble(args))
		assert.Equal(t, uint16(2), p.PC)

		_, _, err = p.Step()
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0038), p.PC)
		assert.Equal(t, byte(0x02), p.ReadByte(0x7FFE))
	})

	t.Run("Halted", func(t *testing.T) {
		p := newTestCPU(t, 0x76)
		p.IFF, p.IM = true, 1
		p.SP = 0x8000

		_, _, err := p.Step()
		require.NoError(t, err)
		assert.True(t, p.Halted)
		assert.Equal(t, uint16(0), p.PC)

		p.RaiseInterrupt()
		_, _, err = p.Step()
		require.NoError(t, err)
		assert.False(t, p.Halted)
		assert.Equal(t, uint16(0x0038), p.PC)
		assert.Equal(t, byte(0x01), p.ReadByte(0x7FFE))
	})

	t.Run("UnsupportedMode", func(t *testing.T) {
		for _, mode := range []byte{0, 2} {
			p := newTestCPU(t)
			p.IFF, p.IM = true, mode
			p.RaiseInterrupt()

			_, _, err := p.Step()
			assert.True(t, errors.Is(err, processor.ErrInterruptMode), "IM %d", mode)
		}
	})
}

func TestHalt(t *testing.T) {
	p := newTestCPU(t, 0x76)
	_, _, err := p.Step()
	assert.Equal(t, processor.ErrCPUHalt, err)
}

func TestDecodeOverrun(t *testing.T) {
	p := newTestCPU(t, 0xDD, 0xDD, 0xDD, 0xDD, 0xDD, 0xDD, 0xDD, 0xDD, 0x00)
	_, _, err := p.Step()
	assert.True(t, errors.Is(err, processor.ErrDecodeOverrun))
	assert.Equal(t, uint16(processor.MaxInstructionLength), p.PC)

	// The decoder starts over with the byte that follows.
	ins, args, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, "NOP", ins.Disassemble(args))
}

func TestPeripherals(t *testing.T) {
	dev := &testPeripheral{queueDevice: queueDevice{queue: []byte{0x77}}}
	broken := &testPeripheral{installErr: errors.New("broken")}

	p, errs := NewCPU([]peripheral.Peripheral{dev, broken})
	defer p.Close()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], broken.installErr))

	p.mem.Load(0, []byte{0xDB, 0x11})
	_, _, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, byte(0x77), p.A)
	assert.Equal(t, 1, dev.steps)

	p.RaiseInterrupt()
	p.Reset()
	assert.Equal(t, 1, dev.resets)
	assert.False(t, p.InterruptPending())
	assert.Equal(t, uint16(0), p.PC)
	assert.Equal(t, uint16(0xFFFF), p.SP)
}
