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

// Package validator records every executed instruction, with the bus
// traffic it caused, as a stream of JSON events.
package validator

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/andreas-jonsson/virtualz80/emulator/memory"
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	enabled      bool
	inScope      bool
	currentEvent Event
	outputChan   chan Event
	quitChan     chan struct{}
)

// Initialize starts recording to output on the OS filesystem.
// An empty name leaves the validator disabled.
func Initialize(output string, queueSize, bufferSize int) error {
	return InitializeFs(afero.NewOsFs(), output, queueSize, bufferSize)
}

func InitializeFs(fs afero.Fs, output string, queueSize, bufferSize int) error {
	if output == "" {
		return nil
	}

	fp, err := createOutput(fs, output)
	if err != nil {
		return err
	}

	enabled = true
	outputChan = make(chan Event, queueSize)
	quitChan = make(chan struct{})

	go func() {
		var buffer bytes.Buffer

		defer func() {
			if _, err := io.Copy(fp, &buffer); err != nil {
				logrus.Error(err)
			}
			if err := fp.Close(); err != nil {
				logrus.Error(err)
			}
			close(quitChan)
		}()

		enc := json.NewEncoder(&buffer)
		for ev := range outputChan {
			if err := enc.Encode(ev); err != nil {
				logrus.Error(err)
				continue
			}
			if buffer.Len() >= bufferSize {
				logrus.Debug("Flush validation events!")
				if _, err := io.Copy(fp, &buffer); err != nil {
					logrus.Error(err)
				}
			}
		}
	}()
	return nil
}

func Enabled() bool {
	return enabled
}

func Begin(pc uint16, regs *processor.Registers) {
	if !enabled {
		return
	}

	inScope = true
	currentEvent = Event{PC: pc}
	currentEvent.Regs[0] = *regs
}

func End(instruction string, regs *processor.Registers) {
	if !inScope {
		return
	}

	inScope = false
	currentEvent.Instruction = instruction
	currentEvent.Regs[1] = *regs
	outputChan <- currentEvent
}

// Discard drops the current event, used when an instruction faults.
func Discard() {
	inScope = false
}

func Read(addr memory.Address, data byte) {
	if inScope {
		currentEvent.Reads = append(currentEvent.Reads, MemOp{addr.Linear(), data})
	}
}

func Write(addr memory.Address, data byte) {
	if inScope {
		currentEvent.Writes = append(currentEvent.Writes, MemOp{addr.Linear(), data})
	}
}

// Shutdown flushes all queued events and closes the output.
func Shutdown() {
	if !enabled {
		return
	}
	enabled, inScope = false, false
	close(outputChan)
	<-quitChan
}
