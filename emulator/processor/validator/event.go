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

package validator

import (
	"github.com/andreas-jonsson/virtualz80/emulator/processor"
)

const (
	DefaultQueueSize  = 1024
	DefaultBufferSize = 0x100000 // 1MB
)

// Event describes a single executed instruction. Addresses use the linear
// encoding where values at or above 0x10000 are ports.
type Event struct {
	PC          uint16                 `json:"pc"`
	Instruction string                 `json:"instruction"`
	Regs        [2]processor.Registers `json:"regs"`
	Reads       []MemOp                `json:"reads"`
	Writes      []MemOp                `json:"writes"`
}

type MemOp struct {
	Addr uint32 `json:"addr"`
	Data byte   `json:"data"`
}
