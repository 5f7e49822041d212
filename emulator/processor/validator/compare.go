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

package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrTraceLength = errors.New("traces differ in length")

// Mismatch is returned by Compare for the first pair of events that differ.
type Mismatch struct {
	Index int
	A, B  Event
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("event %d differs: [0x%04X] %s != [0x%04X] %s", m.Index, m.A.PC, m.A.Instruction, m.B.PC, m.B.Instruction)
}

// Compare walks two event streams in lockstep and returns the number of
// equal events before the first difference. A limit of zero compares
// the full streams.
func Compare(a, b io.Reader, limit int) (int, error) {
	decA, decB := json.NewDecoder(a), json.NewDecoder(b)

	for i := 0; limit <= 0 || i < limit; i++ {
		var evA, evB Event
		errA, errB := decA.Decode(&evA), decB.Decode(&evB)

		switch {
		case errA == io.EOF && errB == io.EOF:
			return i, nil
		case errA == io.EOF || errB == io.EOF:
			return i, fmt.Errorf("%w: one trace ended after %d events", ErrTraceLength, i)
		case errA != nil:
			return i, errA
		case errB != nil:
			return i, errB
		}

		if !equalEvents(&evA, &evB) {
			return i, &Mismatch{Index: i, A: evA, B: evB}
		}
	}
	return limit, nil
}

func equalEvents(a, b *Event) bool {
	return a.PC == b.PC &&
		a.Instruction == b.Instruction &&
		a.Regs == b.Regs &&
		equalOps(a.Reads, b.Reads) &&
		equalOps(a.Writes, b.Writes)
}

func equalOps(a, b []MemOp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
