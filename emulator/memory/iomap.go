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
	"fmt"
)

var ErrPortNotMapped = errors.New("port not mapped")

// IOMap routes the 256 entry port space to devices.
type IOMap struct {
	devices [0x100]IO
}

// Bind registers device for every given port. Any previous binding is replaced.
func (m *IOMap) Bind(device IO, ports ...byte) {
	for _, p := range ports {
		m.devices[p] = device
	}
}

func (m *IOMap) Device(port byte) (IO, bool) {
	dev := m.devices[port]
	return dev, dev != nil
}

func (m *IOMap) In(port byte) (byte, error) {
	dev, ok := m.Device(port)
	if !ok {
		return 0, fmt.Errorf("%w: input device not found at 0x%02X", ErrPortNotMapped, port)
	}
	return dev.In(port), nil
}

func (m *IOMap) Out(port, data byte) error {
	dev, ok := m.Device(port)
	if !ok {
		return fmt.Errorf("%w: output device not found at 0x%02X", ErrPortNotMapped, port)
	}
	dev.Out(port, data)
	return nil
}
