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

package platform

import (
	"os"
	"time"

	"github.com/gdamore/tcell"
	"github.com/sirupsen/logrus"
)

func (p *tcellPlatform) initializeTcellEvents() {
	go func() {
		s := p.screen
		for {
			switch ev := s.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyF12 {
					Quit()
					go func() {
						time.Sleep(3 * time.Second)
						os.Exit(-1)
					}()
					return
				}
				p.pushKeyEvent(ev)
			case *tcell.EventResize:
				s.Sync()
			case *tcell.EventInterrupt:
				p.render()
			}
		}
	}()
}

func (p *tcellPlatform) pushKeyEvent(ev *tcell.EventKey) {
	key, ok := createKeyFromTCELL(ev)
	if !ok {
		logrus.WithField("key", ev.Name()).Debug("Unknown key!")
		return
	}
	p.pushKey(key)
}

// createKeyFromTCELL maps a key event to the byte the console device
// receives. tcell key codes below 0x80 equal their ASCII control codes,
// so Enter arrives as 13.
func createKeyFromTCELL(ev *tcell.EventKey) (byte, bool) {
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		if r := ev.Rune(); r < 0x80 {
			return byte(r), true
		}
	case k >= 0 && k < 0x80:
		return byte(k), true
	}
	return 0, false
}
