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
	"io"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell"
)

type tcellPlatform struct {
	basePlatform

	screen tcell.Screen

	textLock sync.Mutex
	text     textBuffer
	dirty    int32
}

var tcellPlatformInstance tcellPlatform

func tcellStart(mainLoop func(Platform) error, configs ...Config) error {
	p := &tcellPlatformInstance
	if err := p.configure(p, configs); err != nil {
		return err
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	var err error
	if p.screen, err = tcell.NewScreen(); err != nil {
		return err
	}

	Instance = p
	s := p.screen

	if err = s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	s.ShowCursor(0, 0)
	s.DisableMouse()
	s.Clear()

	p.initializeTcellEvents()
	return mainLoop(Instance)
}

func (p *tcellPlatform) SetTitle(title string) {
}

func (p *tcellPlatform) Console() io.Writer {
	return p
}

// Write appends console output to the text grid and schedules a redraw.
// Redraw requests collapse until the event loop has rendered.
func (p *tcellPlatform) Write(data []byte) (int, error) {
	p.textLock.Lock()
	p.text.write(data)
	p.textLock.Unlock()

	if atomic.CompareAndSwapInt32(&p.dirty, 0, 1) {
		if err := p.screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
			atomic.StoreInt32(&p.dirty, 0)
		}
	}
	return len(data), nil
}

func (p *tcellPlatform) render() {
	atomic.StoreInt32(&p.dirty, 0)
	s := p.screen

	p.textLock.Lock()
	for y := 0; y < consoleHeight; y++ {
		for x := 0; x < consoleWidth; x++ {
			s.SetContent(x, y, p.text.glyph(x, y), nil, tcell.StyleDefault)
		}
	}
	s.ShowCursor(p.text.cursor())
	p.textLock.Unlock()

	s.Show()
}
