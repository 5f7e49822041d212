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

// Package platform is the host side of the emulator. It owns the terminal,
// delivers key presses and displays console output.
package platform

import (
	"flag"
	"io"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
)

type internalPlatform interface {
	setFileSystem(fs afero.Fs)
}

type Config func(internalPlatform) error

type Platform interface {
	FileSystem() afero.Fs
	SetTitle(title string)
	SetKeyboardHandler(h func(byte))
	Console() io.Writer
}

var Instance Platform

var (
	headless bool
	quitFlag int32
)

func init() {
	flag.BoolVar(&headless, "headless", false, "Use stdin and stdout as the console")
}

func ConfigWithFileSystem(fs afero.Fs) Config {
	return func(p internalPlatform) error {
		p.setFileSystem(fs)
		return nil
	}
}

// Start initializes the selected front end and runs mainLoop on the
// calling goroutine. The front end is torn down before the error from
// mainLoop is returned.
func Start(mainLoop func(Platform) error, configs ...Config) error {
	if headless {
		return headlessStart(mainLoop, configs...)
	}
	return tcellStart(mainLoop, configs...)
}

func IsHeadless() bool {
	return headless
}

func ShutdownRequested() bool {
	return atomic.LoadInt32(&quitFlag) != 0
}

func Quit() {
	atomic.StoreInt32(&quitFlag, 1)
}

type basePlatform struct {
	sync.Mutex

	fileSystem      afero.Fs
	keyboardHandler func(byte)
}

func (p *basePlatform) setFileSystem(fs afero.Fs) {
	p.fileSystem = fs
}

func (p *basePlatform) FileSystem() afero.Fs {
	return p.fileSystem
}

func (p *basePlatform) configure(self internalPlatform, configs []Config) error {
	p.fileSystem = afero.NewOsFs()
	for _, cfg := range configs {
		if err := cfg(self); err != nil {
			return err
		}
	}
	return nil
}

func (p *basePlatform) SetKeyboardHandler(h func(byte)) {
	p.Lock()
	p.keyboardHandler = h
	p.Unlock()
}

func (p *basePlatform) pushKey(key byte) {
	p.Lock()
	defer p.Unlock()

	if p.keyboardHandler != nil {
		p.keyboardHandler(key)
	}
}
