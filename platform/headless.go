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

package platform

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

type headlessPlatform struct {
	basePlatform

	output   io.Writer
	terminal bool
}

var headlessPlatformInstance headlessPlatform

func headlessStart(mainLoop func(Platform) error, configs ...Config) error {
	p := &headlessPlatformInstance
	if err := p.configure(p, configs); err != nil {
		return err
	}
	p.output = os.Stdout

	if restore, err := enterRawTerm(int(os.Stdin.Fd())); err != nil {
		logrus.WithError(err).Debug("Console input is line buffered")
	} else {
		p.terminal = true
		defer restore()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	go func() {
		<-sig
		Quit()
	}()
	go p.readInput(os.Stdin)

	Instance = p
	return mainLoop(Instance)
}

func (p *headlessPlatform) SetTitle(title string) {
	if p.terminal {
		fmt.Fprintf(p.output, "\x1b]0;%s\x07", title)
	}
}

func (p *headlessPlatform) Console() io.Writer {
	return p.output
}

// readInput forwards every byte from r to the keyboard handler. The
// terminal delivers Enter as a line feed, which is translated back to 13.
func (p *headlessPlatform) readInput(r io.Reader) {
	var buf [64]byte
	for {
		n, err := r.Read(buf[:])
		for _, c := range buf[:n] {
			if c == '\n' {
				c = '\r'
			}
			p.pushKey(c)
		}

		if err != nil {
			if err != io.EOF {
				logrus.Error("Console input: ", err)
			}
			return
		}
	}
}
