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

// Command validator compares two recorded instruction traces and reports
// the first event where they diverge.
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/andreas-jonsson/virtualz80/emulator/processor/validator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	traceInput = "virtualz80.json"
	refInput   = "reference.json"
	limit      int
)

func init() {
	flag.StringVar(&traceInput, "trace", traceInput, "Trace recorded with -validate")
	flag.StringVar(&refInput, "reference", refInput, "Reference trace")
	flag.IntVar(&limit, "n", 0, "Number of events to compare, 0 compares everything")
}

func main() {
	flag.Parse()
	fs := afero.NewOsFs()

	trace, err := validator.OpenTrace(fs, traceInput)
	if err != nil {
		logrus.Fatal(err)
	}
	defer trace.Close()

	ref, err := validator.OpenTrace(fs, refInput)
	if err != nil {
		logrus.Fatal(err)
	}
	defer ref.Close()

	n, err := validator.Compare(trace, ref, limit)
	logrus.WithField("events", n).Info("Equal")

	var m *validator.Mismatch
	switch {
	case errors.As(err, &m):
		logrus.WithFields(logrus.Fields{
			"trace":     m.A,
			"reference": m.B,
		}).Error(m)
		os.Exit(1)
	case err != nil:
		logrus.Error(err)
		os.Exit(1)
	}
}
