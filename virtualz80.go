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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/andreas-jonsson/virtualz80/emulator"
	"github.com/andreas-jonsson/virtualz80/platform"
	"github.com/andreas-jonsson/virtualz80/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var ver bool

func init() {
	flag.BoolVar(&ver, "v", false, "Print version information")
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("%s (%s)\n", version.Current.FullString(), version.Hash)
		return
	}

	printLogo()
	if err := platform.Start(emulator.Start, platform.ConfigWithFileSystem(afero.NewOsFs())); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func printLogo() {
	fmt.Print(logo)
	fmt.Println(" v" + version.Current.String())
	fmt.Printf(" ───────═════ %s ══════───────\n\n", version.Copyright)
}

var logo = `
██╗   ██╗██╗██████╗ ████████╗██╗   ██╗ █████╗ ██╗     ███████╗ █████╗  ██████╗
██║   ██║██║██╔══██╗╚══██╔══╝██║   ██║██╔══██╗██║     ╚══███╔╝██╔══██╗██╔═████╗
██║   ██║██║██████╔╝   ██║   ██║   ██║███████║██║       ███╔╝ ╚█████╔╝██║██╔██║
╚██╗ ██╔╝██║██╔══██╗   ██║   ██║   ██║██╔══██║██║      ███╔╝  ██╔══██╗████╔╝██║
 ╚████╔╝ ██║██║  ██║   ██║   ╚██████╔╝██║  ██║███████╗███████╗╚█████╔╝╚██████╔╝
  ╚═══╝  ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝╚══════╝ ╚════╝  ╚═════╝`
