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

// Command version generates the version package from the environment and
// the Git checkout.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	startYear       = 2019
	defaultVersion  = "0.1.0"
	copyrightFormat = "Copyright (c) %v Andreas T Jonsson"
)

var versionPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:[-.](.+))?$`)

func main() {
	file := flag.String("file", "-", "Save the generated output to file.")
	pkg := flag.String("package", "version", "Package name of the generated output.")
	env := flag.String("variable", "VZ80_VERSION", "Environment variable containing the version number.")
	flag.Parse()

	hash, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		logrus.Warn("Could not read Git hash: ", err)
	}

	ver := os.Getenv(*env)
	if ver == "" {
		ver = defaultVersion
		logrus.Infof("%s is not set, defaulting to %s", *env, ver)
	}

	parts := versionPattern.FindStringSubmatch(ver)
	if parts == nil {
		logrus.Warn("Invalid version format: ", ver)
		parts = versionPattern.FindStringSubmatch(defaultVersion)
	}

	copyright := fmt.Sprintf(copyrightFormat, startYear)
	if year := time.Now().Year(); year != startYear {
		copyright = fmt.Sprintf(copyrightFormat, fmt.Sprintf("%d-%d", startYear, year))
	}

	var buf bytes.Buffer
	tmpl := template.Must(template.New("version").Parse(content))
	if err := tmpl.Execute(&buf, map[string]string{
		"hash":  strings.TrimSpace(string(hash)),
		"major": parts[1],
		"minor": parts[2],
		"patch": parts[3],
		"build": parts[4],
		"copy":  copyright,
		"pkg":   *pkg,
	}); err != nil {
		logrus.Fatal(err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		logrus.Fatal(err)
	}

	if *file == "-" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*file, src, 0644); err != nil {
		logrus.Fatal(err)
	}
}

var content = `/*
{{.copy}}

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

// Code generated by tools/version. DO NOT EDIT.

package {{.pkg}}

var (
	Current   = Version{ {{.major}}, {{.minor}}, {{.patch}}, "{{.build}}" }
	Copyright = "{{.copy}}"
	Hash      = "{{.hash}}"
)
`
