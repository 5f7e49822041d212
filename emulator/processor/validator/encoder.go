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
	"compress/gzip"
	"io"
	"strings"

	"github.com/spf13/afero"
)

type gzipFile struct {
	*gzip.Writer
	file afero.File
}

func (f *gzipFile) Close() error {
	if err := f.Writer.Close(); err != nil {
		f.file.Close()
		return err
	}
	return f.file.Close()
}

// createOutput opens name for writing. Names ending in .gz are compressed.
func createOutput(fs afero.Fs, name string) (io.WriteCloser, error) {
	fp, err := fs.Create(name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, ".gz") {
		return &gzipFile{Writer: gzip.NewWriter(fp), file: fp}, nil
	}
	return fp, nil
}

type gzipReader struct {
	*gzip.Reader
	file afero.File
}

func (r *gzipReader) Close() error {
	r.Reader.Close()
	return r.file.Close()
}

// OpenTrace opens a recorded event stream for reading. Names ending in
// .gz are decompressed.
func OpenTrace(fs afero.Fs, name string) (io.ReadCloser, error) {
	fp, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return fp, nil
	}

	zr, err := gzip.NewReader(fp)
	if err != nil {
		fp.Close()
		return nil, err
	}
	return &gzipReader{Reader: zr, file: fp}, nil
}
