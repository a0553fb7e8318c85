package table

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

func isGzip(filename string) bool {
	return strings.HasSuffix(filename, ".gz")
}

// The name with any ".gz" suffix removed, for determining the format from the extension.
func baseName(filename string) string {
	return strings.TrimSuffix(filename, ".gz")
}

type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// Open a file for reading, decompressing on the fly if the name ends in ".gz".
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if !isGzip(filename) {
		return f, nil
	}
	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReadCloser{Reader: zr, file: f}, nil
}

// An output file is written under a temporary name and renamed into place by Close, so that a
// failed run never leaves a truncated output behind.  Abort removes the temporary file instead.
type OutputFile struct {
	*bufio.Writer
	name string
	file *os.File
	zw   *gzip.Writer
}

// Create an output file, compressing on the fly if the name ends in ".gz".
func Create(filename string) (*OutputFile, error) {
	f, err := os.CreateTemp(path.Dir(filename), ".jobpower-*")
	if err != nil {
		return nil, err
	}
	of := &OutputFile{name: filename, file: f}
	if isGzip(filename) {
		of.zw = gzip.NewWriter(f)
		of.Writer = bufio.NewWriter(of.zw)
	} else {
		of.Writer = bufio.NewWriter(f)
	}
	return of, nil
}

func (of *OutputFile) Close() error {
	err := of.Writer.Flush()
	if of.zw != nil {
		if zerr := of.zw.Close(); err == nil {
			err = zerr
		}
	}
	if ferr := of.file.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		os.Remove(of.file.Name())
		return err
	}
	return os.Rename(of.file.Name(), of.name)
}

func (of *OutputFile) Abort() {
	of.file.Close()
	os.Remove(of.file.Name())
}
