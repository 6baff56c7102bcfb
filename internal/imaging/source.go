package imaging

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// SourceReader is an open, random-access view of an image's bytes
type SourceReader interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Source reopens the bytes an image was loaded from. An image opens its
// source once for the header and at most once more for lazy pixels.
type Source interface {
	Name() string
	Open() (SourceReader, error)
}

// FileSource reads from a path on the local filesystem
type FileSource string

// Name returns the path
func (s FileSource) Name() string { return string(s) }

// Open opens the file for reading
func (s FileSource) Open() (SourceReader, error) {
	f, err := os.Open(string(s))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileReader{File: f, size: info.Size()}, nil
}

type fileReader struct {
	*os.File
	size int64
}

func (r *fileReader) Size() int64 { return r.size }

// BytesSource serves an in-memory copy of a file
type BytesSource struct {
	name string
	data []byte
}

// NewBytesSource wraps data under name. data must not be modified afterwards.
func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

// Name returns the name the bytes were registered under
func (s *BytesSource) Name() string { return s.name }

// Open returns a reader over the bytes
func (s *BytesSource) Open() (SourceReader, error) {
	if s == nil {
		return nil, fmt.Errorf("nil source")
	}
	return bytesReader{bytes.NewReader(s.data)}, nil
}

type bytesReader struct {
	*bytes.Reader
}

func (bytesReader) Close() error { return nil }

// readAll copies the whole source into memory
func readAll(src Source) ([]byte, error) {
	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data := make([]byte, r.Size())
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return data, nil
}
