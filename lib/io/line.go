package iolib

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
)

// DefaultLineSize is the initial capacity of a line buffer.
const DefaultLineSize = 8192

const chunkSize = 4096

// maxPrealloc bounds what ReadFull reserves before any content arrives.
const maxPrealloc = 64 << 10

var (
	ErrNulByte     = errors.New("nul byte before line terminator")
	ErrBufferLimit = errors.New("buffer limit exceeded")
)

type LineOptions struct {
	// InitialLineSize is the starting capacity of a line buffer.
	// Zero means [DefaultLineSize].
	InitialLineSize uint

	// MaxLineSize caps how far a line buffer may grow. Zero means no limit.
	MaxLineSize uint

	// MaxContentSize caps the length accepted by [LineReader.ReadFull]. Zero means no limit.
	MaxContentSize uint
}

// LineReader reads LF terminated lines from a byte stream.
// Bytes read ahead of a line stay buffered, so ReadFull and Read
// continue exactly where the last line ended.
type LineReader struct {
	r   io.Reader
	err error // sticky error of r.

	buf   *bytes.Buffer
	chunk []byte

	opts LineOptions
}

func NewLineReader(r io.Reader, opts LineOptions) *LineReader {
	if opts.InitialLineSize == 0 {
		opts.InitialLineSize = DefaultLineSize
	}
	if opts.MaxLineSize > 0 {
		opts.InitialLineSize = min(opts.InitialLineSize, opts.MaxLineSize)
	}

	return &LineReader{
		r:     r,
		buf:   bytes.NewBuffer(nil),
		chunk: make([]byte, chunkSize),
		opts:  opts,
	}
}

// ReadLine returns the next line without its terminator.
// CR bytes are dropped wherever they appear.
// If the stream fails (or carries a NUL byte) before LF,
// the partially read line is discarded and only the error is returned.
func (lr *LineReader) ReadLine() ([]byte, error) {
	line := make([]byte, 0, lr.opts.InitialLineSize)

	for {
		c, err := lr.readByte()
		if err != nil {
			return nil, err
		}

		switch c {
		case 0:
			return nil, ErrNulByte
		case '\r':
			continue
		case '\n':
			return line, nil
		}

		if len(line) == cap(line) {
			if line, err = lr.grow(line); err != nil {
				return nil, err
			}
		}
		line = append(line, c)
	}
}

// grow doubles the capacity of line, keeping its content.
func (lr *LineReader) grow(line []byte) ([]byte, error) {
	size := uint(cap(line)) * 2
	if size == 0 {
		size = 1
	}

	if max := lr.opts.MaxLineSize; max > 0 && size > max {
		if uint(cap(line)) >= max {
			return nil, errors.Wrapf(ErrBufferLimit, "line exceeds %d bytes", max)
		}
		size = max
	}

	grown := make([]byte, len(line), size)
	copy(grown, line)
	return grown, nil
}

// ReadFull reads exactly n bytes.
// A stream ending early yields [io.ErrUnexpectedEOF] (or the stream's own error)
// and no content.
// Memory grows with the bytes actually received, not with n.
func (lr *LineReader) ReadFull(n uint) ([]byte, error) {
	if max := lr.opts.MaxContentSize; max > 0 && n > max {
		return nil, errors.Wrapf(ErrBufferLimit, "content of %d bytes exceeds %d", n, max)
	}
	if n == 0 {
		return []byte{}, nil
	}

	// Lengths past MaxInt64 cannot be satisfied by any stream.
	want := int64(math.MaxInt64)
	if uint64(n) < math.MaxInt64 {
		want = int64(n)
	}

	buf := bytes.NewBuffer(make([]byte, 0, min(want, maxPrealloc)))
	copied, err := io.CopyN(buf, lr, want)
	if err != nil || uint(copied) != n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return buf.Bytes(), nil
}

// Read drains buffered bytes first, then reads from the underlying stream.
func (lr *LineReader) Read(p []byte) (n int, err error) {
	if lr.buf.Len() > 0 {
		return lr.buf.Read(p)
	}
	if lr.err != nil {
		return 0, lr.err
	}
	return lr.r.Read(p)
}

// Buffered returns how many bytes were read ahead and not consumed yet.
func (lr *LineReader) Buffered() int { return lr.buf.Len() }

func (lr *LineReader) readByte() (byte, error) {
	for lr.buf.Len() == 0 {
		if err := lr.fill(); err != nil {
			return 0, err
		}
	}
	return lr.buf.ReadByte()
}

func (lr *LineReader) fill() error {
	if lr.err != nil {
		return lr.err
	}

	n, err := lr.r.Read(lr.chunk)
	lr.buf.Write(lr.chunk[:n])
	if err != nil {
		// Bytes returned along with the error are still served first.
		lr.err = err
		if n == 0 {
			return err
		}
	}

	return nil
}
