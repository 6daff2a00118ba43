// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package zerocopy

import (
	"io"

	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
)

// Reader reads from a [ChunkReader] through the standard io interfaces. It
// holds on to the unread part of the current chunk; Release gives that part
// back to the chunk reader.
type Reader struct {
	cr  *ChunkReader
	buf []byte
}

var _ io.Reader = (*Reader)(nil)
var _ io.ByteReader = (*Reader)(nil)

// NewReader returns a reader that consumes cr.
func NewReader(cr *ChunkReader) *Reader {
	return &Reader{cr: cr}
}

// fill loads the next non-empty chunk if the current one is used up.
func (r *Reader) fill() bool {
	for len(r.buf) == 0 {
		b, ok := r.cr.Next()
		if !ok {
			r.buf = nil
			return false
		}
		r.buf = b
	}
	return true
}

// Read copies from the current chunk, fetching the next one if needed.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !r.fill() {
		return 0, io.EOF
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if !r.fill() {
		return 0, io.EOF
	}
	c := r.buf[0]
	r.buf = r.buf[1:]
	return c, nil
}

// Next returns the next n bytes. If they are contiguous in the current
// chunk the result aliases the underlying memory; otherwise they are copied
// into a new slice. Next returns [io.ErrUnexpectedEOF] if fewer than n bytes
// remain, and [io.EOF] if none do.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.BadRequest.WithFormat("cannot read %d bytes", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	if !r.fill() {
		return nil, io.EOF
	}
	if n <= len(r.buf) {
		b := r.buf[:n:n]
		r.buf = r.buf[n:]
		return b, nil
	}

	b := make([]byte, n)
	_, err := io.ReadFull(r, b)
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return b, nil
}

// Discard skips the next n bytes and returns the number of bytes skipped.
// If fewer than n bytes remain it returns [io.ErrUnexpectedEOF].
func (r *Reader) Discard(n int) (int, error) {
	if n < 0 {
		return 0, errors.BadRequest.WithFormat("cannot discard %d bytes", n)
	}
	if n <= len(r.buf) {
		r.buf = r.buf[n:]
		return n, nil
	}

	skipped := len(r.buf)
	r.buf = nil
	before := r.cr.ByteCount()
	ok := r.cr.Skip(n - skipped)
	skipped += int(r.cr.ByteCount() - before)
	if !ok {
		return skipped, io.ErrUnexpectedEOF
	}
	return skipped, nil
}

// ByteCount returns the number of bytes consumed through r.
func (r *Reader) ByteCount() int64 {
	return r.cr.ByteCount() - int64(len(r.buf))
}

// Release backs the unread part of the current chunk up into the chunk
// reader, so that the chunk reader can be handed to another consumer.
func (r *Reader) Release() {
	if len(r.buf) > 0 {
		r.cr.BackUp(len(r.buf))
	}
	r.buf = nil
}

// Writer writes to a [ChunkWriter] through the standard io interfaces. It
// holds on to the unwritten part of the current chunk; Flush gives that
// part back to the chunk writer and thereby commits everything written.
type Writer struct {
	cw    *ChunkWriter
	chunk []byte
	buf   []byte
	// held is true while cw has a chunk outstanding on behalf of w.
	held bool
}

var _ io.WriteCloser = (*Writer)(nil)
var _ io.ByteWriter = (*Writer)(nil)

// NewWriter returns a writer that fills the chunks handed out by cw.
func NewWriter(cw *ChunkWriter) *Writer {
	return &Writer{cw: cw}
}

func (w *Writer) grab() {
	if len(w.buf) == 0 {
		w.chunk = w.cw.Next()
		w.buf = w.chunk
		w.held = true
	}
}

// Write copies p into as many chunks as it takes. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		w.grab()
		m := copy(w.buf, p)
		w.buf = w.buf[m:]
		p = p[m:]
	}
	return n, nil
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(c byte) error {
	w.grab()
	w.buf[0] = c
	w.buf = w.buf[1:]
	return nil
}

// Alloc reserves n bytes of the current chunk and returns them for the
// caller to fill in place. If n bytes do not fit in the current chunk
// (fetching a new one if it is used up), Alloc reserves nothing and returns
// nil.
func (w *Writer) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	w.grab()
	if n > len(w.buf) {
		return nil
	}
	b := w.buf[:n:n]
	w.buf = w.buf[n:]
	return b
}

// Unwrite takes back the last n bytes written or allocated, provided they
// are all in the current chunk. It returns false and does nothing if they
// are not.
func (w *Writer) Unwrite(n int) bool {
	used := len(w.chunk) - len(w.buf)
	if !w.held || n < 0 || n > used {
		return false
	}
	w.buf = w.chunk[used-n:]
	return true
}

// Flush commits everything written so far and returns the unused part of
// the current chunk to the chunk writer.
func (w *Writer) Flush() error {
	if !w.held {
		return nil
	}
	w.cw.BackUp(len(w.buf))
	w.chunk, w.buf = nil, nil
	w.held = false
	return nil
}

// ByteCount returns the number of bytes written through w and committed.
// Bytes in the chunk currently being filled are not included until the
// chunk is finished or w is flushed.
func (w *Writer) ByteCount() int64 {
	return w.cw.ByteCount()
}

// Close flushes w and closes the chunk writer.
func (w *Writer) Close() error {
	err := w.Flush()
	if err != nil {
		return err
	}
	return w.cw.Close()
}
