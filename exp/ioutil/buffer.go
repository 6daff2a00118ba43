// Copyright 2023 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ioutil

import (
	"io"

	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

// Buffer is a flat, growable byte buffer. It is a [zerocopy.Sink] whose
// preparations are always a single region, and its readable data is a
// single-region [zerocopy.BufferSequence].
//
// Prepare may move the readable data, which invalidates regions previously
// returned by Data or Bytes.
type Buffer struct {
	buf  []byte
	off  int
	prep int
}

var _ zerocopy.Sink = (*Buffer)(nil)
var _ io.ReadWriter = (*Buffer)(nil)

// NewBuffer returns a buffer whose readable data is b.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Bytes returns the readable data. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Len returns the number of readable bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Data returns the readable data as a buffer sequence.
func (b *Buffer) Data() zerocopy.Buffers {
	if b.Len() == 0 {
		return nil
	}
	return zerocopy.Buffers{b.Bytes()}
}

func (b *Buffer) Prepare(n int) []zerocopy.Region {
	b.prep = 0
	if n < 0 {
		panic(errors.InternalError.WithFormat("cannot prepare %d bytes", n))
	}

	if cap(b.buf)-len(b.buf) < n {
		l := b.Len()
		if b.off > 0 && cap(b.buf)-l >= n {
			// Slide the readable data down
			copy(b.buf, b.buf[b.off:])
			b.buf = b.buf[:l]
		} else {
			buf := make([]byte, l, 2*cap(b.buf)+n)
			copy(buf, b.buf[b.off:])
			b.buf = buf
		}
		b.off = 0
	}

	b.prep = n
	end := len(b.buf)
	return []zerocopy.Region{b.buf[end : end+n]}
}

func (b *Buffer) Commit(n int) {
	if n < 0 || n > b.prep {
		panic(errors.InternalError.WithFormat("cannot commit %d bytes of %d prepared", n, b.prep))
	}
	b.buf = b.buf[:len(b.buf)+n]
	b.prep -= n
}

// Consume discards the first n readable bytes, or all of them if n is
// larger than Len. Outstanding prepared capacity is abandoned.
func (b *Buffer) Consume(n int) {
	b.prep = 0
	if n <= 0 {
		return
	}
	if n >= b.Len() {
		b.buf = b.buf[:0]
		b.off = 0
		return
	}
	b.off += n
}

func (b *Buffer) Read(v []byte) (int, error) {
	if b.off >= len(b.buf) {
		return 0, io.EOF
	}
	n := copy(v, b.buf[b.off:])
	b.Consume(n)
	return n, nil
}

func (b *Buffer) Write(v []byte) (int, error) {
	r := b.Prepare(len(v))
	copy(r[0], v)
	b.Commit(len(v))
	return len(v), nil
}
