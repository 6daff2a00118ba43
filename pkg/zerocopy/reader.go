// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package zerocopy

import (
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
)

// cursor is a position within a buffer sequence.
type cursor struct {
	index  int
	offset int
}

// ChunkReader exposes a [BufferSequence] one chunk at a time.
type ChunkReader struct {
	seq   BufferSequence
	pos   cursor
	count int64

	// last is the size of the chunk returned by the most recent call to
	// Next, or -1 if BackUp is not allowed.
	last int
}

// NewChunkReader returns a reader over seq. The reader does not copy seq.
func NewChunkReader(seq BufferSequence) *ChunkReader {
	return &ChunkReader{seq: seq, last: -1}
}

func (r *ChunkReader) done() bool {
	return r.pos.index >= r.seq.Len()
}

// Next returns the next unread chunk. The chunk aliases the sequence and
// is only valid until the next call on r. Next returns false and an empty
// chunk once the sequence has been consumed.
func (r *ChunkReader) Next() ([]byte, bool) {
	if r.done() {
		r.last = -1
		return nil, false
	}

	b := r.seq.At(r.pos.index)[r.pos.offset:]
	r.count += int64(len(b))
	r.pos = cursor{index: r.pos.index + 1}
	r.last = len(b)
	return b, true
}

// BackUp returns the last n bytes of the chunk returned by the most recent
// call to Next, so that the following Next starts with them. BackUp may be
// called at most once per chunk and panics if n is out of range.
func (r *ChunkReader) BackUp(n int) {
	if r.last < 0 {
		panic(errors.InternalError.With("back up called without a preceding call to next"))
	}
	if n < 0 || n > r.last {
		panic(errors.InternalError.WithFormat("cannot back up %d bytes of a %d byte chunk", n, r.last))
	}

	r.last = -1
	if n == 0 {
		return
	}

	r.pos.index--
	r.pos.offset = len(r.seq.At(r.pos.index)) - n
	r.count -= int64(n)
}

// Skip advances past n bytes without returning them. Skip returns false if
// the sequence ends before n bytes have been skipped, in which case the
// reader is left at the end.
func (r *ChunkReader) Skip(n int) bool {
	if n < 0 {
		panic(errors.InternalError.WithFormat("cannot skip %d bytes", n))
	}

	r.last = -1
	if r.done() {
		return false
	}

	for n > 0 {
		rem := len(r.seq.At(r.pos.index)) - r.pos.offset
		if n < rem {
			r.pos.offset += n
			r.count += int64(n)
			return true
		}

		r.count += int64(rem)
		n -= rem
		r.pos = cursor{index: r.pos.index + 1}
		if r.done() {
			return n == 0
		}
	}
	return true
}

// ByteCount returns the number of bytes handed out, net of backups.
func (r *ChunkReader) ByteCount() int64 {
	return r.count
}
