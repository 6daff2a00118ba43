// Copyright 2024 The Accumulate Authors
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

// DefaultSegmentSize is the segment size used by [NewMultiBuffer] when none
// is given.
const DefaultSegmentSize = 1024

// MultiBuffer is a growable buffer made of fixed-size segments. Data is never
// moved once written, so a preparation larger than the free space in the
// last segment spans several regions, and the readable data is usually a
// multi-region [zerocopy.BufferSequence].
//
// Offsets below are relative to the start of the first segment.
type MultiBuffer struct {
	size  int
	segs  [][]byte
	start int // first readable byte
	end   int // one past the last readable byte
	prep  int // outstanding prepared bytes, starting at end
}

var _ zerocopy.Sink = (*MultiBuffer)(nil)
var _ io.ReaderFrom = (*MultiBuffer)(nil)
var _ io.WriterTo = (*MultiBuffer)(nil)

// NewMultiBuffer returns an empty buffer with the given segment size. If the
// size is not positive, [DefaultSegmentSize] is used.
func NewMultiBuffer(segmentSize int) *MultiBuffer {
	if segmentSize <= 0 {
		segmentSize = DefaultSegmentSize
	}
	return &MultiBuffer{size: segmentSize}
}

// Len returns the number of readable bytes.
func (b *MultiBuffer) Len() int {
	return b.end - b.start
}

// regions returns the slices of the segments that cover [lo, hi).
func (b *MultiBuffer) regions(lo, hi int) []zerocopy.Region {
	var r []zerocopy.Region
	for lo < hi {
		i, off := lo/b.size, lo%b.size
		n := b.size - off
		if n > hi-lo {
			n = hi - lo
		}
		r = append(r, b.segs[i][off:off+n])
		lo += n
	}
	return r
}

// Data returns the readable data. The regions alias the buffer and remain
// valid until the next call to Consume.
func (b *MultiBuffer) Data() zerocopy.Buffers {
	return b.regions(b.start, b.end)
}

// Bytes returns a copy of the readable data.
func (b *MultiBuffer) Bytes() []byte {
	v := make([]byte, 0, b.Len())
	for _, r := range b.Data() {
		v = append(v, r...)
	}
	return v
}

// Prepare returns at least n bytes of writable capacity following the
// readable data. The capacity is extended to the end of the segment it
// finishes in, so the result may be larger than n.
func (b *MultiBuffer) Prepare(n int) []zerocopy.Region {
	b.prep = 0
	if n < 0 {
		panic(errors.InternalError.WithFormat("cannot prepare %d bytes", n))
	}

	limit := b.end + n
	if r := limit % b.size; r != 0 {
		limit += b.size - r
	}
	for len(b.segs)*b.size < limit {
		b.segs = append(b.segs, make([]byte, b.size))
	}

	b.prep = limit - b.end
	return b.regions(b.end, limit)
}

func (b *MultiBuffer) Commit(n int) {
	if n < 0 || n > b.prep {
		panic(errors.InternalError.WithFormat("cannot commit %d bytes of %d prepared", n, b.prep))
	}
	b.end += n
	b.prep -= n
}

// Consume discards the first n readable bytes, or all of them if n is
// larger than Len. Outstanding prepared capacity is abandoned. Segments
// that become empty are recycled.
func (b *MultiBuffer) Consume(n int) {
	b.prep = 0
	if n <= 0 {
		return
	}
	if n > b.Len() {
		n = b.Len()
	}
	b.start += n

	k := b.start / b.size
	if b.start == b.end {
		// Everything is consumed, rewind to the first segment
		b.start, b.end = 0, 0
		return
	}
	if k == 0 {
		return
	}

	segs := make([][]byte, 0, len(b.segs))
	segs = append(segs, b.segs[k:]...)
	segs = append(segs, b.segs[:k]...)
	b.segs = segs
	b.start -= k * b.size
	b.end -= k * b.size
}

// ReadFrom reads from r until EOF, appending to the readable data.
func (b *MultiBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		region := b.Prepare(1)[0]
		n, err := r.Read(region)
		b.Commit(n)
		total += int64(n)
		switch {
		case err == io.EOF:
			return total, nil
		case err != nil:
			return total, err
		}
	}
}

// ReadOnce performs a single read of up to n bytes from r, the way a
// socket read fills a receive buffer. It returns io.EOF when r does.
func (b *MultiBuffer) ReadOnce(r io.Reader, n int) (int, error) {
	if n <= 0 {
		n = b.size
	}
	var total int
	for _, region := range b.Prepare(n) {
		if len(region) > n-total {
			region = region[:n-total]
		}
		m, err := r.Read(region)
		b.Commit(m)
		total += m
		if err == io.EOF && total > 0 {
			// Report EOF on the next call
			return total, nil
		}
		if err != nil || m < len(region) || total == n {
			return total, err
		}
	}
	return total, nil
}

// WriteTo writes the readable data to w and consumes what was written.
func (b *MultiBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := b.Data().WriteTo(w)
	b.Consume(int(n))
	return n, err
}

func (b *MultiBuffer) Write(v []byte) (int, error) {
	m := 0
	for _, r := range b.Prepare(len(v)) {
		m += copy(r, v[m:])
		if m == len(v) {
			break
		}
	}
	b.Commit(len(v))
	return len(v), nil
}
