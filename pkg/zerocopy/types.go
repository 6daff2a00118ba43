// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package zerocopy adapts discontiguous buffers into chunked streams that a
// message codec can read from and write to without copying the payload.
//
// A [ChunkReader] walks an immutable [BufferSequence] and hands out slices
// that alias the sequence's memory. A [ChunkWriter] hands out slices of
// capacity prepared by a [Sink] and commits what the codec actually used.
// Neither adapter owns memory and neither is safe for concurrent use.
package zerocopy

import "io"

// A Region is a view into memory owned by someone else. Regions are never
// copied by this package.
type Region = []byte

// BufferSequence is an ordered, finite list of regions that together form
// one logical byte stream. It must not change while a [ChunkReader] is
// reading it.
type BufferSequence interface {
	// Len returns the number of regions.
	Len() int

	// At returns region i.
	At(i int) Region
}

// Sink is a growable destination that hands out writable capacity and
// accepts the used prefix of it.
type Sink interface {
	// Prepare reserves at least n bytes of writable capacity, possibly split
	// over several regions. Capacity that is outstanding from a previous
	// Prepare is abandoned.
	Prepare(n int) []Region

	// Commit appends the first n bytes of the outstanding prepared capacity
	// to the sink's readable data. The rest of the preparation remains
	// outstanding until the next call to Prepare.
	Commit(n int)
}

// Buffers is a [BufferSequence] backed by a slice of byte slices.
type Buffers [][]byte

var _ BufferSequence = Buffers(nil)
var _ io.WriterTo = Buffers(nil)

func (b Buffers) Len() int        { return len(b) }
func (b Buffers) At(i int) Region { return b[i] }

// Size returns the total number of bytes in all regions.
func (b Buffers) Size() int64 {
	var n int64
	for _, r := range b {
		n += int64(len(r))
	}
	return n
}

// WriteTo writes every region to w in order.
func (b Buffers) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, r := range b {
		n, err := w.Write(r)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
