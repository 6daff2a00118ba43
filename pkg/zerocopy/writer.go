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

// DefaultBlockSize is the amount of capacity a [ChunkWriter] prepares at a
// time if no block size is given.
const DefaultBlockSize = 4096

// ChunkWriter exposes the capacity of a [Sink] one chunk at a time. The
// chunk returned by Next is committed when Next is called again, when
// BackUp is called, or when the writer is closed. Callers must close the
// writer on every path, including error paths, or the last chunk is lost.
type ChunkWriter struct {
	sink      Sink
	blockSize int
	prepared  []Region
	pos       cursor
	pending   int
	count     int64

	outstanding bool
	closed      bool
}

var _ io.Closer = (*ChunkWriter)(nil)

// NewChunkWriter returns a writer that prepares blockSize bytes of sink
// capacity at a time. If blockSize is not positive, [DefaultBlockSize] is
// used.
func NewChunkWriter(sink Sink, blockSize int) *ChunkWriter {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &ChunkWriter{sink: sink, blockSize: blockSize}
}

func (w *ChunkWriter) checkOpen(op string) {
	if w.closed {
		panic(errors.InternalError.WithFormat("%s called on a closed chunk writer", op))
	}
}

func (w *ChunkWriter) flush() {
	if !w.outstanding {
		return
	}
	if w.pending > 0 {
		w.sink.Commit(w.pending)
		w.count += int64(w.pending)
	}
	w.pending = 0
	w.outstanding = false
}

// Next commits the previous chunk, if any, and returns the next writable
// chunk. The chunk aliases sink memory and is only valid until the next
// call on w. The returned chunk is never empty.
func (w *ChunkWriter) Next() []byte {
	w.checkOpen("next")
	w.flush()

	for refilled := false; ; {
		for w.pos.index < len(w.prepared) {
			b := w.prepared[w.pos.index][w.pos.offset:]
			w.pos = cursor{index: w.pos.index + 1}
			if len(b) == 0 {
				continue
			}

			w.pending = len(b)
			w.outstanding = true
			return b
		}

		// A fresh preparation that yields nothing means the sink cannot
		// grow
		if refilled {
			panic(errors.InternalError.WithFormat("sink prepared no capacity for a %d byte request", w.blockSize))
		}
		w.prepared = w.sink.Prepare(w.blockSize)
		w.pos = cursor{}
		refilled = true
	}
}

// BackUp un-writes the last n bytes of the chunk returned by the most
// recent call to Next and commits the rest immediately. The bytes that were
// backed up are returned again, at the start of the next chunk. BackUp
// panics if no chunk is outstanding or n is out of range.
func (w *ChunkWriter) BackUp(n int) {
	w.checkOpen("back up")
	if !w.outstanding {
		panic(errors.InternalError.With("back up called without an outstanding chunk"))
	}
	if n < 0 || n > w.pending {
		panic(errors.InternalError.WithFormat("cannot back up %d bytes of a %d byte chunk", n, w.pending))
	}

	w.pending -= n
	w.flush()
	if n == 0 {
		return
	}

	w.pos.index--
	w.pos.offset = len(w.prepared[w.pos.index]) - n
}

// ByteCount returns the number of bytes committed to the sink. The chunk
// that is still outstanding is not included.
func (w *ChunkWriter) ByteCount() int64 {
	return w.count
}

// Close commits the outstanding chunk, if any, and releases the sink's
// prepared capacity. Close is idempotent.
func (w *ChunkWriter) Close() error {
	if w.closed {
		return nil
	}
	w.flush()
	w.prepared = nil
	w.closed = true
	return nil
}
