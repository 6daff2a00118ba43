// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package zerocopy

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderRead(t *testing.T) {
	r := NewReader(NewChunkReader(buffers("abc", "", "de", "fgh")))
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "abcdefgh", string(b))
	require.Equal(t, int64(8), r.ByteCount())

	_, err = r.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderUvarintAcrossRegions(t *testing.T) {
	var v [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(v[:], 1<<40+7)
	seq := Buffers{v[:2], v[2:3], v[3:n]}

	r := NewReader(NewChunkReader(seq))
	u, err := binary.ReadUvarint(r)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40+7), u)
	require.Equal(t, int64(n), r.ByteCount())
}

func TestReaderNext(t *testing.T) {
	seq := buffers("abcd", "efgh")
	r := NewReader(NewChunkReader(seq))

	b, err := r.Next(3)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
	require.Same(t, &seq[0][0], &b[0], "contiguous reads alias the sequence")

	b, err = r.Next(3)
	require.NoError(t, err)
	require.Equal(t, "def", string(b))
	require.NotSame(t, &seq[0][3], &b[0], "straddling reads are copied")

	_, err = r.Next(3)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = r.Next(1)
	require.ErrorIs(t, err, io.EOF)

	b, err = r.Next(0)
	require.NoError(t, err)
	require.Empty(t, b)
}

func TestReaderDiscard(t *testing.T) {
	r := NewReader(NewChunkReader(buffers("abcd", "ef", "ghij")))
	c, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), c)

	n, err := r.Discard(2)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = r.Discard(4)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, int64(7), r.ByteCount())

	c, err = r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('h'), c)

	n, err = r.Discard(5)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 2, n)
	require.Equal(t, int64(10), r.ByteCount())
}

func TestReaderRelease(t *testing.T) {
	cr := NewChunkReader(buffers("abcde", "fg"))
	r := NewReader(cr)
	b := make([]byte, 2)
	_, err := io.ReadFull(r, b)
	require.NoError(t, err)

	r.Release()
	require.Equal(t, int64(2), cr.ByteCount())
	requireNext(t, cr, "cde")
	requireNext(t, cr, "fg")

	// Releasing with nothing buffered is a no-op
	r.Release()
	requireEnd(t, cr)
}

func TestWriterWrite(t *testing.T) {
	sink := &recordingSink{regionSize: 4}
	w := NewWriter(NewChunkWriter(sink, 8))

	n, err := w.Write([]byte("hello, world"))
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.Equal(t, "hello, w", string(sink.data), "the chunk being filled is not committed")

	require.NoError(t, w.WriteByte('!'))
	require.Equal(t, "hello, world", string(sink.data))

	require.NoError(t, w.Flush())
	require.Equal(t, "hello, world!", string(sink.data))
	require.Equal(t, int64(13), w.ByteCount())

	// Writing after a flush continues where the flush left off
	_, err = w.Write([]byte("??"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, "hello, world!??", string(sink.data))
}

func TestWriterAlloc(t *testing.T) {
	sink := &recordingSink{regionSize: 8}
	w := NewWriter(NewChunkWriter(sink, 8))

	b := w.Alloc(5)
	require.Len(t, b, 5)
	copy(b, "abcde")

	require.Nil(t, w.Alloc(4), "does not fit in the rest of the chunk")
	_, err := w.Write([]byte("fgh"))
	require.NoError(t, err)

	b = w.Alloc(4)
	require.Len(t, b, 4)
	copy(b, "ijkl")

	require.Nil(t, w.Alloc(9), "larger than a chunk")
	require.Nil(t, w.Alloc(0))

	require.NoError(t, w.Close())
	require.Equal(t, "abcdefghijkl", string(sink.data))
}

func TestWriterUnwrite(t *testing.T) {
	sink := &recordingSink{regionSize: 8}
	w := NewWriter(NewChunkWriter(sink, 8))
	require.False(t, w.Unwrite(1), "nothing written")

	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	b := w.Alloc(4)
	copy(b, "XXXX")
	require.True(t, w.Unwrite(4))
	require.False(t, w.Unwrite(4), "only three bytes remain in the chunk")

	_, err = w.Write([]byte("de"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, "abcde", string(sink.data))
}

func TestWriterCloseWithoutWrites(t *testing.T) {
	sink := &recordingSink{regionSize: 8}
	w := NewWriter(NewChunkWriter(sink, 8))
	require.NoError(t, w.Close())
	require.Empty(t, sink.prepares)
	require.Empty(t, sink.commits)
}
