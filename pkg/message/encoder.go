// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package message

import (
	"github.com/golang/snappy"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

// Encoder writes frames to a [zerocopy.ChunkWriter]. When a frame fits in
// the current chunk its payload is marshalled directly into sink memory.
// The encoder must be closed.
type Encoder struct {
	options
	wr    *zerocopy.Writer
	count int64

	// Scratch space for frames that cannot be marshalled in place
	raw  []byte
	comp []byte
}

func NewEncoder(cw *zerocopy.ChunkWriter, opts ...Option) *Encoder {
	return &Encoder{
		options: newOptions(opts),
		wr:      zerocopy.NewWriter(cw),
	}
}

// Encode writes a frame containing msg.
func (e *Encoder) Encode(typ uint16, msg Message) error {
	size := msg.Size()
	h := Header{Type: typ, Size: size}
	err := h.Check(e.max)
	if err != nil {
		e.logger.Error("Refusing to encode message", "type", typ, "size", size, "error", err)
		return err
	}

	if e.threshold > 0 && size >= e.threshold {
		ok, err := e.encodeCompressed(h, msg)
		if ok || err != nil {
			return err
		}

		// e.raw already holds the marshalled payload
		if b := e.wr.Alloc(h.FrameSize()); b != nil {
			h.Put(b)
			copy(b[h.Len():], e.raw)
			e.done(h)
			return nil
		}
		e.write(h, e.raw)
		return nil
	}

	// Marshal in place if the frame fits in the current chunk
	if b := e.wr.Alloc(h.FrameSize()); b != nil {
		err = marshal(msg, b[h.Len():])
		if err != nil {
			e.wr.Unwrite(len(b))
			return err
		}
		h.Put(b)
		e.done(h)
		return nil
	}

	e.raw = grow(e.raw, size)
	err = marshal(msg, e.raw)
	if err != nil {
		return err
	}
	e.write(h, e.raw)
	return nil
}

// encodeCompressed writes a compressed frame unless compression does not
// shrink the payload, in which case it returns false.
func (e *Encoder) encodeCompressed(h Header, msg Message) (bool, error) {
	e.raw = grow(e.raw, h.Size)
	err := marshal(msg, e.raw)
	if err != nil {
		return false, err
	}

	e.comp = snappy.Encode(e.comp[:cap(e.comp)], e.raw)
	if len(e.comp) >= h.Size {
		e.logger.Debug("Compression does not help", "type", h.Type, "size", h.Size, "compressed", len(e.comp))
		return false, nil
	}

	h.Compressed = true
	h.UncompressedSize = h.Size
	h.Size = len(e.comp)
	e.write(h, e.comp)
	return true, nil
}

func (e *Encoder) write(h Header, payload []byte) {
	var buf [CompressedHeaderSize]byte
	h.Put(buf[:])
	_, _ = e.wr.Write(buf[:h.Len()])
	_, _ = e.wr.Write(payload)
	e.done(h)
}

func (e *Encoder) done(h Header) {
	e.count += int64(h.FrameSize())
	observe(directionOut, h)
}

func marshal(msg Message, b []byte) error {
	n, err := msg.MarshalToSizedBuffer(b)
	if err != nil {
		return errors.EncodingError.WithFormat("marshal %T: %w", msg, err)
	}
	if n != len(b) {
		return errors.EncodingError.WithFormat("marshal %T: wrote %d bytes, expected %d", msg, n, len(b))
	}
	return nil
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

// ByteCount returns the number of bytes encoded.
func (e *Encoder) ByteCount() int64 {
	return e.count
}

// Flush commits every encoded frame to the sink.
func (e *Encoder) Flush() error {
	return e.wr.Flush()
}

// Close flushes the encoder and closes the chunk writer.
func (e *Encoder) Close() error {
	return e.wr.Close()
}
