// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package message

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

// Decoder reads frames from a [zerocopy.ChunkReader]. Call Next to read a
// frame header, then Decode or Skip to read or discard its payload.
//
// The input may end in a partial frame, for example when it is the content
// of a receive buffer. Consumed reports how much of the input is taken up by
// complete frames so the caller can discard exactly that much.
type Decoder struct {
	options
	rd       *zerocopy.Reader
	hdr      Header
	pending  bool
	consumed int64
}

func NewDecoder(cr *zerocopy.ChunkReader, opts ...Option) *Decoder {
	return &Decoder{
		options: newOptions(opts),
		rd:      zerocopy.NewReader(cr),
	}
}

// Next reads the next frame header. If the payload of the previous frame
// was neither decoded nor skipped, it is skipped first. Next returns
// [io.EOF] if the input ends on a frame boundary and
// [io.ErrUnexpectedEOF] if it ends within a header.
func (d *Decoder) Next() (Header, error) {
	if d.pending {
		err := d.Skip()
		if err != nil {
			return Header{}, err
		}
	}

	b, err := d.rd.Next(4)
	if err != nil {
		return Header{}, err
	}
	size, compressed, err := parseWord(b)
	if err != nil {
		d.logger.Debug("Rejected frame", "error", err)
		return Header{}, err
	}

	h := Header{Size: size, Compressed: compressed}
	b, err = d.rd.Next(h.Len() - 4)
	if err != nil {
		return Header{}, io.ErrUnexpectedEOF
	}
	h.Type = binary.BigEndian.Uint16(b)
	if compressed {
		h.UncompressedSize = int(binary.BigEndian.Uint32(b[2:]))
	}

	err = h.Check(d.max)
	if err != nil {
		d.logger.Debug("Rejected frame", "header", h, "error", err)
		return Header{}, err
	}

	d.hdr, d.pending = h, true
	return h, nil
}

func (d *Decoder) payload() ([]byte, error) {
	if !d.pending {
		return nil, errors.BadRequest.With("no frame header has been read")
	}
	d.pending = false
	b, err := d.rd.Next(d.hdr.Size)
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return b, nil
}

// Decode reads the payload of the current frame into msg. It returns
// [io.ErrUnexpectedEOF] if the input ends within the payload.
func (d *Decoder) Decode(msg Message) error {
	h := d.hdr
	b, err := d.payload()
	if err != nil {
		return err
	}

	if h.Compressed {
		n, err := snappy.DecodedLen(b)
		if err == nil && n != h.UncompressedSize {
			err = errors.BadRequest.WithFormat("header says %d bytes, payload decompresses to %d", h.UncompressedSize, n)
		}
		if err == nil {
			b, err = snappy.Decode(nil, b)
		}
		if err != nil {
			d.complete(h)
			d.logger.Debug("Rejected frame", "header", h, "error", err)
			return errors.EncodingError.WithCauseAndFormat(err, "decompress message type %d", h.Type)
		}
	}

	err = msg.Unmarshal(b)
	d.complete(h)
	if err != nil {
		d.logger.Debug("Rejected frame", "header", h, "error", err)
		return errors.EncodingError.WithCauseAndFormat(err, "unmarshal message type %d", h.Type)
	}
	return nil
}

// Skip discards the payload of the current frame.
func (d *Decoder) Skip() error {
	if !d.pending {
		return errors.BadRequest.With("no frame header has been read")
	}
	d.pending = false
	_, err := d.rd.Discard(d.hdr.Size)
	if err != nil {
		return io.ErrUnexpectedEOF
	}
	d.complete(d.hdr)
	return nil
}

// Payload returns the raw payload of the current frame. The result
// aliases the input if the payload is contiguous, and is still compressed
// if the frame is.
func (d *Decoder) Payload() ([]byte, error) {
	h := d.hdr
	b, err := d.payload()
	if err != nil {
		return nil, err
	}
	d.complete(h)
	return b, nil
}

func (d *Decoder) complete(h Header) {
	d.consumed = d.rd.ByteCount()
	observe(directionIn, h)
}

// Consumed returns the number of input bytes taken up by the frames that
// have been completely read or skipped.
func (d *Decoder) Consumed() int64 {
	return d.consumed
}

// ByteCount returns the number of input bytes read, including any partial
// frame.
func (d *Decoder) ByteCount() int64 {
	return d.rd.ByteCount()
}

// Release returns the unread part of the current chunk to the chunk reader.
func (d *Decoder) Release() {
	d.rd.Release()
}
