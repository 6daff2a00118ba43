// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package message

import (
	"encoding/binary"
	"fmt"

	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
)

const (
	// HeaderSize is the size of an uncompressed frame header.
	HeaderSize = 6

	// CompressedHeaderSize is the size of a compressed frame header.
	CompressedHeaderSize = 10

	// MaxMessageSize is the largest payload a frame header can describe.
	MaxMessageSize = sizeMask

	sizeMask       = 1<<26 - 1
	flagCompressed = 1 << 31
	flagsReserved  = 0x1F << 26
)

// Header is the header of an overlay frame. The first word carries the
// payload size in its low 26 bits and flags in the rest, followed by the
// message type. A compressed frame is followed by the size of the payload
// after decompression.
type Header struct {
	Type       uint16
	Size       int
	Compressed bool

	// UncompressedSize is only meaningful if the frame is compressed.
	UncompressedSize int
}

// Len returns the encoded length of the header.
func (h Header) Len() int {
	if h.Compressed {
		return CompressedHeaderSize
	}
	return HeaderSize
}

// FrameSize returns the length of the header and payload.
func (h Header) FrameSize() int {
	return h.Len() + h.Size
}

func (h Header) String() string {
	if h.Compressed {
		return fmt.Sprintf("type %d, %d bytes (%d uncompressed)", h.Type, h.Size, h.UncompressedSize)
	}
	return fmt.Sprintf("type %d, %d bytes", h.Type, h.Size)
}

// Check validates the header against the given size limit.
func (h Header) Check(max int) error {
	if max <= 0 || max > MaxMessageSize {
		max = MaxMessageSize
	}
	if h.Size < 0 || h.Size > max {
		return errors.BadRequest.WithFormat("message type %d: size %d exceeds the limit of %d", h.Type, h.Size, max)
	}
	if !h.Compressed {
		return nil
	}
	if h.UncompressedSize < 0 || h.UncompressedSize > max {
		return errors.BadRequest.WithFormat("message type %d: uncompressed size %d exceeds the limit of %d", h.Type, h.UncompressedSize, max)
	}
	return nil
}

// Put encodes the header into b, which must be at least Len bytes long.
func (h Header) Put(b []byte) {
	word := uint32(h.Size) & sizeMask
	if h.Compressed {
		word |= flagCompressed
	}
	binary.BigEndian.PutUint32(b, word)
	binary.BigEndian.PutUint16(b[4:], h.Type)
	if h.Compressed {
		binary.BigEndian.PutUint32(b[6:], uint32(h.UncompressedSize))
	}
}

// parseWord decodes the first word of a header, returning the payload size
// and whether the frame is compressed.
func parseWord(b []byte) (int, bool, error) {
	word := binary.BigEndian.Uint32(b)
	if word&flagsReserved != 0 {
		return 0, false, errors.BadRequest.WithFormat("invalid frame flags %#x", word>>26)
	}
	return int(word & sizeMask), word&flagCompressed != 0, nil
}
