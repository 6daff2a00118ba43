// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package message frames gogoproto messages over zero-copy chunk streams.
package message

import (
	"log/slog"

	"github.com/cosmos/gogoproto/proto"
)

// Message is a gogoproto generated message.
type Message interface {
	proto.Message
	Size() int
	MarshalToSizedBuffer([]byte) (int, error)
	Unmarshal([]byte) error
}

type options struct {
	logger    *slog.Logger
	threshold int
	max       int
}

// Option configures an [Encoder] or [Decoder].
type Option func(*options)

// WithLogger sets the logger used to report rejected frames.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCompression enables snappy compression of payloads of at least
// threshold bytes. A threshold of zero or less disables compression.
func WithCompression(threshold int) Option {
	return func(o *options) { o.threshold = threshold }
}

// WithMaxSize lowers the payload size limit below [MaxMessageSize].
func WithMaxSize(max int) Option {
	return func(o *options) { o.max = max }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("module", "message")
	if o.max <= 0 || o.max > MaxMessageSize {
		o.max = MaxMessageSize
	}
	return o
}
