// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package message

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame codec metrics
var (
	mMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accumulate",
		Subsystem: "overlay",
		Name:      "messages_total",
		Help:      "Number of frames encoded or decoded",
	}, []string{"direction", "type"})
	mBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accumulate",
		Subsystem: "overlay",
		Name:      "bytes_total",
		Help:      "Number of frame bytes encoded or decoded, including headers",
	}, []string{"direction", "type"})
	mCompressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accumulate",
		Subsystem: "overlay",
		Name:      "compressed_total",
		Help:      "Number of compressed frames encoded or decoded",
	}, []string{"direction"})
)

const (
	directionIn  = "in"
	directionOut = "out"
)

func observe(direction string, h Header) {
	typ := strconv.FormatUint(uint64(h.Type), 10)
	mMessages.WithLabelValues(direction, typ).Inc()
	mBytes.WithLabelValues(direction, typ).Add(float64(h.FrameSize()))
	if h.Compressed {
		mCompressed.WithLabelValues(direction).Inc()
	}
}
