// Copyright 2023 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ioutil

import (
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

// Discard is a [zerocopy.Sink] that discards everything committed to it.
// It recycles a single scratch block and only counts committed bytes, which
// makes it useful for measuring an encoding.
type Discard struct {
	block     []byte
	prep      int
	committed int64
}

var _ zerocopy.Sink = (*Discard)(nil)

func (d *Discard) Prepare(n int) []zerocopy.Region {
	if n < 0 {
		panic(errors.InternalError.WithFormat("cannot prepare %d bytes", n))
	}
	if len(d.block) < n {
		d.block = make([]byte, n)
	}
	d.prep = n
	return []zerocopy.Region{d.block[:n]}
}

func (d *Discard) Commit(n int) {
	if n < 0 || n > d.prep {
		panic(errors.InternalError.WithFormat("cannot commit %d bytes of %d prepared", n, d.prep))
	}
	d.prep -= n
	d.committed += int64(n)
}

// Size returns the number of bytes committed.
func (d *Discard) Size() int64 {
	return d.committed
}

func (d *Discard) Write(p []byte) (n int, err error) {
	d.prep = 0
	d.committed += int64(len(p))
	return len(p), nil
}
