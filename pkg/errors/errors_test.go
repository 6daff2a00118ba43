// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	err := BadRequest.WithFormat("frame of %d bytes", 10)
	require.Equal(t, BadRequest, Code(err))
	require.True(t, Is(err, BadRequest))
	require.False(t, Is(err, EncodingError))
	require.Equal(t, "frame of 10 bytes", err.Error())

	require.Equal(t, InternalError, Code(InternalError))
	require.Equal(t, Status(0), Code(io.EOF))
}

func TestWrapKeepsSentinel(t *testing.T) {
	err := EncodingError.WithFormat("read payload: %w", io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, EncodingError, Code(err))
	require.Equal(t, "read payload: unexpected EOF", err.Error())

	err2 := UnknownError.Wrap(err)
	require.Equal(t, EncodingError, Code(err2))
	require.ErrorIs(t, err2, io.ErrUnexpectedEOF)

	require.NoError(t, UnknownError.Wrap(nil))
}

func TestWithCauseAndFormat(t *testing.T) {
	cause := BadRequest.With("bad header")
	err := UnknownError.WithCauseAndFormat(cause, "decode frame %d", 3)
	require.Equal(t, BadRequest, Code(err))
	require.Same(t, cause, err.Cause)
}

func TestPrintCallStack(t *testing.T) {
	err := InternalError.With("broken")
	require.NotEmpty(t, err.CallStack)
	require.Contains(t, err.CallStack[0].FuncName, "TestPrintCallStack")

	s := fmt.Sprintf("%+v", err)
	require.True(t, strings.HasPrefix(s, "broken\n"), s)
	require.Contains(t, s, "errors_test.go")
	require.Equal(t, "broken", fmt.Sprintf("%v", err))
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "BadRequest", BadRequest.String())
	require.Equal(t, "Status(42)", Status(42).String())
	require.True(t, OK.Success())
	require.True(t, BadRequest.IsClientError())
	require.True(t, InternalError.IsServerError())
	require.False(t, UnknownError.IsKnownError())
}
