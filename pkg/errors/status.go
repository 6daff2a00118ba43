// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "strconv"

// Status is a status code. Values follow HTTP conventions.
type Status uint64

const (
	// OK means the operation succeeded.
	OK Status = 200

	// BadRequest means the input (a frame, a header, a flag) is malformed.
	BadRequest Status = 400

	// EncodingError means a payload could not be marshalled, unmarshalled,
	// compressed, or decompressed.
	EncodingError Status = 409

	// InternalError means a caller broke an API contract or an invariant was
	// violated.
	InternalError Status = 500

	// UnknownError is used for errors that have not been classified.
	UnknownError Status = 520
)

var statusNames = map[Status]string{
	OK:            "OK",
	BadRequest:    "BadRequest",
	EncodingError: "EncodingError",
	InternalError: "InternalError",
	UnknownError:  "UnknownError",
}

// String returns the name of the status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Status(" + strconv.FormatUint(uint64(s), 10) + ")"
}

// Success returns true if the status represents success.
func (s Status) Success() bool { return s < 300 }

// IsKnownError returns true if the status is non-zero and not UnknownError.
func (s Status) IsKnownError() bool { return s != 0 && s != UnknownError }

// IsClientError returns true if the status is a client error.
func (s Status) IsClientError() bool { return s >= 400 && s < 500 }

// IsServerError returns true if the status is a server error.
func (s Status) IsServerError() bool { return s >= 500 }

// Error implements error.
func (s Status) Error() string { return s.String() }

// Skip skips N frames when locating the call site.
func (s Status) Skip(n int) Factory {
	return Factory{Skip: n, Code: s}
}

func (s Status) Wrap(err error) error {
	return s.Skip(1).Wrap(err)
}

func (s Status) With(v ...interface{}) *Error {
	return s.Skip(1).With(v...)
}

func (s Status) WithFormat(format string, args ...interface{}) *Error {
	return s.Skip(1).WithFormat(format, args...)
}

func (s Status) WithCauseAndFormat(cause error, format string, args ...interface{}) *Error {
	return s.Skip(1).WithCauseAndFormat(cause, format, args...)
}
