// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import "errors"

// Link-layer error taxonomy. None of these are fatal to a control loop:
// callers log and keep looping.
var (
	// ErrMalformedFrame marks input without the exact header, without a
	// terminator, or with an unparseable sequence field. Malformed input
	// is dropped whole, never partially interpreted.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrFrameTooLong marks an encode request that would exceed the
	// radio's maximum packet size. The frame is rejected before send.
	ErrFrameTooLong = errors.New("frame exceeds maximum size")
)
