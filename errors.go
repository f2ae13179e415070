// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bincodec

import "go.e43.eu/bincodec/internal/errors"

// Recoverable errors. These are returned from Decode (and, for ErrCastFailed,
// from Encode) and should be matched with errors.Is, as they generally arrive
// wrapped in a FieldError or a more detailed error type.
const (
	ErrCheckFailed  = errors.ErrCheckFailed
	ErrCastFailed   = errors.ErrCastFailed
	ErrInvalidText  = errors.ErrInvalidText
	ErrNotASCII     = errors.ErrNotASCII
	ErrInvalidValue = errors.ErrInvalidValue
	ErrTrailingData = errors.ErrTrailingData
)

// ErrPrecondition is matched by the *PreconditionError a codec panics with
// when asked to encode a value which contradicts the format. It is never
// returned.
const ErrPrecondition = errors.ErrPrecondition

type (
	// CheckError reports a value read which the format does not permit
	CheckError = errors.CheckError

	// CastError reports a failed TryCast conversion
	CastError = errors.CastError

	// ConversionError reports code units which are not valid text
	ConversionError = errors.ConversionError

	// FieldError locates an error within a record
	FieldError = errors.FieldError

	// PreconditionError is the value encoders panic with
	PreconditionError = errors.PreconditionError
)
