// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

var (
	// ErrOperationNotSupported is returned when an operator is applied to a dtype it
	// doesn't support, typically a floating-point only operator on integers.
	// No element is changed when it is returned.
	ErrOperationNotSupported = errors.New("operation not supported")

	// ErrInvalidParameter is returned by operator constructors for malformed parameters.
	ErrInvalidParameter = errors.New("invalid operator parameter")

	// ErrIncompatibleLayout is returned by binary operators when the two traversals
	// don't visit the same number of elements in the same way.
	ErrIncompatibleLayout = errors.New("incompatible layouts")
)

func notSupported(name string, dtype dtypes.DType) error {
	return errors.Wrapf(ErrOperationNotSupported, "%s not available for dtype %s", name, dtype)
}

func invalidParameter(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}
