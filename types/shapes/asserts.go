/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package shapes

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// UncheckedAxis can be used in CheckDims or AssertDims functions for an axis
// whose dimension doesn't matter.
const UncheckedAxis = int(-1)

// HasLayout is an interface for objects that have an associated Layout.
type HasLayout interface {
	Layout() Layout
}

// Validate checks that the layout is well-formed: a valid dtype, one stride per axis,
// and no negative dimension, stride or offset.
func (l Layout) Validate() error {
	if !l.Ok() {
		return errors.Errorf("layout (%s) has an invalid dtype", l)
	}
	if len(l.Strides) != l.Rank() {
		return errors.Errorf("layout (%s) has %d strides for rank %d", l, len(l.Strides), l.Rank())
	}
	if l.Offset < 0 {
		return errors.Errorf("layout (%s) has negative offset %d", l, l.Offset)
	}
	for axis, dim := range l.Dimensions {
		if dim < 0 {
			return errors.Errorf("layout (%s) axis %d has negative dimension %d", l, axis, dim)
		}
		if l.Strides[axis] < 0 {
			return errors.Errorf("layout (%s) axis %d has negative stride %d, not supported", l, axis, l.Strides[axis])
		}
	}
	return nil
}

// AssertValid panics if Validate returns an error.
func (l Layout) AssertValid() {
	if err := l.Validate(); err != nil {
		panic(fmt.Sprintf("shapes.AssertValid(): %+v", err))
	}
}

// CheckDims checks that the layout has the given dimensions and rank. A value of -1 in
// dimensions means it can take any value and is not checked.
//
// It returns an error if the rank is different or if any of the dimensions don't match.
func (l Layout) CheckDims(dimensions ...int) error {
	if l.Rank() != len(dimensions) {
		return errors.Errorf("layout (%s) has incompatible rank %d (wanted %d)", l, l.Rank(), len(dimensions))
	}
	for ii, wantDim := range dimensions {
		if wantDim != UncheckedAxis && l.Dimensions[ii] != wantDim {
			return errors.Errorf("layout (%s) axis %d has dimension %d, wanted %d (dimensions wanted=%v)", l, ii, l.Dimensions[ii], wantDim, dimensions)
		}
	}
	return nil
}

// Check that the layout has the given dtype, dimensions and rank. A value of -1 in
// dimensions means it can take any value and is not checked.
func (l Layout) Check(dtype dtypes.DType, dimensions ...int) error {
	if dtype != l.DType {
		return errors.Errorf("layout (%s) has incompatible dtype %s (wanted %s)", l, l.DType, dtype)
	}
	return l.CheckDims(dimensions...)
}

// CheckDims checks that the shaped object has the given dimensions and rank.
func CheckDims(shaped HasLayout, dimensions ...int) error {
	return shaped.Layout().CheckDims(dimensions...)
}

// CheckFits returns an error if the layout addresses positions beyond storageLen.
func (l Layout) CheckFits(storageLen int) error {
	if extent := l.Extent(); extent > storageLen {
		return errors.Errorf("layout (%s) needs a storage of at least %d elements, got %d", l, extent, storageLen)
	}
	return nil
}
