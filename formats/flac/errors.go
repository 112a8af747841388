// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

// ErrInvalidStreamInfo is returned when STREAMINFO declares no channels or
// no sample rate.
var ErrInvalidStreamInfo = errors.New("invalid FLAC stream info")
