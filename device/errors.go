// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrOpen wraps every failure to bring the device up.
	ErrOpen = errors.New("device: open failed")

	// ErrClosed is returned by loaders on a closed device.
	ErrClosed = errors.New("device: closed")
)
