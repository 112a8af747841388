// SPDX-License-Identifier: EPL-2.0

//go:build headless

package main

import (
	"github.com/ik5/audmix/backend/headless"
	"github.com/ik5/audmix/device"
)

var newBackend = func() device.Backend { return headless.New() }
