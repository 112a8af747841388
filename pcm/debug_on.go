// SPDX-License-Identifier: EPL-2.0

//go:build audmixdebug

package pcm

const debug = true
