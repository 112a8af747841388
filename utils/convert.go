// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp limits x to [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Float32ToInt16 maps x to a signed 16-bit sample, the inverse of
// Int16ToFloat32 for every value that function produces.
func Float32ToInt16(x float32) int16 {
	return int16(quantize(x, 32768))
}

// quantize scales x by full and rounds to the nearest integer in
// [-full, full-1].
func quantize(x float32, full float64) int64 {
	v := math.Round(float64(Clamp(x)) * full)
	return int64(min(max(v, -full), full-1))
}

// Int16ToFloat32 maps a signed 16-bit sample to [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// Float32ToUint8 converts to unsigned 8-bit PCM, where 128 is silence.
func Float32ToUint8(x float32) uint8 {
	return uint8(quantize(x, 128) + 128)
}

// Uint8ToFloat32 maps unsigned 8-bit PCM to [-1, 1).
func Uint8ToFloat32(v uint8) float32 {
	return (float32(v) - 128.0) / 128.0
}

// Int32ToFloat32 maps a signed integer sample of the given bit depth to [-1, 1).
func Int32ToFloat32(v int32, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / 128.0
	case 16:
		return float32(v) / 32768.0
	case 24:
		return float32(v) / 8388608.0
	case 32:
		return float32(float64(v) / 2147483648.0)
	default:
		return float32(v) / 32768.0
	}
}

// Float32ToInt32 scales x to a signed integer of the given bit depth.
func Float32ToInt32(x float32, bitDepth int) int32 {
	switch bitDepth {
	case 8:
		return int32(quantize(x, 128))
	case 24:
		return int32(quantize(x, 8388608))
	case 32:
		return int32(quantize(x, 2147483648))
	default:
		return int32(quantize(x, 32768))
	}
}
