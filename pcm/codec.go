// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audmix/utils"
)

// encode writes samples from src into raw storage and returns how many
// samples were consumed.
func encode(raw []byte, src []float32, bitDepth int) int {
	size := bitDepth / 8
	n := min(len(raw)/size, len(src))

	switch bitDepth {
	case 8:
		for i := range n {
			raw[i] = utils.Float32ToUint8(src[i])
		}
	case 16:
		for i := range n {
			binary.LittleEndian.PutUint16(raw[2*i:], uint16(utils.Float32ToInt16(src[i])))
		}
	case 32:
		for i := range n {
			binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(src[i]))
		}
	}
	return n
}

// decode converts raw storage to float32 samples and returns how many were
// written to dst.
func decode(dst []float32, raw []byte, bitDepth int) int {
	size := bitDepth / 8
	n := min(len(raw)/size, len(dst))

	switch bitDepth {
	case 8:
		for i := range n {
			dst[i] = utils.Uint8ToFloat32(raw[i])
		}
	case 16:
		for i := range n {
			dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(raw[2*i:])))
		}
	case 32:
		for i := range n {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	}
	return n
}
