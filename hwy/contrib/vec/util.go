// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Raw buffers are little-endian IEEE 754 regardless of the host byte order.

// AppendFloat32s appends the encoding of src to dst and returns the extended
// slice.
func AppendFloat32s(dst []byte, src []float32) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// AppendFloat64s appends the encoding of src to dst and returns the extended
// slice.
func AppendFloat64s(dst []byte, src []float64) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	}
	return dst
}

// EncodeFloat32s writes src into dst, which must hold 4*len(src) bytes.
func EncodeFloat32s(dst []byte, src []float32) {
	mustFit("dst", len(dst), len(src)*4)
	AppendFloat32s(dst[:0], src)
}

// EncodeFloat64s writes src into dst, which must hold 8*len(src) bytes.
func EncodeFloat64s(dst []byte, src []float64) {
	mustFit("dst", len(dst), len(src)*8)
	AppendFloat64s(dst[:0], src)
}

// DecodeFloat32s fills dst from src, which must hold 4*len(dst) bytes.
func DecodeFloat32s(src []byte, dst []float32) {
	mustFit("src", len(src), len(dst)*4)
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
}

// DecodeFloat64s fills dst from src, which must hold 8*len(dst) bytes.
func DecodeFloat64s(src []byte, dst []float64) {
	mustFit("src", len(src), len(dst)*8)
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:]))
	}
}

func mustFit(name string, have, need int) {
	if have < need {
		panic(fmt.Sprintf("vec: %s is too short: %d bytes, need %d", name, have, need))
	}
}
