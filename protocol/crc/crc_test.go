// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package crc

import (
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint8
	}{
		{"Empty", nil, 0x00},
		{"CheckValue", []byte("123456789"), 0xF4},
		{"SingleZero", []byte{0x00}, 0x00},
		{"SingleOne", []byte{0x01}, 0x07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(%X) = 0x%02X, want 0x%02X", tt.data, got, tt.want)
			}
		})
	}
}

func TestCRC(t *testing.T) {
	var crc CRC
	crc.Reset()
	crc.PushBytes([]byte("1234"))
	crc.PushByte('5')
	crc.PushBytes([]byte("6789"))

	if crc.Value() != 0xF4 {
		t.Fatalf("crc expected %v, actual %v", 0xF4, crc.Value())
	}
	if crc.Value() != Checksum([]byte("123456789")) {
		t.Fatalf("streaming and one-shot checksums differ")
	}
}

func TestChecksum_SingleBitErrors(t *testing.T) {
	data := []byte{0x07, 0x03, 0x02, 0x10, 0x20}
	want := Checksum(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), data...)
			flipped[i] ^= 1 << bit
			if Checksum(flipped) == want {
				t.Errorf("flipping byte %d bit %d was not detected", i, bit)
			}
		}
	}
}
