// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc implements the CRC-8 used to protect packet headers and payloads.
//
// The polynomial is 0x07 with a zero initial value and no reflection
// (CRC-8/ATM, also known as CRC-8-CCITT). Requests and responses use the
// same parameters.
package crc

import "github.com/sigurn/crc8"

var table = crc8.MakeTable(crc8.CRC8)

// Checksum returns the CRC-8 of data.
func Checksum(data []byte) uint8 {
	return crc8.Checksum(data, table)
}

// CRC is a streaming CRC-8 accumulator.
type CRC struct {
	value uint8
}

// Reset clears the accumulator.
func (c *CRC) Reset() *CRC {
	c.value = crc8.Init(table)
	return c
}

// PushByte feeds a single byte.
func (c *CRC) PushByte(b byte) *CRC {
	c.value = crc8.Update(c.value, []byte{b}, table)
	return c
}

// PushBytes feeds data.
func (c *CRC) PushBytes(data []byte) *CRC {
	c.value = crc8.Update(c.value, data, table)
	return c
}

// Value returns the checksum of everything pushed since the last Reset.
func (c *CRC) Value() uint8 {
	return crc8.Complete(c.value, table)
}
