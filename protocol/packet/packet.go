// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package packet implements the request/response packet layout of the servo
// link and the pure functions that move packets in and out of byte buffers.
//
// Request on the wire:
//
//	[receiver_id][operation_code][payload_size][header_crc][payload_crc][payload...]
//
// Response on the wire:
//
//	[response_code][payload_size][header_crc][payload_crc][payload...]
//
// The header CRC covers the header bytes before it; the payload CRC covers
// the payload alone. Both are CRC-8 (see package crc).
package packet

import (
	"errors"
	"fmt"

	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/crc"
)

var (
	ErrPayloadTooLarge = errors.New("packet: payload too large")
	ErrShortBuffer     = errors.New("packet: buffer too small")
)

type RequestHeader struct {
	ReceiverID    uint8
	OperationCode protocol.OpCode
	PayloadSize   uint8
	HeaderCRC     uint8
}

type RequestPacket struct {
	Header     RequestHeader
	PayloadCRC uint8
	Payload    []byte
}

type ResponseHeader struct {
	Code        protocol.ResponseCode
	PayloadSize uint8
	HeaderCRC   uint8
}

type ResponsePacket struct {
	Header     ResponseHeader
	PayloadCRC uint8
	Payload    []byte
}

// NewRequest builds a request for payload. The payload is not copied.
func NewRequest(receiverID uint8, opCode protocol.OpCode, payload []byte) (RequestPacket, error) {
	if len(payload) > MaxPayloadSize {
		return RequestPacket{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	p := RequestPacket{
		Header: RequestHeader{
			ReceiverID:    receiverID,
			OperationCode: opCode,
			PayloadSize:   uint8(len(payload)),
		},
		Payload: payload,
	}
	return p.Seal(), nil
}

// NewResponse builds a response for payload. The payload is not copied.
func NewResponse(code protocol.ResponseCode, payload []byte) (ResponsePacket, error) {
	if len(payload) > MaxPayloadSize {
		return ResponsePacket{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	p := ResponsePacket{
		Header: ResponseHeader{
			Code:        code,
			PayloadSize: uint8(len(payload)),
		},
		Payload: payload,
	}
	return p.Seal(), nil
}

// Seal returns p with both CRC fields computed from its current contents.
func (p RequestPacket) Seal() RequestPacket {
	p.Header.HeaderCRC = requestHeaderCRC(p.Header)
	p.PayloadCRC = crc.Checksum(p.Payload)
	return p
}

// Seal returns p with both CRC fields computed from its current contents.
func (p ResponsePacket) Seal() ResponsePacket {
	p.Header.HeaderCRC = responseHeaderCRC(p.Header)
	p.PayloadCRC = crc.Checksum(p.Payload)
	return p
}

// Size is the number of bytes p occupies on the wire.
func (p RequestPacket) Size() int {
	return RequestHeaderWithPayloadCRCSize + len(p.Payload)
}

// Size is the number of bytes p occupies on the wire.
func (p ResponsePacket) Size() int {
	return ResponseHeaderWithPayloadCRCSize + len(p.Payload)
}

// Data converts a received response into what the master returns to callers.
func (p ResponsePacket) Data() protocol.ResponseData {
	return protocol.ResponseData{Code: p.Header.Code, Payload: p.Payload}
}

func requestHeaderCRC(h RequestHeader) uint8 {
	return crc.Checksum([]byte{h.ReceiverID, byte(h.OperationCode), h.PayloadSize})
}

func responseHeaderCRC(h ResponseHeader) uint8 {
	return crc.Checksum([]byte{byte(h.Code), h.PayloadSize})
}
