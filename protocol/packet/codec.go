// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package packet

import (
	"fmt"

	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/crc"
)

// Serialization and deserialization preconditions are programming errors:
// callers size their buffers to the max packet size and only deserialize
// once enough bytes arrived. A violation panics with ErrShortBuffer or
// ErrPayloadTooLarge.

// SerializeRequest writes p into dst, computing both CRCs, and returns the
// used prefix of dst. PayloadSize is taken from len(p.Payload).
func SerializeRequest(p RequestPacket, dst []byte) []byte {
	n := len(p.Payload)
	if n > MaxPayloadSize {
		panic(fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n))
	}
	if len(dst) < RequestHeaderWithPayloadCRCSize+n {
		panic(fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, RequestHeaderWithPayloadCRCSize+n, len(dst)))
	}

	dst[offReceiverID] = p.Header.ReceiverID
	dst[offOperationCode] = byte(p.Header.OperationCode)
	dst[offReqPayloadLen] = uint8(n)
	dst[offReqHeaderCRC] = crc.Checksum(dst[:RequestHeaderSizeWithoutCRC])
	copy(dst[RequestPayloadStartOffset:], p.Payload)
	dst[offReqPayloadCRC] = crc.Checksum(dst[RequestPayloadStartOffset : RequestPayloadStartOffset+n])

	return dst[:RequestHeaderWithPayloadCRCSize+n]
}

// SerializeResponse is the response counterpart of SerializeRequest.
func SerializeResponse(p ResponsePacket, dst []byte) []byte {
	n := len(p.Payload)
	if n > MaxPayloadSize {
		panic(fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n))
	}
	if len(dst) < ResponseHeaderWithPayloadCRCSize+n {
		panic(fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, ResponseHeaderWithPayloadCRCSize+n, len(dst)))
	}

	dst[offResponseCode] = byte(p.Header.Code)
	dst[offRespPayloadLen] = uint8(n)
	dst[offRespHeaderCRC] = crc.Checksum(dst[:ResponseHeaderSizeWithoutCRC])
	copy(dst[ResponsePayloadStartOffset:], p.Payload)
	dst[offRespPayloadCRC] = crc.Checksum(dst[ResponsePayloadStartOffset : ResponsePayloadStartOffset+n])

	return dst[:ResponseHeaderWithPayloadCRCSize+n]
}

// DeserializeRequestHeader reads the header positionally. The CRC is not
// checked; see RequestHeaderHasValidCRC.
func DeserializeRequestHeader(b []byte) RequestHeader {
	if len(b) < RequestHeaderSize {
		panic(fmt.Errorf("%w: request header needs %d, have %d", ErrShortBuffer, RequestHeaderSize, len(b)))
	}
	return RequestHeader{
		ReceiverID:    b[offReceiverID],
		OperationCode: protocol.OpCode(b[offOperationCode]),
		PayloadSize:   b[offReqPayloadLen],
		HeaderCRC:     b[offReqHeaderCRC],
	}
}

// DeserializeRequest parses a complete request. The returned payload aliases b.
func DeserializeRequest(b []byte) RequestPacket {
	if len(b) < RequestMinSize {
		panic(fmt.Errorf("%w: request needs %d, have %d", ErrShortBuffer, RequestMinSize, len(b)))
	}
	h := DeserializeRequestHeader(b)
	end := RequestPayloadStartOffset + int(h.PayloadSize)
	if len(b) < end {
		panic(fmt.Errorf("%w: request needs %d, have %d", ErrShortBuffer, end, len(b)))
	}
	return RequestPacket{
		Header:     h,
		PayloadCRC: b[offReqPayloadCRC],
		Payload:    b[RequestPayloadStartOffset:end],
	}
}

func DeserializeResponseHeader(b []byte) ResponseHeader {
	if len(b) < ResponseHeaderSize {
		panic(fmt.Errorf("%w: response header needs %d, have %d", ErrShortBuffer, ResponseHeaderSize, len(b)))
	}
	return ResponseHeader{
		Code:        protocol.ResponseCode(b[offResponseCode]),
		PayloadSize: b[offRespPayloadLen],
		HeaderCRC:   b[offRespHeaderCRC],
	}
}

// DeserializeResponse parses a complete response. The returned payload aliases b.
func DeserializeResponse(b []byte) ResponsePacket {
	if len(b) < ResponseMinSize {
		panic(fmt.Errorf("%w: response needs %d, have %d", ErrShortBuffer, ResponseMinSize, len(b)))
	}
	h := DeserializeResponseHeader(b)
	end := ResponsePayloadStartOffset + int(h.PayloadSize)
	if len(b) < end {
		panic(fmt.Errorf("%w: response needs %d, have %d", ErrShortBuffer, end, len(b)))
	}
	return ResponsePacket{
		Header:     h,
		PayloadCRC: b[offRespPayloadCRC],
		Payload:    b[ResponsePayloadStartOffset:end],
	}
}

func RequestHeaderHasValidCRC(h RequestHeader) bool {
	return requestHeaderCRC(h) == h.HeaderCRC
}

// RequestPayloadHasValidCRC also requires a valid header: fields read from a
// corrupted header cannot be trusted even if the payload checks out.
func RequestPayloadHasValidCRC(p RequestPacket) bool {
	return RequestHeaderHasValidCRC(p.Header) &&
		int(p.Header.PayloadSize) == len(p.Payload) &&
		crc.Checksum(p.Payload) == p.PayloadCRC
}

func ResponseHeaderHasValidCRC(h ResponseHeader) bool {
	return responseHeaderCRC(h) == h.HeaderCRC
}

func ResponsePayloadHasValidCRC(p ResponsePacket) bool {
	return ResponseHeaderHasValidCRC(p.Header) &&
		int(p.Header.PayloadSize) == len(p.Payload) &&
		crc.Checksum(p.Payload) == p.PayloadCRC
}

// ExpectedRequestSize is the full wire size announced by a request header.
func ExpectedRequestSize(h RequestHeader) int {
	return RequestHeaderWithPayloadCRCSize + int(h.PayloadSize)
}

// ExpectedResponseSize is the full wire size announced by a response header.
func ExpectedResponseSize(h ResponseHeader) int {
	return ResponseHeaderWithPayloadCRCSize + int(h.PayloadSize)
}
