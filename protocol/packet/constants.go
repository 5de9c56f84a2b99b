// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package packet

const (
	MaxPayloadSize = 255

	// [receiver_id][operation_code][payload_size][header_crc]
	RequestHeaderSize           = 4
	RequestHeaderSizeWithoutCRC = RequestHeaderSize - 1
	// RequestHeaderWithPayloadCRCSize is the request header plus the payload_crc byte.
	RequestHeaderWithPayloadCRCSize = RequestHeaderSize + 1
	RequestPayloadStartOffset       = RequestHeaderWithPayloadCRCSize
	RequestMinSize                  = RequestHeaderWithPayloadCRCSize
	RequestMaxSize                  = RequestHeaderWithPayloadCRCSize + MaxPayloadSize

	// [response_code][payload_size][header_crc]
	ResponseHeaderSize               = 3
	ResponseHeaderSizeWithoutCRC     = ResponseHeaderSize - 1
	ResponseHeaderWithPayloadCRCSize = ResponseHeaderSize + 1
	ResponsePayloadStartOffset       = ResponseHeaderWithPayloadCRCSize
	ResponseMinSize                  = ResponseHeaderWithPayloadCRCSize
	ResponseMaxSize                  = ResponseHeaderWithPayloadCRCSize + MaxPayloadSize
)

// Request field offsets.
const (
	offReceiverID    = 0
	offOperationCode = 1
	offReqPayloadLen = 2
	offReqHeaderCRC  = 3
	offReqPayloadCRC = 4
)

// Response field offsets.
const (
	offResponseCode   = 0
	offRespPayloadLen = 1
	offRespHeaderCRC  = 2
	offRespPayloadCRC = 3
)
