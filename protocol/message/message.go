// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package message encodes and decodes the payloads of the parameter
// operations. Both the device handlers and the client use it, so the two
// sides cannot drift apart.
package message

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/protocol/packet"
)

var (
	ErrMalformed = errors.New("message: malformed payload")
)

// EncodeMetaData serializes metadata as [id][type][access][name...][0x00].
func EncodeMetaData(m params.MetaData) []byte {
	name := m.Name
	if len(name) > params.MaxNameLength {
		name = name[:params.MaxNameLength]
	}
	b := make([]byte, 0, 3+len(name)+1)
	b = append(b, m.ID, byte(m.Type), byte(m.Access))
	b = append(b, name...)
	return append(b, 0)
}

func DecodeMetaData(b []byte) (params.MetaData, error) {
	if len(b) < 4 {
		return params.MetaData{}, fmt.Errorf("%w: metadata needs at least 4 bytes, got %d", ErrMalformed, len(b))
	}
	end := bytes.IndexByte(b[3:], 0)
	if end < 0 {
		return params.MetaData{}, fmt.Errorf("%w: metadata name is not terminated", ErrMalformed)
	}
	m := params.MetaData{
		ID:     b[0],
		Type:   params.ParameterType(b[1]),
		Access: params.Access(b[2]),
		Name:   string(b[3 : 3+end]),
	}
	if !m.Type.Valid() {
		return m, fmt.Errorf("%w: type tag %d", ErrMalformed, b[1])
	}
	if !m.Access.Valid() {
		return m, fmt.Errorf("%w: access tag %d", ErrMalformed, b[2])
	}
	return m, nil
}

// ReadValueRequest is the payload of read_parameter_value.
type ReadValueRequest struct {
	ID   params.ParameterID
	Type params.ParameterType
}

const ReadValueRequestSize = 2

func (r ReadValueRequest) Encode() []byte {
	return []byte{r.ID, byte(r.Type)}
}

func DecodeReadValueRequest(b []byte) (ReadValueRequest, bool) {
	if len(b) != ReadValueRequestSize {
		return ReadValueRequest{}, false
	}
	return ReadValueRequest{ID: b[0], Type: params.ParameterType(b[1])}, true
}

// WriteValueRequest is the payload of write_parameter_value.
type WriteValueRequest struct {
	ID    params.ParameterID
	Type  params.ParameterType
	Value []byte
}

// WriteValueHeaderSize is the [id][type] prefix before the raw value.
const WriteValueHeaderSize = 2

func (r WriteValueRequest) Encode() []byte {
	b := make([]byte, 0, WriteValueHeaderSize+len(r.Value))
	b = append(b, r.ID, byte(r.Type))
	return append(b, r.Value...)
}

// DecodeWriteValueRequest splits the payload. Value aliases b.
func DecodeWriteValueRequest(b []byte) (WriteValueRequest, bool) {
	if len(b) < WriteValueHeaderSize {
		return WriteValueRequest{}, false
	}
	return WriteValueRequest{ID: b[0], Type: params.ParameterType(b[1]), Value: b[WriteValueHeaderSize:]}, true
}

// EncodeParameterIDs is the payload of get_all_registered_parameter_ids.
// At most packet.MaxPayloadSize ids fit; the rest are dropped.
func EncodeParameterIDs(ids []params.ParameterID) []byte {
	if len(ids) > packet.MaxPayloadSize {
		slog.Warn("Parameter id list truncated", "registered", len(ids), "sent", packet.MaxPayloadSize)
		ids = ids[:packet.MaxPayloadSize]
	}
	return append([]byte(nil), ids...)
}

func DecodeParameterIDs(b []byte) []params.ParameterID {
	return append([]params.ParameterID(nil), b...)
}
