// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package device

import (
	"log/slog"

	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/message"
	"github.com/ffutop/servocomm/transport/slave"
)

// Operations serves the parameter operations on top of a Database.
type Operations struct {
	db *params.Database
}

func NewOperations(db *params.Database) *Operations {
	return &Operations{db: db}
}

// Register binds every parameter operation on s.
func (o *Operations) Register(s *slave.Handler) {
	s.Register(protocol.OpPing, o.Ping)
	s.Register(protocol.OpGetAllRegisteredParameterIDs, o.RegisteredParameterIDs)
	s.Register(protocol.OpGetParameterMetaData, o.ParameterMetaData)
	s.Register(protocol.OpReadParameterValue, o.ReadParameterValue)
	s.Register(protocol.OpWriteParameterValue, o.WriteParameterValue)
}

func (o *Operations) Ping(payload []byte) protocol.ResponseData {
	return protocol.Respond(protocol.OK)
}

func (o *Operations) RegisteredParameterIDs(payload []byte) protocol.ResponseData {
	return protocol.ResponseData{Code: protocol.OK, Payload: message.EncodeParameterIDs(o.db.IDs())}
}

// ParameterMetaData expects a single id byte.
func (o *Operations) ParameterMetaData(payload []byte) protocol.ResponseData {
	if len(payload) != 1 {
		return protocol.Respond(protocol.PayloadMissingParts)
	}
	h, ok := o.db.ByID(payload[0])
	if !ok {
		return protocol.Respond(protocol.InvalidArguments)
	}
	return protocol.ResponseData{Code: protocol.OK, Payload: message.EncodeMetaData(h.MetaData())}
}

// ReadParameterValue expects [id][requested_type] and answers the raw value.
func (o *Operations) ReadParameterValue(payload []byte) protocol.ResponseData {
	req, ok := message.DecodeReadValueRequest(payload)
	if !ok {
		return protocol.Respond(protocol.PayloadMissingParts)
	}
	h, ok := o.db.ByID(req.ID)
	if !ok {
		return protocol.Respond(protocol.InvalidArguments)
	}
	if !h.IsReadable() {
		return protocol.Respond(protocol.NotAllowed)
	}
	if h.Type() != req.Type {
		return protocol.Respond(protocol.TypeMismatch)
	}
	return protocol.ResponseData{Code: protocol.OK, Payload: h.AppendValue(nil)}
}

// WriteParameterValue expects [id][type][raw value].
func (o *Operations) WriteParameterValue(payload []byte) protocol.ResponseData {
	req, ok := message.DecodeWriteValueRequest(payload)
	if !ok {
		return protocol.Respond(protocol.PayloadMissingParts)
	}
	h, ok := o.db.ByID(req.ID)
	if !ok {
		return protocol.Respond(protocol.InvalidArguments)
	}
	if !h.IsWritable() {
		return protocol.Respond(protocol.NotAllowed)
	}
	if h.Type() != req.Type {
		return protocol.Respond(protocol.TypeMismatch)
	}
	if err := h.SetValueBytes(req.Value); err != nil {
		slog.Debug("Rejected parameter write", "id", req.ID, "err", err)
		return protocol.Respond(protocol.InvalidArguments)
	}
	return protocol.Respond(protocol.OK)
}
