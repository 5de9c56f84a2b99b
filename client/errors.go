// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"errors"
	"fmt"

	"github.com/ffutop/servocomm/protocol"
)

var (
	ErrTimedOut            = errors.New("client: timed out")
	ErrCorrupted           = errors.New("client: corrupted response")
	ErrUnknownOperation    = errors.New("client: unknown operation")
	ErrPayloadMissingParts = errors.New("client: payload missing parts")
	ErrInvalidArguments    = errors.New("client: invalid arguments")
	ErrTypeMismatch        = errors.New("client: type mismatch")
	ErrNotAllowed          = errors.New("client: not allowed")
	ErrOutOfBounds         = errors.New("client: out of bounds")
	ErrMalformedResponse   = errors.New("client: malformed response payload")
)

var codeErrors = map[protocol.ResponseCode]error{
	protocol.TimedOut:             ErrTimedOut,
	protocol.Corrupted:            ErrCorrupted,
	protocol.UnknownOperationCode: ErrUnknownOperation,
	protocol.PayloadMissingParts:  ErrPayloadMissingParts,
	protocol.InvalidArguments:     ErrInvalidArguments,
	protocol.TypeMismatch:         ErrTypeMismatch,
	protocol.NotAllowed:           ErrNotAllowed,
	protocol.OutOfBounds:          ErrOutOfBounds,
}

// ResponseError is returned when an exchange does not end with OK.
// Err holds the transport failure, if there was one.
type ResponseError struct {
	Device uint8
	Op     protocol.OpCode
	Code   protocol.ResponseCode
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device %d: %s: %s: %v", e.Device, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("device %d: %s: %s", e.Device, e.Op, e.Code)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for Code, or another *ResponseError with the same Code.
func (e *ResponseError) Is(target error) bool {
	if t, ok := target.(*ResponseError); ok {
		return t.Code == e.Code
	}
	sentinel, ok := codeErrors[e.Code]
	return ok && sentinel == target
}
