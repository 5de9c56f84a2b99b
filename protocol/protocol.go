// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package protocol holds the types shared by the master and slave sides of
// the servo link: response codes, operation codes, statistics and the
// timeout policy.
package protocol

import "fmt"

// ResponseCode is the first byte of every response packet.
type ResponseCode uint8

const (
	OK ResponseCode = iota
	UnknownOperationCode
	InvalidArguments
	PayloadMissingParts
	OutOfBounds
	TypeMismatch
	NotAllowed
	// TimedOut is produced locally by the master, never sent by a slave.
	TimedOut
	Corrupted
)

var responseCodeNames = [...]string{
	OK:                   "ok",
	UnknownOperationCode: "unknown_operation_code",
	InvalidArguments:     "invalid_arguments",
	PayloadMissingParts:  "payload_missing_parts",
	OutOfBounds:          "out_of_bounds",
	TypeMismatch:         "type_mismatch",
	NotAllowed:           "not_allowed",
	TimedOut:             "timed_out",
	Corrupted:            "corrupted",
}

func (c ResponseCode) String() string {
	if int(c) < len(responseCodeNames) {
		return responseCodeNames[c]
	}
	return fmt.Sprintf("response_code(%d)", uint8(c))
}

// ResponseData is what a master caller receives for every exchange and what
// an operation handler returns on the slave side.
type ResponseData struct {
	Code    ResponseCode
	Payload []byte
}

// Respond is shorthand for a response without payload.
func Respond(code ResponseCode) ResponseData {
	return ResponseData{Code: code}
}

// OpCode selects the operation handler on the slave.
type OpCode uint8

const (
	OpPing OpCode = iota
	OpReboot
	OpBootToMassStorage
	OpWriteParameterValue
	OpReadParameterValue
	OpGetParameterMetaData
	OpGetAllRegisteredParameterIDs
	OpStartMotor
	OpStopMotor
)

var opCodeNames = [...]string{
	OpPing:                         "ping",
	OpReboot:                       "reboot",
	OpBootToMassStorage:            "boot_to_mass_storage",
	OpWriteParameterValue:          "write_parameter_value",
	OpReadParameterValue:           "read_parameter_value",
	OpGetParameterMetaData:         "get_parameter_metadata",
	OpGetAllRegisteredParameterIDs: "get_all_registered_parameter_ids",
	OpStartMotor:                   "start_motor",
	OpStopMotor:                    "stop_motor",
}

func (o OpCode) String() string {
	if int(o) < len(opCodeNames) {
		return opCodeNames[o]
	}
	return fmt.Sprintf("op_code(%d)", uint8(o))
}
