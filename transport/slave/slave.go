// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package slave implements the device side of the servo link: a
// non-blocking receive state machine that assembles requests one byte per
// Poll, validates them, dispatches them to registered operation handlers
// and sends the response.
package slave

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/packet"
	"github.com/ffutop/servocomm/transport"
)

var (
	ErrNilHandler         = errors.New("slave: nil operation handler")
	ErrHandlerCapacity    = errors.New("slave: operation handler capacity exceeded")
	ErrDuplicateOperation = errors.New("slave: operation code already registered")
)

const (
	DefaultHandlerCapacity = 16
	DefaultPollInterval    = 200 * time.Microsecond
)

type Config struct {
	DeviceID uint8
	// Timeout is the slave response timeout. A response that is not ready
	// within it is dropped so the master can reach its own timeout cleanly.
	Timeout time.Duration
	// DisableTimeouts turns off both Timeout and FrameTimeout.
	DisableTimeouts bool
	// FrameTimeout discards a partial frame whose first byte is older than
	// this. Zero uses the default master timeout.
	FrameTimeout    time.Duration
	HandlerCapacity int
	PollInterval    time.Duration
}

// Handler is the slave protocol handler. Poll and Run must be called from
// a single goroutine; Statistics may be called from any.
type Handler struct {
	link  transport.Link
	clock transport.Clock

	deviceID     uint8
	timeout      transport.Timeout
	frameTimeout uint64 // ms, 0 disables
	frameStart   uint64
	pollInterval time.Duration

	handlers   map[protocol.OpCode]transport.OperationHandler
	handlerCap int

	rx                 [packet.RequestMaxSize]byte
	tx                 [packet.ResponseMaxSize]byte
	rxIndex            int
	expectedPacketSize int

	stats protocol.Counters
}

// New creates a handler answering requests addressed to cfg.DeviceID.
func New(link transport.Link, clock transport.Clock, cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = protocol.DefaultSlaveTimeout
	}
	if cfg.FrameTimeout <= 0 {
		cfg.FrameTimeout = protocol.DefaultMasterTimeout
	}
	if cfg.HandlerCapacity <= 0 {
		cfg.HandlerCapacity = DefaultHandlerCapacity
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	h := &Handler{
		link:     link,
		clock:    clock,
		deviceID: cfg.DeviceID,
		timeout: transport.Timeout{
			Clock:    clock,
			Limit:    cfg.Timeout,
			Disabled: cfg.DisableTimeouts,
		},
		pollInterval: cfg.PollInterval,
		handlers:     make(map[protocol.OpCode]transport.OperationHandler, cfg.HandlerCapacity),
		handlerCap:   cfg.HandlerCapacity,
	}
	if !cfg.DisableTimeouts {
		h.frameTimeout = uint64(cfg.FrameTimeout.Milliseconds())
	}
	return h
}

// Register binds fn to op. A nil fn, a full table or an op code that is
// already bound panics.
func (h *Handler) Register(op protocol.OpCode, fn transport.OperationHandler) {
	if fn == nil {
		panic(fmt.Errorf("%w: %v", ErrNilHandler, op))
	}
	if _, ok := h.handlers[op]; ok {
		panic(fmt.Errorf("%w: %v", ErrDuplicateOperation, op))
	}
	if len(h.handlers) >= h.handlerCap {
		panic(fmt.Errorf("%w: capacity %d, registering %v", ErrHandlerCapacity, h.handlerCap, op))
	}
	h.handlers[op] = fn
}

func (h *Handler) DeviceID() uint8 {
	return h.deviceID
}

// Statistics returns a snapshot of the receive counters.
func (h *Handler) Statistics() protocol.CommunicationStatistics {
	return h.stats.Snapshot()
}

// Poll performs one step of the receive state machine. It consumes at most
// one byte and reports whether it did.
func (h *Handler) Poll() bool {
	h.dropStaleFrame()

	if h.link.Available() < 1 {
		return false
	}
	b, err := h.link.ReadByte()
	if err != nil {
		slog.Debug("Slave read failed", "err", err)
		return false
	}

	if h.rxIndex == 0 {
		h.frameStart = h.clock.UptimeMilliseconds()
	}
	h.rx[h.rxIndex] = b
	h.rxIndex++

	if h.rxIndex == packet.RequestHeaderSize {
		hdr := packet.DeserializeRequestHeader(h.rx[:h.rxIndex])
		if packet.RequestHeaderHasValidCRC(hdr) {
			h.expectedPacketSize = packet.ExpectedRequestSize(hdr)
		} else {
			// The length field is not trustworthy; close the frame as
			// early as possible and answer it as corrupted.
			h.expectedPacketSize = packet.RequestMinSize
		}
		return true
	}

	if h.expectedPacketSize != 0 && h.rxIndex >= h.expectedPacketSize {
		h.complete()
	}
	return true
}

// Run polls until ctx is done, sleeping PollInterval whenever the link is
// idle. It returns early if the link reports a terminal error.
func (h *Handler) Run(ctx context.Context) error {
	slog.Info("Slave handler running", "device_id", h.deviceID)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if h.Poll() {
			continue
		}
		if el, ok := h.link.(interface{ Err() error }); ok {
			if err := el.Err(); err != nil {
				return fmt.Errorf("slave link: %w", err)
			}
		}
		time.Sleep(h.pollInterval)
	}
}

func (h *Handler) resetFrame() {
	h.rxIndex = 0
	h.expectedPacketSize = 0
}

func (h *Handler) dropStaleFrame() {
	if h.rxIndex == 0 || h.frameTimeout == 0 {
		return
	}
	if h.clock.UptimeMilliseconds()-h.frameStart > h.frameTimeout {
		slog.Debug("Dropping stale partial frame",
			"received", h.rxIndex,
			"expected", h.expectedPacketSize,
			"frame", hex.EncodeToString(h.rx[:h.rxIndex]))
		h.resetFrame()
	}
}

func (h *Handler) complete() {
	frame := h.rx[:h.rxIndex]
	h.resetFrame()
	h.timeout.Start()

	hdr := packet.DeserializeRequestHeader(frame)
	headerOK := packet.RequestHeaderHasValidCRC(hdr)

	req := packet.RequestPacket{Header: hdr}
	if headerOK {
		req = packet.DeserializeRequest(frame)
	}

	if req.Header.ReceiverID != h.deviceID {
		slog.Debug("Ignoring request for another device", "receiver_id", req.Header.ReceiverID, "device_id", h.deviceID)
		return
	}

	h.stats.IncTotal()
	slog.Debug("Received request", "frame", hex.EncodeToString(frame))

	if !headerOK || !packet.RequestPayloadHasValidCRC(req) {
		h.stats.IncCorrupted()
		slog.Debug("Corrupted request", "header_crc_ok", headerOK)
		h.respond(protocol.Respond(protocol.Corrupted))
		return
	}

	h.stats.IncValid()

	fn, ok := h.handlers[req.Header.OperationCode]
	if !ok {
		slog.Debug("Unknown operation", "op", req.Header.OperationCode)
		h.respond(protocol.Respond(protocol.UnknownOperationCode))
		return
	}
	h.respond(fn(req.Payload))
}

func (h *Handler) respond(resp protocol.ResponseData) {
	if len(resp.Payload) > packet.MaxPayloadSize {
		slog.Warn("Operation handler returned oversized payload", "code", resp.Code, "size", len(resp.Payload))
		resp = protocol.Respond(protocol.OutOfBounds)
	}

	p := packet.ResponsePacket{
		Header:  packet.ResponseHeader{Code: resp.Code, PayloadSize: uint8(len(resp.Payload))},
		Payload: resp.Payload,
	}
	wire := packet.SerializeResponse(p, h.tx[:])

	if h.timeout.Expired() {
		h.stats.IncTimedOut()
		slog.Debug("Dropping late response", "code", resp.Code, "elapsed_ms", h.timeout.Elapsed())
		return
	}
	if err := h.link.TransmitBytes(wire); err != nil {
		slog.Error("Failed to transmit response", "err", err)
		return
	}
	slog.Debug("Sent response", "frame", hex.EncodeToString(wire))
}
