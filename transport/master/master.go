// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package master implements the controller side of the servo link: send
// one request, then block until the response is assembled or the master
// timeout expires.
package master

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/packet"
	"github.com/ffutop/servocomm/transport"
)

const DefaultPollInterval = 200 * time.Microsecond

type Config struct {
	Timeout time.Duration
	// DisableTimeouts makes Send wait until a response or ctx ends.
	DisableTimeouts bool
	PollInterval    time.Duration
}

// Handler is the master protocol handler. The link carries one exchange at
// a time, so concurrent Send calls are serialized.
type Handler struct {
	mu sync.Mutex

	link         transport.Link
	timeout      transport.Timeout
	pollInterval time.Duration

	tx                 [packet.RequestMaxSize]byte
	rx                 [packet.ResponseMaxSize]byte
	rxIndex            int
	expectedPacketSize int

	stats protocol.Counters
}

func New(link transport.Link, clock transport.Clock, cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = protocol.DefaultMasterTimeout
	}
	if cfg.PollInterval < 0 {
		cfg.PollInterval = 0
	} else if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Handler{
		link: link,
		timeout: transport.Timeout{
			Clock:    clock,
			Limit:    cfg.Timeout,
			Disabled: cfg.DisableTimeouts,
		},
		pollInterval: cfg.PollInterval,
	}
}

// Statistics returns a snapshot of the receive counters.
func (h *Handler) Statistics() protocol.CommunicationStatistics {
	return h.stats.Snapshot()
}

// Timeout is the configured master timeout.
func (h *Handler) Timeout() time.Duration {
	return h.timeout.Limit
}

// Send performs one request/response exchange with receiverID.
//
// Timeouts and corrupted responses are reported through the returned
// code, not as errors. The error is non-nil only when the payload does not
// fit in a packet (code OutOfBounds), the link fails, or ctx ends (code
// TimedOut). The returned payload is a copy owned by the caller.
func (h *Handler) Send(ctx context.Context, receiverID uint8, op protocol.OpCode, payload []byte) (protocol.ResponseData, error) {
	req, err := packet.NewRequest(receiverID, op, payload)
	if err != nil {
		return protocol.Respond(protocol.OutOfBounds), err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.discardStale()

	wire := packet.SerializeRequest(req, h.tx[:])
	if err := h.link.TransmitBytes(wire); err != nil {
		return protocol.Respond(protocol.TimedOut), fmt.Errorf("master: transmit: %w", err)
	}
	slog.Debug("Sent request", "receiver_id", receiverID, "op", op, "frame", hex.EncodeToString(wire))

	h.timeout.Start()
	h.rxIndex = 0
	h.expectedPacketSize = 0

	for {
		if h.timeout.Expired() {
			h.stats.IncTimedOut()
			slog.Debug("Request timed out", "receiver_id", receiverID, "op", op, "received", h.rxIndex)
			return protocol.Respond(protocol.TimedOut), nil
		}
		if err := ctx.Err(); err != nil {
			return protocol.Respond(protocol.TimedOut), err
		}

		if h.link.Available() < 1 {
			h.idle()
			continue
		}
		b, err := h.link.ReadByte()
		if err != nil {
			return protocol.Respond(protocol.TimedOut), fmt.Errorf("master: read: %w", err)
		}
		h.rx[h.rxIndex] = b
		h.rxIndex++

		if h.rxIndex == packet.ResponseHeaderSize {
			hdr := packet.DeserializeResponseHeader(h.rx[:h.rxIndex])
			if packet.ResponseHeaderHasValidCRC(hdr) {
				h.expectedPacketSize = packet.ExpectedResponseSize(hdr)
			} else {
				h.expectedPacketSize = packet.ResponseMinSize
			}
			continue
		}
		if h.expectedPacketSize != 0 && h.rxIndex >= h.expectedPacketSize {
			break
		}
	}

	frame := h.rx[:h.rxIndex]
	h.stats.IncTotal()
	slog.Debug("Received response", "frame", hex.EncodeToString(frame))

	hdr := packet.DeserializeResponseHeader(frame)
	if !packet.ResponseHeaderHasValidCRC(hdr) {
		h.stats.IncCorrupted()
		return protocol.Respond(protocol.Corrupted), nil
	}
	resp := packet.DeserializeResponse(frame)
	if !packet.ResponsePayloadHasValidCRC(resp) {
		h.stats.IncCorrupted()
		return protocol.Respond(protocol.Corrupted), nil
	}

	h.stats.IncValid()
	return protocol.ResponseData{
		Code:    resp.Header.Code,
		Payload: append([]byte(nil), resp.Payload...),
	}, nil
}

// discardStale drops bytes left over from an abandoned exchange, such as
// a slave answer that arrived after the master timeout.
func (h *Handler) discardStale() {
	n := 0
	for h.link.Available() > 0 {
		m, err := h.link.Read(h.rx[:])
		if err != nil || m == 0 {
			break
		}
		n += m
	}
	if n > 0 {
		slog.Debug("Discarded stale bytes", "count", n)
	}
}

func (h *Handler) idle() {
	if h.pollInterval == 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(h.pollInterval)
}
