// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMasterTimeout = 100 * time.Millisecond
	// DefaultSlaveTimeout must stay below DefaultMasterTimeout so a slave
	// never answers after the master gave up on the exchange.
	DefaultSlaveTimeout = DefaultMasterTimeout / 2
)

var ErrInvalidTimeouts = errors.New("servocomm: invalid timeouts")

// ValidateTimeouts checks that both timeouts are positive and that the
// slave timeout is strictly less than the master timeout.
func ValidateTimeouts(master, slave time.Duration) error {
	if master <= 0 || slave <= 0 {
		return fmt.Errorf("%w: master %v and slave %v must be positive", ErrInvalidTimeouts, master, slave)
	}
	if slave >= master {
		return fmt.Errorf("%w: slave timeout %v must be less than master timeout %v", ErrInvalidTimeouts, slave, master)
	}
	return nil
}
