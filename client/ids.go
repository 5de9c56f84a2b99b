// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDeviceIDs parses a string of device IDs (e.g. "1,2,5-10") into a slice of bytes.
// Duplicates are kept once, in first-seen order.
func ParseDeviceIDs(input string) ([]byte, error) {
	var ids []byte
	var seen [256]bool
	add := func(id int) error {
		if id < 0 || id > 255 {
			return fmt.Errorf("id out of range: %d", id)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, byte(id))
		}
		return nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid id: %w", err)
			}
			if err := add(id); err != nil {
				return nil, err
			}
			continue
		}

		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid start of range: %w", err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid end of range: %w", err)
		}
		if start > end {
			return nil, fmt.Errorf("start of range %d is greater than end %d", start, end)
		}
		for i := start; i <= end; i++ {
			if err := add(i); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}
