// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package arena

import (
	"fmt"
	"os"

	"github.com/ffutop/servocomm/params"
)

const (
	// CellSize fits the widest scalar.
	CellSize = 8
	// Cells gives every possible ParameterID its own cell.
	Cells = 256
	Size  = CellSize * Cells
)

// Storage supplies the bytes behind an Arena.
type Storage interface {
	// Load returns the backing bytes, Size long. Subsequent writes go
	// straight into the returned slice.
	Load() ([]byte, error)

	// OnWrite is called after the cell of id was modified.
	OnWrite(id params.ParameterID)

	Close() error
}

// openSized opens path for read/write, creating it and fixing its size.
func openSized(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open arena file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() != Size {
		if err := f.Truncate(Size); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize arena file: %w", err)
		}
	}
	return f, nil
}
