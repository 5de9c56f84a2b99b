// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package arena

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/ffutop/servocomm/params"
)

// MmapStorage maps the arena file into memory. Other processes mapping the
// same file see parameter values live, e.g. a motor loop that publishes
// its measurements through the arena.
type MmapStorage struct {
	path string
	file *os.File
	data mmap.MMap
}

func NewMmapStorage(path string) *MmapStorage {
	return &MmapStorage{
		path: path,
	}
}

func (ms *MmapStorage) Load() ([]byte, error) {
	f, err := openSized(ms.path)
	if err != nil {
		return nil, err
	}
	ms.file = f

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	ms.data = data
	return data, nil
}

func (ms *MmapStorage) OnWrite(id params.ParameterID) {
	if ms.data == nil {
		return
	}
	if err := ms.data.Flush(); err != nil {
		slog.Error("Failed to flush mmap", "id", id, "err", err)
	}
}

// Close unmaps and closes the file.
func (ms *MmapStorage) Close() error {
	var err error
	if ms.data != nil {
		if e := ms.data.Unmap(); e != nil {
			err = e
		}
		ms.data = nil
	}
	if ms.file != nil {
		if e := ms.file.Close(); e != nil {
			err = e
		}
		ms.file = nil
	}
	return err
}
