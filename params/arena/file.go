// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package arena

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ffutop/servocomm/params"
)

// FileStorage keeps the arena in memory and writes each modified cell
// through to a file, so values survive a restart of the device process.
type FileStorage struct {
	path string
	file *os.File
	data []byte
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

func (fs *FileStorage) Load() ([]byte, error) {
	f, err := openSized(fs.path)
	if err != nil {
		return nil, err
	}
	fs.file = f

	data := make([]byte, Size)
	if _, err := io.ReadFull(f, data); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read arena file: %w", err)
	}
	fs.data = data
	return data, nil
}

// OnWrite writes the cell through and syncs.
func (fs *FileStorage) OnWrite(id params.ParameterID) {
	if fs.data == nil || fs.file == nil {
		return
	}
	off := int(id) * CellSize
	if _, err := fs.file.WriteAt(fs.data[off:off+CellSize], int64(off)); err != nil {
		slog.Error("Failed to write arena cell", "id", id, "err", err)
		return
	}
	if err := fs.file.Sync(); err != nil {
		slog.Error("Failed to sync arena file", "err", err)
	}
}

func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}
