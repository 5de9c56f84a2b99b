// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package arena

import "github.com/ffutop/servocomm/params"

// MemoryStorage keeps the arena on the heap.
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() ([]byte, error) {
	return make([]byte, Size), nil
}

func (ms *MemoryStorage) OnWrite(id params.ParameterID) {}

func (ms *MemoryStorage) Close() error {
	return nil
}
