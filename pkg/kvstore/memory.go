package kvstore

import (
	"context"

	"github.com/bsidebar/insights/pkg/concurrent"
)

// Memory keeps values for the lifetime of the process only.
type Memory struct {
	values *concurrent.Map[string, string]
}

func NewMemory() *Memory {
	return &Memory{values: concurrent.NewMap[string, string]()}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
