// Package settings exposes the sidebar's stored preferences, grouped by
// category (behaviour, appearance, newtab, language, utility).
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Provider returns the raw settings for one category. ok is false when the
// category has never been saved.
type Provider interface {
	Category(ctx context.Context, name string) (values map[string]any, ok bool, err error)
}

// Static serves a fixed set of categories.
type Static map[string]map[string]any

func (s Static) Category(_ context.Context, name string) (map[string]any, bool, error) {
	v, ok := s[name]
	return v, ok, nil
}

// File reads categories from a YAML document whose top-level keys are the
// category names. The file is re-read on every call so edits are picked up
// by the next daily snapshot.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Category(_ context.Context, name string) (map[string]any, bool, error) {
	all, err := f.load()
	if err != nil {
		return nil, false, err
	}

	raw, ok := all[name]
	if !ok || raw == nil {
		return nil, false, nil
	}

	values, ok := raw.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("settings category %q is a %T, not a mapping", name, raw)
	}
	return values, true, nil
}

func (f *File) load() (map[string]any, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var all map[string]any
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", f.Path, err)
	}
	return all, nil
}
