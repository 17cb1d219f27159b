package kv

import (
	"context"
	"fmt"
	"time"
)

const settingsTimeout = 3 * time.Second

// Settings stores string preferences under "setting:<key>" in a Store, for
// backends that have no settings table of their own.
type Settings struct {
	store Store
}

func NewSettings(s Store) *Settings {
	return &Settings{store: s}
}

func (s *Settings) GetSetting(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
	defer cancel()
	v, err := s.store.Get(ctx, "setting:"+key)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return string(v), nil
}

func (s *Settings) SetSetting(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
	defer cancel()
	return s.store.Set(ctx, "setting:"+key, []byte(value))
}
