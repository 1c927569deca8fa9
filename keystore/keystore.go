// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package keystore manages the oracle signing credential. The oracle key
// signs verified telemetry before it enters the challenge state machine,
// so it gets the same file hygiene a block-signing key would.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Common errors returned by KeyStore operations.
var (
	ErrKeyNotLoaded     = errors.New("oracle key not loaded")
	ErrInsecureFileMode = errors.New("insecure file permissions")
)

// KeyStoreConfig holds configuration for the KeyStore.
type KeyStoreConfig struct {
	// Path is the oracle signing key file path.
	Path string
	// Logger for keystore events.
	Logger *slog.Logger
}

// KeyStore holds the oracle signing credential.
type KeyStore struct {
	config KeyStoreConfig
	logger *slog.Logger

	mu  sync.RWMutex
	key ed25519.PrivateKey
}

// NewKeyStore creates a new KeyStore with the given configuration.
func NewKeyStore(config KeyStoreConfig) *KeyStore {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &KeyStore{
		config: config,
		logger: logger.With("component", "keystore"),
	}
}

// Load reads the oracle signing key from the configured file.
func (k *KeyStore) Load() error {
	key, err := loadKeyFromFile(k.config.Path)
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()
	k.logger.Info(
		"loaded oracle signing key",
		"path", k.config.Path,
		"identity", fmt.Sprintf("%x", key.Public()),
	)
	return nil
}

// LoadOrGenerate reads the oracle signing key, generating and persisting
// a fresh one when the file does not exist yet.
func (k *KeyStore) LoadOrGenerate() error {
	err := k.Load()
	if err == nil || !errors.Is(err, errKeyFileNotFound) {
		return err
	}
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate oracle key: %w", err)
	}
	if err := saveKeyToFile(k.config.Path, key); err != nil {
		return err
	}
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()
	k.logger.Info(
		"generated oracle signing key",
		"path", k.config.Path,
		"identity", fmt.Sprintf("%x", key.Public()),
	)
	return nil
}

// OracleKey returns the loaded oracle signing key.
func (k *KeyStore) OracleKey() (ed25519.PrivateKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.key == nil {
		return nil, ErrKeyNotLoaded
	}
	return k.key, nil
}

// Identity returns the public identity of the loaded oracle key.
func (k *KeyStore) Identity() (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.key == nil {
		return nil, ErrKeyNotLoaded
	}
	return k.key.Public().(ed25519.PublicKey), nil
}
