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

package keystore

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const oracleKeyType = "OracleSigningKey_ed25519"

var errKeyFileNotFound = errors.New("key file not found")

// keyFileEnvelope is the JSON structure of an oracle key file. The hex
// field carries the 32-byte ed25519 seed.
type keyFileEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Hex         string `json:"hex"`
}

// loadKeyFromFile loads the oracle signing key from a file path.
// Returns ErrInsecureFileMode if the file has group or other access.
//
// The file is opened first and permissions are checked on the open handle
// (via fstat on Unix) to avoid a TOCTOU race between the permission check
// and the read.
func loadKeyFromFile(path string) (ed25519.PrivateKey, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", errKeyFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open key file %q: %w", path, err)
	}
	defer f.Close()

	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}

	// Limit read to 1 MiB to guard against accidentally pointing at a
	// large file. Valid key files are well under this size.
	const maxKeyFileSize = 1 << 20
	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	key, err := parseKeyEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	return key, nil
}

// parseKeyEnvelope parses an oracle key file envelope.
func parseKeyEnvelope(fileBytes []byte) (ed25519.PrivateKey, error) {
	var env keyFileEnvelope
	if err := json.Unmarshal(fileBytes, &env); err != nil {
		return nil, fmt.Errorf("could not parse key file envelope: %w", err)
	}
	if env.Type != oracleKeyType {
		return nil, fmt.Errorf("unknown key type: %s", env.Type)
	}
	seed, err := hex.DecodeString(env.Hex)
	if err != nil {
		return nil, fmt.Errorf("could not decode key from hex: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"unexpected key seed length: %d",
			len(seed),
		)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// saveKeyToFile persists the oracle signing key with owner-only access.
func saveKeyToFile(path string, key ed25519.PrivateKey) error {
	env := keyFileEnvelope{
		Type:        oracleKeyType,
		Description: "Oracle Signing Key",
		Hex:         hex.EncodeToString(key.Seed()),
	}
	data, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return fmt.Errorf("could not encode key file envelope: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	return nil
}
