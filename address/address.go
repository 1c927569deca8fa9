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

package address

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Size is the length in bytes of a derived address
const Size = 32

// Namespace tags for derived addresses. Deriving an address under a tag
// guarantees it cannot collide with an address derived under another tag.
const (
	TagChallenge   = "challenge"
	TagVault       = "vault"
	TagParticipant = "participant"
)

var ErrInvalidLength = errors.New("invalid address length")

// Address is a deterministically derived account address. It doubles as a
// uniqueness guard: two derivations collide only if all their inputs match.
type Address [Size]byte

// derive hashes the namespace tag and parts into an address. Each part is
// length-prefixed to keep the encoding injective across part boundaries.
func derive(tag string, parts ...[]byte) Address {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails with a non-nil key
		panic(err)
	}
	var lenBuf [binary.MaxVarintLen64]byte
	h.Write([]byte(tag))
	for _, part := range parts {
		n := binary.PutUvarint(lenBuf[:], uint64(len(part)))
		h.Write(lenBuf[:n])
		h.Write(part)
	}
	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// ForChallenge returns the derived address for a challenge created by the
// given identity under the given name
func ForChallenge(creator []byte, name string) Address {
	return derive(TagChallenge, creator, []byte(name))
}

// ForVault returns the derived address of the escrow vault for a challenge
func ForVault(challenge Address) Address {
	return derive(TagVault, challenge[:])
}

// ForParticipant returns the derived address for a user's participant record
// within a challenge
func ForParticipant(challenge Address, user []byte) Address {
	return derive(TagParticipant, challenge[:], user)
}

// FromBytes converts a raw 32-byte value into an Address
func FromBytes(data []byte) (Address, error) {
	var addr Address
	if len(data) != Size {
		return addr, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidLength,
			Size,
			len(data),
		)
	}
	copy(addr[:], data)
	return addr, nil
}

// FromHex decodes a hex-encoded address
func FromHex(s string) (Address, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	return FromBytes(data)
}

// Bytes returns the address as a byte slice
func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}
