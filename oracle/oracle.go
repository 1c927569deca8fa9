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

// Package oracle implements the authorization gate for progress submissions.
// A submission is accepted only when it carries a valid ed25519 signature
// from the single designated oracle identity. The identity is provided at
// initialization rather than compiled in, so it can be rotated without
// rebuilding the state machine.
package oracle

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

var (
	ErrUnknownSigner    = errors.New("signer is not the designated oracle")
	ErrInvalidSignature = errors.New("invalid oracle signature")
	ErrInvalidIdentity  = errors.New("invalid oracle identity")
	ErrMissingSignature = errors.New("missing oracle signature")
)

// Authorizer verifies that progress attestations were countersigned by the
// designated oracle identity
type Authorizer struct {
	identity ed25519.PublicKey
}

func NewAuthorizer(identity ed25519.PublicKey) (*Authorizer, error) {
	if len(identity) != ed25519.PublicKeySize {
		return nil, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidIdentity,
			ed25519.PublicKeySize,
			len(identity),
		)
	}
	return &Authorizer{
		identity: identity,
	}, nil
}

// Identity returns the designated oracle public key
func (a *Authorizer) Identity() ed25519.PublicKey {
	return a.identity
}

// Verify checks a progress attestation. Both checks are required: the signer
// must be the designated oracle identity, and the signature must verify over
// the message. A valid signature from any other key is rejected.
func (a *Authorizer) Verify(
	message []byte,
	signature []byte,
	signer ed25519.PublicKey,
) error {
	if len(signature) == 0 {
		return ErrMissingSignature
	}
	if len(signer) != ed25519.PublicKeySize ||
		!a.identity.Equal(signer) {
		return ErrUnknownSigner
	}
	if !ed25519.Verify(signer, message, signature) {
		return ErrInvalidSignature
	}
	return nil
}
