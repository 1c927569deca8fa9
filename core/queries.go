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

package core

import (
	"crypto/ed25519"
	"errors"

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/database/models"
)

// Challenge returns the current state of a challenge record
func (c *Core) Challenge(
	challengeAddr address.Address,
) (*ChallengeView, error) {
	tmpChallenge, err := c.db.GetChallenge(challengeAddr.Bytes(), nil)
	if err != nil {
		return nil, err
	}
	return challengeView(tmpChallenge)
}

// Participant returns the current state of a participant record
func (c *Core) Participant(
	challengeAddr address.Address,
	user ed25519.PublicKey,
) (*ParticipantView, error) {
	tmpParticipant, err := c.db.GetParticipant(
		challengeAddr.Bytes(),
		user,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return participantView(tmpParticipant)
}

// Balance returns the value-ledger balance for an identity or derived
// address. A missing account reads as zero.
func (c *Core) Balance(addr []byte) (uint64, error) {
	tmpAccount, err := c.db.GetAccount(addr, nil)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(tmpAccount.Balance), nil
}

// VaultBalance returns the true balance held by a challenge's escrow vault
func (c *Core) VaultBalance(
	challengeAddr address.Address,
) (uint64, error) {
	return c.Balance(address.ForVault(challengeAddr).Bytes())
}
