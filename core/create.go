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
	"bytes"
	"crypto/ed25519"
	"fmt"
	"unicode/utf8"

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/database/models"
	"github.com/blinklabs-io/strider/database/types"
)

// ChallengeParams are the creator-supplied challenge parameters
type ChallengeParams struct {
	Creator     ed25519.PublicKey
	Name        string
	Duration    uint16
	StakeAmount uint64
	TargetSteps uint32
	StartTime   uint64
	IsPrivate   bool
	Group       [][]byte
}

func (p *ChallengeParams) validate() error {
	if len(p.Creator) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: creator identity", ErrInvalidParameter)
	}
	if p.Name == "" || len(p.Name) > MaxNameLength ||
		!utf8.ValidString(p.Name) {
		return fmt.Errorf("%w: name", ErrInvalidParameter)
	}
	if p.Duration == 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidParameter)
	}
	if p.StakeAmount == 0 {
		return fmt.Errorf(
			"%w: stake amount must be positive",
			ErrInvalidParameter,
		)
	}
	if p.TargetSteps == 0 {
		return fmt.Errorf(
			"%w: target steps must be positive",
			ErrInvalidParameter,
		)
	}
	if p.IsPrivate {
		if len(p.Group) == 0 {
			return fmt.Errorf(
				"%w: private challenge needs a group",
				ErrInvalidParameter,
			)
		}
		if len(p.Group) > MaxGroupSize {
			return fmt.Errorf(
				"%w: group exceeds %d members",
				ErrInvalidParameter,
				MaxGroupSize,
			)
		}
		for _, member := range p.Group {
			if len(member) != ed25519.PublicKeySize {
				return fmt.Errorf(
					"%w: group member identity",
					ErrInvalidParameter,
				)
			}
		}
	}
	return nil
}

// group returns the deduplicated allow-list with the creator implicitly
// included
func (p *ChallengeParams) group() [][]byte {
	if !p.IsPrivate {
		return nil
	}
	group := make([][]byte, 0, len(p.Group)+1)
	group = append(group, p.Creator)
	for _, member := range p.Group {
		dupe := false
		for _, existing := range group {
			if bytes.Equal(existing, member) {
				dupe = true
				break
			}
		}
		if !dupe {
			group = append(group, member)
		}
	}
	return group
}

// CreateChallenge creates a new challenge record and its escrow vault. The
// challenge lives at the address derived from (creator, name), so a creator
// cannot have two challenges under the same name.
func (c *Core) CreateChallenge(
	params ChallengeParams,
) (*ChallengeView, error) {
	if err := params.validate(); err != nil {
		c.metrics.opFailure("create_challenge")
		return nil, err
	}
	challengeAddr := address.ForChallenge(params.Creator, params.Name)
	vaultAddr := address.ForVault(challengeAddr)
	tmpChallenge := models.Challenge{
		Address:     challengeAddr.Bytes(),
		Creator:     params.Creator,
		Name:        params.Name,
		Duration:    params.Duration,
		StakeAmount: types.Uint64(params.StakeAmount),
		TargetSteps: params.TargetSteps,
		StartTime:   params.StartTime,
		EndTime:     EndTime(params.StartTime, params.Duration),
		IsPrivate:   params.IsPrivate,
	}
	txn := c.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := c.db.CreateChallenge(
			&tmpChallenge,
			params.group(),
			txn,
		); err != nil {
			return err
		}
		// Vault starts empty; every join pairs a transfer in with the
		// pool increase
		if _, err := c.db.EnsureAccount(vaultAddr.Bytes(), txn); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		c.metrics.opFailure("create_challenge")
		return nil, err
	}
	c.logger.Info(
		"challenge created",
		"challenge", challengeAddr.String(),
		"name", params.Name,
		"start_time", params.StartTime,
		"duration_days", params.Duration,
	)
	if c.metrics != nil {
		c.metrics.challengesCreated.Inc()
	}
	c.publish(ChallengeCreatedEventType, ChallengeCreatedEvent{
		Address:   challengeAddr,
		Creator:   params.Creator,
		Name:      params.Name,
		StartTime: tmpChallenge.StartTime,
		EndTime:   tmpChallenge.EndTime,
	})
	return challengeView(&tmpChallenge)
}
