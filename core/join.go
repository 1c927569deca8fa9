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
	"fmt"

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/database/models"
)

// JoinChallenge stakes the challenge's stake amount from the user into the
// vault and creates the user's participant record. Joins close at the
// challenge start time. All effects are applied in one transaction: a failed
// transfer leaves no participant record and no counter change.
func (c *Core) JoinChallenge(
	challengeAddr address.Address,
	user ed25519.PublicKey,
) (*ParticipantView, error) {
	if len(user) != ed25519.PublicKeySize {
		c.metrics.opFailure("join_challenge")
		return nil, fmt.Errorf("%w: user identity", ErrInvalidParameter)
	}
	participantAddr := address.ForParticipant(challengeAddr, user)
	vaultAddr := address.ForVault(challengeAddr)
	tmpParticipant := models.Participant{
		Address:   participantAddr.Bytes(),
		Challenge: challengeAddr.Bytes(),
		User:      user,
	}
	var stakeAmount uint64
	txn := c.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		tmpChallenge, err := c.db.GetChallenge(challengeAddr.Bytes(), txn)
		if err != nil {
			return err
		}
		now := c.timeNow().Unix()
		if now < 0 || uint64(now) >= tmpChallenge.StartTime {
			return ErrChallengeStarted
		}
		if tmpChallenge.IsPrivate {
			invited, err := c.db.ChallengeGroupContains(
				tmpChallenge.ID,
				user,
				txn,
			)
			if err != nil {
				return err
			}
			if !invited {
				return ErrNotInvited
			}
		}
		if _, err := c.db.GetParticipant(
			challengeAddr.Bytes(),
			user,
			txn,
		); err == nil {
			return ErrAlreadyJoined
		} else if !errors.Is(err, models.ErrParticipantNotFound) {
			return err
		}
		if err := c.db.TransferValue(
			user,
			vaultAddr.Bytes(),
			uint64(tmpChallenge.StakeAmount),
			txn,
		); err != nil {
			return err
		}
		if err := c.db.CreateParticipant(&tmpParticipant, txn); err != nil {
			return err
		}
		stakeAmount = uint64(tmpChallenge.StakeAmount)
		tmpChallenge.TotalParticipants++
		tmpChallenge.Pool += tmpChallenge.StakeAmount
		return c.db.UpdateChallenge(tmpChallenge, txn)
	})
	if err != nil {
		c.metrics.opFailure("join_challenge")
		return nil, err
	}
	c.logger.Info(
		"participant joined",
		"challenge", challengeAddr.String(),
		"participant", participantAddr.String(),
	)
	if c.metrics != nil {
		c.metrics.joinsTotal.Inc()
	}
	c.publish(ChallengeJoinedEventType, ChallengeJoinedEvent{
		Challenge:   challengeAddr,
		User:        user,
		StakeAmount: stakeAmount,
	})
	return participantView(&tmpParticipant)
}
