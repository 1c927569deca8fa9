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

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/database/types"
)

// WithdrawReward pays a completing participant their share of the pool once
// the challenge window has closed. The rewardTaken flag makes the operation
// claim-once: a repeat call fails without touching the vault.
func (c *Core) WithdrawReward(
	challengeAddr address.Address,
	user ed25519.PublicKey,
) (*Receipt, error) {
	vaultAddr := address.ForVault(challengeAddr)
	var receipt *Receipt
	txn := c.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		tmpChallenge, err := c.db.GetChallenge(challengeAddr.Bytes(), txn)
		if err != nil {
			return err
		}
		tmpParticipant, err := c.db.GetParticipant(
			challengeAddr.Bytes(),
			user,
			txn,
		)
		if err != nil {
			return err
		}
		now := c.timeNow().Unix()
		if now < 0 || uint64(now) < tmpChallenge.EndTime {
			return ErrTooEarly
		}
		if !tmpParticipant.Completed {
			return ErrNotEligible
		}
		if tmpParticipant.RewardTaken {
			return ErrAlreadyClaimed
		}
		amount := RewardAmount(
			uint64(tmpChallenge.StakeAmount),
			tmpChallenge.TotalParticipants,
			tmpChallenge.SuccessfulParticipants,
		)
		if err := c.db.TransferValue(
			vaultAddr.Bytes(),
			user,
			amount,
			txn,
		); err != nil {
			return err
		}
		tmpParticipant.RewardTaken = true
		if err := c.db.UpdateParticipant(tmpParticipant, txn); err != nil {
			return err
		}
		tmpChallenge.Pool -= types.Uint64(amount)
		if err := c.db.UpdateChallenge(tmpChallenge, txn); err != nil {
			return err
		}
		receipt = &Receipt{
			Challenge: challengeAddr,
			User:      user,
			Amount:    amount,
		}
		return nil
	})
	if err != nil {
		c.metrics.opFailure("withdraw_reward")
		return nil, err
	}
	c.logger.Info(
		"reward withdrawn",
		"challenge", challengeAddr.String(),
		"amount", receipt.Amount,
	)
	if c.metrics != nil {
		c.metrics.withdrawalsTotal.Inc()
	}
	c.publish(RewardWithdrawnEventType, RewardWithdrawnEvent{
		Challenge: challengeAddr,
		User:      user,
		Amount:    receipt.Amount,
	})
	return receipt, nil
}
