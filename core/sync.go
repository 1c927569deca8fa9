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
	"fmt"

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/database"
)

// Attestation is the oracle's countersignature over a raw telemetry message
type Attestation struct {
	Message   []byte
	Signature []byte
	Signer    ed25519.PublicKey
}

// SyncProgress records a step count for the current challenge day. The
// submission must carry a valid attestation from the designated oracle.
//
// Day slots are monotonic: a repeat submission for the same day only raises
// the recorded value, and a day counts toward daysCompleted exactly once,
// when it first meets the target. Skipped days are zero-filled when the
// history is extended.
func (c *Core) SyncProgress(
	challengeAddr address.Address,
	user ed25519.PublicKey,
	steps uint32,
	attestation Attestation,
) (*ParticipantView, error) {
	if err := c.oracle.Verify(
		attestation.Message,
		attestation.Signature,
		attestation.Signer,
	); err != nil {
		c.metrics.opFailure("sync_progress")
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	var view *ParticipantView
	var syncedEvent ProgressSyncedEvent
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
		now := c.timeNow()
		day := DayIndex(tmpChallenge.StartTime, now)
		if day < 0 || day >= int(tmpChallenge.Duration) ||
			uint64(now.Unix()) > tmpChallenge.EndTime {
			return ErrOutsideWindow
		}
		history := tmpParticipant.StepHistory()
		for len(history) <= day {
			history = append(history, 0)
		}
		previous := history[day]
		if steps > previous {
			history[day] = steps
		}
		// A day qualifies at most once, when it first crosses the target
		qualified := previous < tmpChallenge.TargetSteps &&
			steps >= tmpChallenge.TargetSteps
		if qualified {
			tmpParticipant.DaysCompleted++
		}
		if !tmpParticipant.Completed && tmpParticipant.DaysCompleted >= 1 {
			tmpParticipant.Completed = true
			tmpChallenge.SuccessfulParticipants++
			if err := c.db.UpdateChallenge(tmpChallenge, txn); err != nil {
				return err
			}
		}
		tmpParticipant.SetStepHistory(history)
		if err := c.db.UpdateParticipant(tmpParticipant, txn); err != nil {
			return err
		}
		if err := c.db.SetAttestation(
			tmpParticipant.Address,
			day,
			attestation.Message,
			txn,
		); err != nil {
			return err
		}
		view, err = participantView(tmpParticipant)
		if err != nil {
			return err
		}
		syncedEvent = ProgressSyncedEvent{
			Challenge: challengeAddr,
			User:      user,
			Day:       day,
			Steps:     steps,
			Qualified: qualified,
		}
		return nil
	})
	if err != nil {
		c.metrics.opFailure("sync_progress")
		return nil, err
	}
	c.logger.Info(
		"progress synced",
		"challenge", challengeAddr.String(),
		"day", syncedEvent.Day,
		"steps", steps,
		"qualified", syncedEvent.Qualified,
	)
	if c.metrics != nil {
		c.metrics.syncsTotal.Inc()
	}
	c.publish(ProgressSyncedEventType, syncedEvent)
	return view, nil
}
