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

package database

import (
	"errors"

	"github.com/blinklabs-io/strider/database/models"
	"gorm.io/gorm"
)

// GetParticipant returns the participant record for (challenge, user)
func (d *Database) GetParticipant(
	challengeAddr []byte,
	user []byte,
	txn *Txn,
) (*models.Participant, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var tmpParticipant models.Participant
	result := txn.Metadata().
		Where("challenge = ? AND user = ?", challengeAddr, user).
		First(&tmpParticipant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrParticipantNotFound
		}
		return nil, result.Error
	}
	return &tmpParticipant, nil
}

// CreateParticipant stores a new participant record. Returns
// ErrParticipantExists when the user already joined the challenge.
func (d *Database) CreateParticipant(
	participant *models.Participant,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.CreateParticipant(participant, txn)
		})
	}
	var count int64
	result := txn.Metadata().
		Model(&models.Participant{}).
		Where(
			"challenge = ? AND user = ?",
			participant.Challenge,
			participant.User,
		).
		Count(&count)
	if result.Error != nil {
		return result.Error
	}
	if count > 0 {
		return models.ErrParticipantExists
	}
	if result := txn.Metadata().Create(participant); result.Error != nil {
		return result.Error
	}
	return nil
}

// UpdateParticipant persists progress and claim changes on a participant
// record
func (d *Database) UpdateParticipant(
	participant *models.Participant,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.UpdateParticipant(participant, txn)
		})
	}
	result := txn.Metadata().
		Model(&models.Participant{}).
		Where("id = ?", participant.ID).
		Updates(map[string]any{
			"history":        participant.History,
			"days_completed": participant.DaysCompleted,
			"completed":      participant.Completed,
			"reward_taken":   participant.RewardTaken,
		})
	return result.Error
}
