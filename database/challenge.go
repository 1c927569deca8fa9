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
	"bytes"
	"errors"

	"github.com/blinklabs-io/strider/database/models"
	"gorm.io/gorm"
)

// GetChallenge returns the challenge record at the given derived address
func (d *Database) GetChallenge(
	addr []byte,
	txn *Txn,
) (*models.Challenge, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var tmpChallenge models.Challenge
	result := txn.Metadata().
		Where("address = ?", addr).
		First(&tmpChallenge)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrChallengeNotFound
		}
		return nil, result.Error
	}
	return &tmpChallenge, nil
}

// CreateChallenge stores a new challenge record and its group allow-list.
// Returns ErrChallengeExists when a record for the same (creator, name)
// already occupies the derived address.
func (d *Database) CreateChallenge(
	challenge *models.Challenge,
	group [][]byte,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.CreateChallenge(challenge, group, txn)
		})
	}
	// The unique index on (creator, name) is the backstop; this check gives
	// us a typed error instead of a driver-specific constraint failure
	var count int64
	result := txn.Metadata().
		Model(&models.Challenge{}).
		Where("address = ?", challenge.Address).
		Count(&count)
	if result.Error != nil {
		return result.Error
	}
	if count > 0 {
		return models.ErrChallengeExists
	}
	if result := txn.Metadata().Create(challenge); result.Error != nil {
		return result.Error
	}
	for _, member := range group {
		tmpMember := models.ChallengeGroupMember{
			ChallengeID: challenge.ID,
			Member:      member,
		}
		if result := txn.Metadata().Create(&tmpMember); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// UpdateChallenge persists counter and pool changes on a challenge record
func (d *Database) UpdateChallenge(
	challenge *models.Challenge,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.UpdateChallenge(challenge, txn)
		})
	}
	result := txn.Metadata().
		Model(&models.Challenge{}).
		Where("id = ?", challenge.ID).
		Updates(map[string]any{
			"total_participants":      challenge.TotalParticipants,
			"successful_participants": challenge.SuccessfulParticipants,
			"pool":                    challenge.Pool,
		})
	return result.Error
}

// GetChallengeGroup returns the allow-list for a private challenge
func (d *Database) GetChallengeGroup(
	challengeID uint,
	txn *Txn,
) ([][]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var tmpMembers []models.ChallengeGroupMember
	result := txn.Metadata().
		Where("challenge_id = ?", challengeID).
		Order("id").
		Find(&tmpMembers)
	if result.Error != nil {
		return nil, result.Error
	}
	group := make([][]byte, 0, len(tmpMembers))
	for _, member := range tmpMembers {
		group = append(group, member.Member)
	}
	return group, nil
}

// ChallengeGroupContains reports whether an identity is on a private
// challenge's allow-list
func (d *Database) ChallengeGroupContains(
	challengeID uint,
	identity []byte,
	txn *Txn,
) (bool, error) {
	group, err := d.GetChallengeGroup(challengeID, txn)
	if err != nil {
		return false, err
	}
	for _, member := range group {
		if bytes.Equal(member, identity) {
			return true, nil
		}
	}
	return false, nil
}
