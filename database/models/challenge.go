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

package models

import (
	"errors"

	"github.com/blinklabs-io/strider/database/types"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExists   = errors.New("challenge already exists")
)

// Challenge is one record per (creator, name). The Address column holds the
// derived address and is the row's external identity; the composite unique
// index on (creator, name) mirrors the derived-address collision guard.
type Challenge struct {
	Address                []byte `gorm:"uniqueIndex;size:32"`
	Creator                []byte `gorm:"uniqueIndex:idx_challenge_creator_name;size:32"`
	Name                   string `gorm:"uniqueIndex:idx_challenge_creator_name;size:64"`
	ID                     uint   `gorm:"primarykey"`
	Duration               uint16
	StakeAmount            types.Uint64
	TargetSteps            uint32
	StartTime              uint64
	EndTime                uint64
	TotalParticipants      uint32
	SuccessfulParticipants uint32
	Pool                   types.Uint64
	IsPrivate              bool
}

func (Challenge) TableName() string {
	return "challenge"
}

// ChallengeGroupMember is one row per identity on a private challenge's
// allow-list
type ChallengeGroupMember struct {
	Member      []byte `gorm:"uniqueIndex:idx_group_challenge_member;size:32"`
	ID          uint   `gorm:"primarykey"`
	ChallengeID uint   `gorm:"uniqueIndex:idx_group_challenge_member;index"`
}

func (ChallengeGroupMember) TableName() string {
	return "challenge_group_member"
}
