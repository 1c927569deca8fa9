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
	"encoding/binary"
	"errors"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already exists")
)

// Participant is one record per (challenge, user). The composite unique
// index on (challenge, user) mirrors the derived-address collision guard,
// so a user can join a given challenge at most once.
type Participant struct {
	Address       []byte `gorm:"uniqueIndex;size:32"`
	Challenge     []byte `gorm:"uniqueIndex:idx_participant_challenge_user;size:32"`
	User          []byte `gorm:"uniqueIndex:idx_participant_challenge_user;size:32"`
	History       []byte
	ID            uint `gorm:"primarykey"`
	DaysCompleted uint16
	Completed     bool
	RewardTaken   bool
}

func (Participant) TableName() string {
	return "participant"
}

// StepHistory unpacks the stored per-day step counts. Index is
// day-of-challenge.
func (p *Participant) StepHistory() []uint32 {
	history := make([]uint32, 0, len(p.History)/4)
	for i := 0; i+4 <= len(p.History); i += 4 {
		history = append(
			history,
			binary.LittleEndian.Uint32(p.History[i:i+4]),
		)
	}
	return history
}

// SetStepHistory packs per-day step counts into the stored column
func (p *Participant) SetStepHistory(history []uint32) {
	packed := make([]byte, 0, len(history)*4)
	for _, steps := range history {
		packed = binary.LittleEndian.AppendUint32(packed, steps)
	}
	p.History = packed
}
