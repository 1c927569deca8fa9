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
	"fmt"

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/database/models"
)

// ChallengeView is the read model of a challenge record returned by
// operations and queries
type ChallengeView struct {
	Address                address.Address
	Creator                []byte
	Name                   string
	Duration               uint16
	StakeAmount            uint64
	TargetSteps            uint32
	StartTime              uint64
	EndTime                uint64
	TotalParticipants      uint32
	SuccessfulParticipants uint32
	Pool                   uint64
	IsPrivate              bool
}

// ParticipantView is the read model of a participant record
type ParticipantView struct {
	Address       address.Address
	Challenge     address.Address
	User          []byte
	History       []uint32
	DaysCompleted uint16
	Completed     bool
	RewardTaken   bool
}

// Receipt records a completed reward withdrawal
type Receipt struct {
	Challenge address.Address
	User      []byte
	Amount    uint64
}

// Stored addresses are written from address.Address values, so a length
// failure here means the row is corrupt.
func challengeView(c *models.Challenge) (*ChallengeView, error) {
	addr, err := address.FromBytes(c.Address)
	if err != nil {
		return nil, fmt.Errorf("corrupt challenge record: %w", err)
	}
	return &ChallengeView{
		Address:                addr,
		Creator:                c.Creator,
		Name:                   c.Name,
		Duration:               c.Duration,
		StakeAmount:            uint64(c.StakeAmount),
		TargetSteps:            c.TargetSteps,
		StartTime:              c.StartTime,
		EndTime:                c.EndTime,
		TotalParticipants:      c.TotalParticipants,
		SuccessfulParticipants: c.SuccessfulParticipants,
		Pool:                   uint64(c.Pool),
		IsPrivate:              c.IsPrivate,
	}, nil
}

func participantView(p *models.Participant) (*ParticipantView, error) {
	addr, err := address.FromBytes(p.Address)
	if err != nil {
		return nil, fmt.Errorf("corrupt participant record: %w", err)
	}
	challengeAddr, err := address.FromBytes(p.Challenge)
	if err != nil {
		return nil, fmt.Errorf("corrupt participant record: %w", err)
	}
	return &ParticipantView{
		Address:       addr,
		Challenge:     challengeAddr,
		User:          p.User,
		History:       p.StepHistory(),
		DaysCompleted: p.DaysCompleted,
		Completed:     p.Completed,
		RewardTaken:   p.RewardTaken,
	}, nil
}
