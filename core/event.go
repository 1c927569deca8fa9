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
	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/event"
)

const (
	ChallengeCreatedEventType event.EventType = "challenge.created"
	ChallengeJoinedEventType  event.EventType = "challenge.joined"
	ProgressSyncedEventType   event.EventType = "progress.synced"
	RewardWithdrawnEventType  event.EventType = "reward.withdrawn"
)

type ChallengeCreatedEvent struct {
	Address   address.Address
	Creator   []byte
	Name      string
	StartTime uint64
	EndTime   uint64
}

type ChallengeJoinedEvent struct {
	Challenge   address.Address
	User        []byte
	StakeAmount uint64
}

type ProgressSyncedEvent struct {
	Challenge address.Address
	User      []byte
	Day       int
	Steps     uint32
	Qualified bool
}

type RewardWithdrawnEvent struct {
	Challenge address.Address
	User      []byte
	Amount    uint64
}
