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

// RewardAmount computes a completing participant's share of the pool: their
// own stake back plus an equal split of the stakes forfeited by participants
// who never completed. Integer division; any remainder stays in the vault.
func RewardAmount(
	stakeAmount uint64,
	totalParticipants uint32,
	successfulParticipants uint32,
) uint64 {
	if successfulParticipants == 0 ||
		successfulParticipants > totalParticipants {
		return 0
	}
	forfeited := uint64(totalParticipants-successfulParticipants) * stakeAmount
	return stakeAmount + forfeited/uint64(successfulParticipants)
}
