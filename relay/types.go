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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package relay

import "encoding/json"

// Addresses and identities travel as hex strings; value amounts travel as
// decimal strings to keep them exact in any JSON client.

// RootResponse is returned by GET /.
type RootResponse struct {
	URL     string `json:"url"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the error body returned by all endpoints.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Actions carried inside signed instruction messages. The action is part
// of the signed bytes so a captured signature cannot be replayed against
// a different endpoint.
const (
	actionCreateChallenge = "create_challenge"
	actionJoinChallenge   = "join_challenge"
	actionWithdrawReward  = "withdraw_reward"
)

// CreateChallengeRequest is the body for POST /api/v0/challenges.
// Message is the raw instruction JSON produced by the client and
// Signature is the creator's ed25519 signature over those exact bytes.
type CreateChallengeRequest struct {
	Creator   string          `json:"creator"`
	Message   json.RawMessage `json:"message"`
	Signature string          `json:"signature"`
}

// createInstruction is the signed payload carried in
// CreateChallengeRequest.
type createInstruction struct {
	Action      string   `json:"action"`
	Name        string   `json:"name"`
	Duration    uint16   `json:"duration"`
	StakeAmount string   `json:"stake_amount"`
	TargetSteps uint32   `json:"target_steps"`
	StartTime   uint64   `json:"start_time"`
	IsPrivate   bool     `json:"is_private"`
	Group       []string `json:"group,omitempty"`
}

// ChallengeResponse represents a challenge record.
type ChallengeResponse struct {
	Address                string `json:"address"`
	Creator                string `json:"creator"`
	Name                   string `json:"name"`
	Duration               uint16 `json:"duration"`
	StakeAmount            string `json:"stake_amount"`
	TargetSteps            uint32 `json:"target_steps"`
	StartTime              uint64 `json:"start_time"`
	EndTime                uint64 `json:"end_time"`
	TotalParticipants      uint32 `json:"total_participants"`
	SuccessfulParticipants uint32 `json:"successful_participants"`
	Pool                   string `json:"pool"`
	IsPrivate              bool   `json:"is_private"`
}

// JoinRequest is the body for POST /api/v0/challenges/{address}/join.
// Message is a challengeInstruction signed by the joining user's key;
// the stake moves out of their account, so only they may authorize it.
type JoinRequest struct {
	User      string          `json:"user"`
	Message   json.RawMessage `json:"message"`
	Signature string          `json:"signature"`
}

// challengeInstruction is the signed payload for join and withdraw
// requests. The challenge address is part of the signed bytes so a
// signature for one challenge cannot be replayed against another.
type challengeInstruction struct {
	Action    string `json:"action"`
	Challenge string `json:"challenge"`
}

// ParticipantResponse represents a participant record.
type ParticipantResponse struct {
	Address       string   `json:"address"`
	Challenge     string   `json:"challenge"`
	User          string   `json:"user"`
	History       []uint32 `json:"history"`
	DaysCompleted uint16   `json:"days_completed"`
	Completed     bool     `json:"completed"`
	RewardTaken   bool     `json:"reward_taken"`
}

// SyncRequest is the body for POST /api/v0/challenges/{address}/sync.
// Message is the raw telemetry JSON produced on the device and Signature
// is the user's ed25519 signature over those exact bytes.
type SyncRequest struct {
	User      string          `json:"user"`
	Message   json.RawMessage `json:"message"`
	Signature string          `json:"signature"`
}

// syncMessage is the device telemetry payload carried in SyncRequest.
// Only the step count is interpreted; the rest of the message is stored
// verbatim in the attestation journal.
type syncMessage struct {
	Data struct {
		Steps *uint32 `json:"steps"`
	} `json:"data"`
}

// WithdrawRequest is the body for
// POST /api/v0/challenges/{address}/withdraw. Message is a
// challengeInstruction signed by the claiming user's key.
type WithdrawRequest struct {
	User      string          `json:"user"`
	Message   json.RawMessage `json:"message"`
	Signature string          `json:"signature"`
}

// ReceiptResponse is returned by a successful withdrawal.
type ReceiptResponse struct {
	Challenge string `json:"challenge"`
	User      string `json:"user"`
	Amount    string `json:"amount"`
}

// AccountResponse represents a value-ledger account.
type AccountResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// DepositRequest is the body for
// POST /api/v0/accounts/{address}/deposits.
type DepositRequest struct {
	Amount string `json:"amount"`
}
