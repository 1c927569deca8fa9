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
	"errors"

	"github.com/blinklabs-io/strider/database/models"
)

// Terminal operation failures. Each aborts the whole operation before any
// state mutation; the core never retries internally.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrChallengeStarted = errors.New("challenge has already started")
	ErrNotInvited       = errors.New("user is not in the challenge group")
	ErrUnauthorized     = errors.New("unauthorized progress submission")
	ErrOutsideWindow    = errors.New("outside the challenge window")
	ErrTooEarly         = errors.New("challenge has not ended yet")
	ErrNotEligible      = errors.New("challenge was not completed")
	ErrAlreadyClaimed   = errors.New("reward has already been withdrawn")
)

// Record-store collision guards double as dedup errors, so they surface
// under their store identities
var (
	ErrChallengeExists   = models.ErrChallengeExists
	ErrChallengeNotFound = models.ErrChallengeNotFound
	ErrAlreadyJoined     = models.ErrParticipantExists
	ErrNotParticipant    = models.ErrParticipantNotFound
	ErrInsufficientFunds = models.ErrInsufficientFunds
)
