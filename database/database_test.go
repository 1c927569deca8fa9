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

package database_test

import (
	"testing"

	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/database/models"
	"github.com/blinklabs-io/strider/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func TestAccountTransfer(t *testing.T) {
	db := testDatabase(t)
	alice := []byte("alice-identity-01234567890123456")
	vault := []byte("vault-address-012345678901234567")
	require.NoError(t, db.CreditAccount(alice, 1_000_000, nil))
	require.NoError(t, db.TransferValue(alice, vault, 400_000, nil))
	aliceAcct, err := db.GetAccount(alice, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(600_000), aliceAcct.Balance)
	vaultAcct, err := db.GetAccount(vault, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(400_000), vaultAcct.Balance)
}

func TestAccountTransferInsufficientFunds(t *testing.T) {
	db := testDatabase(t)
	alice := []byte("alice-identity-01234567890123456")
	vault := []byte("vault-address-012345678901234567")
	require.NoError(t, db.CreditAccount(alice, 100, nil))
	err := db.TransferValue(alice, vault, 200, nil)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)
	// Neither balance may change on failure
	aliceAcct, err := db.GetAccount(alice, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(100), aliceAcct.Balance)
	_, err = db.GetAccount(vault, nil)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestAccountTransferUnknownSource(t *testing.T) {
	db := testDatabase(t)
	err := db.TransferValue(
		[]byte("nobody-identity-0123456789012345"),
		[]byte("vault-address-012345678901234567"),
		1,
		nil,
	)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestChallengeRoundTrip(t *testing.T) {
	db := testDatabase(t)
	tmpChallenge := models.Challenge{
		Address:     []byte("challenge-address-01234567890123"),
		Creator:     []byte("creator-identity-012345678901234"),
		Name:        "morning run",
		Duration:    7,
		StakeAmount: 10_000_000,
		TargetSteps: 10_000,
		StartTime:   1_700_000_000,
		EndTime:     1_700_604_800,
	}
	require.NoError(t, db.CreateChallenge(&tmpChallenge, nil, nil))
	fetched, err := db.GetChallenge(tmpChallenge.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, tmpChallenge.Name, fetched.Name)
	assert.Equal(t, tmpChallenge.StakeAmount, fetched.StakeAmount)
	assert.Equal(t, uint32(0), fetched.TotalParticipants)
}

func TestChallengeDuplicate(t *testing.T) {
	db := testDatabase(t)
	tmpChallenge := models.Challenge{
		Address:     []byte("challenge-address-01234567890123"),
		Creator:     []byte("creator-identity-012345678901234"),
		Name:        "morning run",
		Duration:    1,
		StakeAmount: 1,
		TargetSteps: 1,
	}
	require.NoError(t, db.CreateChallenge(&tmpChallenge, nil, nil))
	dupe := tmpChallenge
	dupe.ID = 0
	err := db.CreateChallenge(&dupe, nil, nil)
	require.ErrorIs(t, err, models.ErrChallengeExists)
}

func TestChallengeNotFound(t *testing.T) {
	db := testDatabase(t)
	_, err := db.GetChallenge([]byte("missing-address-0123456789012345"), nil)
	require.ErrorIs(t, err, models.ErrChallengeNotFound)
}

func TestChallengeGroup(t *testing.T) {
	db := testDatabase(t)
	member := []byte("member-identity-0123456789012345")
	outsider := []byte("outsider-identity-01234567890123")
	tmpChallenge := models.Challenge{
		Address:     []byte("challenge-address-01234567890123"),
		Creator:     []byte("creator-identity-012345678901234"),
		Name:        "private run",
		Duration:    1,
		StakeAmount: 1,
		TargetSteps: 1,
		IsPrivate:   true,
	}
	require.NoError(
		t,
		db.CreateChallenge(&tmpChallenge, [][]byte{member}, nil),
	)
	inGroup, err := db.ChallengeGroupContains(tmpChallenge.ID, member, nil)
	require.NoError(t, err)
	assert.True(t, inGroup)
	inGroup, err = db.ChallengeGroupContains(tmpChallenge.ID, outsider, nil)
	require.NoError(t, err)
	assert.False(t, inGroup)
}

func TestParticipantRoundTrip(t *testing.T) {
	db := testDatabase(t)
	tmpParticipant := models.Participant{
		Address:   []byte("participant-address-012345678901"),
		Challenge: []byte("challenge-address-01234567890123"),
		User:      []byte("user-identity-012345678901234567"),
	}
	require.NoError(t, db.CreateParticipant(&tmpParticipant, nil))
	fetched, err := db.GetParticipant(
		tmpParticipant.Challenge,
		tmpParticipant.User,
		nil,
	)
	require.NoError(t, err)
	assert.Empty(t, fetched.StepHistory())
	assert.False(t, fetched.Completed)
	// Duplicate join is rejected
	dupe := tmpParticipant
	dupe.ID = 0
	err = db.CreateParticipant(&dupe, nil)
	require.ErrorIs(t, err, models.ErrParticipantExists)
}

func TestParticipantHistoryUpdate(t *testing.T) {
	db := testDatabase(t)
	tmpParticipant := models.Participant{
		Address:   []byte("participant-address-012345678901"),
		Challenge: []byte("challenge-address-01234567890123"),
		User:      []byte("user-identity-012345678901234567"),
	}
	require.NoError(t, db.CreateParticipant(&tmpParticipant, nil))
	tmpParticipant.SetStepHistory([]uint32{0, 1200, 800})
	tmpParticipant.DaysCompleted = 1
	tmpParticipant.Completed = true
	require.NoError(t, db.UpdateParticipant(&tmpParticipant, nil))
	fetched, err := db.GetParticipant(
		tmpParticipant.Challenge,
		tmpParticipant.User,
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1200, 800}, fetched.StepHistory())
	assert.Equal(t, uint16(1), fetched.DaysCompleted)
	assert.True(t, fetched.Completed)
}

func TestAttestationRoundTrip(t *testing.T) {
	db := testDatabase(t)
	participant := []byte("participant-address-012345678901")
	message := []byte(`{"timestamp":"2026-01-02T03:04:05Z","data":{"steps":1200}}`)
	require.NoError(t, db.SetAttestation(participant, 0, message, nil))
	fetched, err := db.GetAttestation(participant, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, message, fetched)
	_, err = db.GetAttestation(participant, 1, nil)
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestTransactionMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	db, err := database.New(&database.Config{
		DataDir:      t.TempDir(),
		PromRegistry: registry,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	alice := []byte("alice-identity-01234567890123456")
	txn := db.Transaction(true)
	require.NoError(t, db.CreditAccount(alice, 100, txn))
	require.NoError(t, txn.Commit())
	assert.Equal(t, uint64(1), db.Metrics().TxnCommits.Load())
	assert.Equal(t, uint64(0), db.Metrics().TxnRollbacks.Load())

	txn = db.Transaction(true)
	require.NoError(t, db.CreditAccount(alice, 100, txn))
	require.NoError(t, txn.Rollback())
	assert.Equal(t, uint64(1), db.Metrics().TxnRollbacks.Load())

	// Counters land in the provided registry
	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "strider_database_txn_commits_total")
	assert.Contains(t, names, "strider_database_txn_rollbacks_total")
}

func TestTransactionRollback(t *testing.T) {
	db := testDatabase(t)
	alice := []byte("alice-identity-01234567890123456")
	require.NoError(t, db.CreditAccount(alice, 500, nil))
	txn := db.Transaction(true)
	require.NoError(t, db.CreditAccount(alice, 500, txn))
	require.NoError(t, txn.Rollback())
	acct, err := db.GetAccount(alice, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(500), acct.Balance)
}
