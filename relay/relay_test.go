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

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/strider/core"
	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRelay struct {
	relay *Relay
	mux   *http.ServeMux
	clock *atomic.Int64
}

func newTestRelay(t *testing.T) *testRelay {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	oraclePub, oraclePriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	authorizer, err := oracle.NewAuthorizer(oraclePub)
	require.NoError(t, err)
	var clock atomic.Int64
	clock.Store(time.Now().Unix())
	c, err := core.New(core.Config{
		Database: db,
		Oracle:   authorizer,
		TimeNow: func() time.Time {
			return time.Unix(clock.Load(), 0)
		},
	})
	require.NoError(t, err)
	r, err := New(
		RelayConfig{
			ListenAddress: ":0",
			OracleKey:     oraclePriv,
		},
		c,
		nil,
	)
	require.NoError(t, err)
	return &testRelay{
		relay: r,
		mux:   r.routes(),
		clock: &clock,
	}
}

// request drives a handler through the mux and returns the recorded
// response
func (tr *testRelay) request(
	t *testing.T,
	method string,
	path string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	resp := httptest.NewRecorder()
	tr.mux.ServeHTTP(resp, req)
	return resp
}

func (tr *testRelay) newIdentity(
	t *testing.T,
) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func (tr *testRelay) deposit(
	t *testing.T,
	identity ed25519.PublicKey,
	amount string,
) {
	t.Helper()
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/accounts/"+hex.EncodeToString(identity)+"/deposits",
		DepositRequest{Amount: amount},
	)
	require.Equal(t, http.StatusOK, resp.Code)
}

func (tr *testRelay) balance(
	t *testing.T,
	identity ed25519.PublicKey,
) string {
	t.Helper()
	resp := tr.request(
		t,
		http.MethodGet,
		"/api/v0/accounts/"+hex.EncodeToString(identity),
		nil,
	)
	require.Equal(t, http.StatusOK, resp.Code)
	var account AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &account))
	return account.Balance
}

// signInstruction marshals an instruction payload and signs it with the
// actor's key in the shape a client submits
func signInstruction(
	t *testing.T,
	priv ed25519.PrivateKey,
	v any,
) (json.RawMessage, string) {
	t.Helper()
	message, err := json.Marshal(v)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, message)
	return message, hex.EncodeToString(sig)
}

func (tr *testRelay) createChallenge(
	t *testing.T,
	creator ed25519.PublicKey,
	creatorPriv ed25519.PrivateKey,
	startOffset int64,
) ChallengeResponse {
	t.Helper()
	message, sig := signInstruction(t, creatorPriv, createInstruction{
		Action:      actionCreateChallenge,
		Name:        "step it up",
		Duration:    1,
		StakeAmount: "10000000",
		TargetSteps: 1000,
		StartTime:   uint64(tr.clock.Load() + startOffset),
	})
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges",
		CreateChallengeRequest{
			Creator:   hex.EncodeToString(creator),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusCreated, resp.Code)
	var challenge ChallengeResponse
	require.NoError(
		t,
		json.Unmarshal(resp.Body.Bytes(), &challenge),
	)
	return challenge
}

func (tr *testRelay) join(
	t *testing.T,
	challenge string,
	user ed25519.PublicKey,
	userPriv ed25519.PrivateKey,
) *httptest.ResponseRecorder {
	t.Helper()
	message, sig := signInstruction(t, userPriv, challengeInstruction{
		Action:    actionJoinChallenge,
		Challenge: challenge,
	})
	return tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge+"/join",
		JoinRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
}

func (tr *testRelay) withdraw(
	t *testing.T,
	challenge string,
	user ed25519.PublicKey,
	userPriv ed25519.PrivateKey,
) *httptest.ResponseRecorder {
	t.Helper()
	message, sig := signInstruction(t, userPriv, challengeInstruction{
		Action:    actionWithdrawReward,
		Challenge: challenge,
	})
	return tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge+"/withdraw",
		WithdrawRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
}

func TestStartStop(t *testing.T) {
	tr := newTestRelay(t)

	err := tr.relay.Start(t.Context())
	require.NoError(t, err)

	// Verify server is running
	tr.relay.mu.Lock()
	assert.NotNil(t, tr.relay.httpServer)
	tr.relay.mu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	err = tr.relay.Stop(stopCtx)
	require.NoError(t, err)

	// Verify server is stopped
	tr.relay.mu.Lock()
	assert.Nil(t, tr.relay.httpServer)
	tr.relay.mu.Unlock()
}

func TestNewInvalidOracleKey(t *testing.T) {
	_, err := New(RelayConfig{}, nil, nil)
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	tr := newTestRelay(t)
	resp := tr.request(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.True(t, health.IsHealthy)
}

func TestCreateAndGetChallenge(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	assert.Equal(t, "0", challenge.Pool)
	assert.Equal(t, uint32(0), challenge.TotalParticipants)

	resp := tr.request(
		t,
		http.MethodGet,
		"/api/v0/challenges/"+challenge.Address,
		nil,
	)
	require.Equal(t, http.StatusOK, resp.Code)
	var fetched ChallengeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fetched))
	assert.Equal(t, challenge, fetched)
}

func TestCreateChallengeWrongSigner(t *testing.T) {
	tr := newTestRelay(t)
	creator, _ := tr.newIdentity(t)
	// Instruction signed by a key other than the claimed creator's
	_, otherPriv := tr.newIdentity(t)
	message, sig := signInstruction(t, otherPriv, createInstruction{
		Action:      actionCreateChallenge,
		Name:        "step it up",
		Duration:    1,
		StakeAmount: "10000000",
		TargetSteps: 1000,
		StartTime:   uint64(tr.clock.Load() + 3600),
	})
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges",
		CreateChallengeRequest{
			Creator:   hex.EncodeToString(creator),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGetChallengeNotFound(t *testing.T) {
	tr := newTestRelay(t)
	unknown := make([]byte, 32)
	resp := tr.request(
		t,
		http.MethodGet,
		"/api/v0/challenges/"+hex.EncodeToString(unknown),
		nil,
	)
	require.Equal(t, http.StatusNotFound, resp.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Equal(t, http.StatusNotFound, errResp.StatusCode)
	assert.Equal(t, "Not Found", errResp.Error)
}

func TestGetChallengeBadAddress(t *testing.T) {
	tr := newTestRelay(t)
	resp := tr.request(
		t,
		http.MethodGet,
		"/api/v0/challenges/not-hex",
		nil,
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestJoinChallenge(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")

	resp := tr.join(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusCreated, resp.Code)
	var participant ParticipantResponse
	require.NoError(
		t,
		json.Unmarshal(resp.Body.Bytes(), &participant),
	)
	assert.Equal(t, hex.EncodeToString(user), participant.User)
	assert.Empty(t, participant.History)

	// The stake is gone from the user's account
	assert.Equal(t, "0", tr.balance(t, user))
}

func TestJoinChallengeWithoutSignature(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, _ := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")

	// A bare identity with no signed instruction must not move funds
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/join",
		JoinRequest{User: hex.EncodeToString(user)},
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "10000000", tr.balance(t, user))
}

func TestJoinChallengeWrongSigner(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	victim, _ := tr.newIdentity(t)
	tr.deposit(t, victim, "10000000")

	// A third party cannot spend the victim's stake by signing the
	// instruction with their own key
	_, attackerPriv := tr.newIdentity(t)
	message, sig := signInstruction(t, attackerPriv, challengeInstruction{
		Action:    actionJoinChallenge,
		Challenge: challenge.Address,
	})
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/join",
		JoinRequest{
			User:      hex.EncodeToString(victim),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "10000000", tr.balance(t, victim))

	// No participant record was created
	getResp := tr.request(
		t,
		http.MethodGet,
		"/api/v0/challenges/"+challenge.Address+
			"/participants/"+hex.EncodeToString(victim),
		nil,
	)
	require.Equal(t, http.StatusNotFound, getResp.Code)
}

func TestJoinChallengeInstructionMismatch(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")

	// Valid signature, but the signed instruction names a different
	// challenge
	other := make([]byte, 32)
	message, sig := signInstruction(t, userPriv, challengeInstruction{
		Action:    actionJoinChallenge,
		Challenge: hex.EncodeToString(other),
	})
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/join",
		JoinRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "10000000", tr.balance(t, user))
}

func TestJoinChallengeInsufficientFunds(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)

	resp := tr.join(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusPaymentRequired, resp.Code)
}

// signedTelemetry builds a device telemetry message signed by the user's
// key in the shape a device client submits
func signedTelemetry(
	priv ed25519.PrivateKey,
	steps uint32,
) ([]byte, string) {
	message := fmt.Appendf(
		nil,
		`{"timestamp":"%d","data":{"steps":%d}}`,
		time.Now().Unix(),
		steps,
	)
	sig := ed25519.Sign(priv, message)
	return message, hex.EncodeToString(sig)
}

func TestSync(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")
	resp := tr.join(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusCreated, resp.Code)
	// Move into the challenge window
	tr.clock.Add(3600)

	message, sig := signedTelemetry(userPriv, 1234)
	resp = tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/sync",
		SyncRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	var participant ParticipantResponse
	require.NoError(
		t,
		json.Unmarshal(resp.Body.Bytes(), &participant),
	)
	assert.Equal(t, []uint32{1234}, participant.History)
	assert.True(t, participant.Completed)
}

func TestSyncBadDeviceSignature(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")
	resp := tr.join(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusCreated, resp.Code)
	tr.clock.Add(3600)

	// Signed by a key other than the submitting user's
	_, otherPriv := tr.newIdentity(t)
	message, sig := signedTelemetry(otherPriv, 1234)
	resp = tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/sync",
		SyncRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusForbidden, resp.Code)

	// Nothing was recorded for the participant
	getResp := tr.request(
		t,
		http.MethodGet,
		"/api/v0/challenges/"+challenge.Address+
			"/participants/"+hex.EncodeToString(user),
		nil,
	)
	require.Equal(t, http.StatusOK, getResp.Code)
	var participant ParticipantResponse
	require.NoError(
		t,
		json.Unmarshal(getResp.Body.Bytes(), &participant),
	)
	assert.Empty(t, participant.History)
	assert.False(t, participant.Completed)
}

func TestSyncMissingSteps(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)

	message := []byte(`{"timestamp":"0","data":{}}`)
	sig := hex.EncodeToString(ed25519.Sign(userPriv, message))
	resp := tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/sync",
		SyncRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestWithdraw(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")
	resp := tr.join(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusCreated, resp.Code)
	tr.clock.Add(3600)

	message, sig := signedTelemetry(userPriv, 1500)
	resp = tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/sync",
		SyncRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	// Too early while the window is still open
	resp = tr.withdraw(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	// Past the end of the window
	tr.clock.Add(2 * 86400)
	resp = tr.withdraw(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusOK, resp.Code)
	var receipt ReceiptResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &receipt))
	assert.Equal(t, "10000000", receipt.Amount)

	// Second claim is rejected
	resp = tr.withdraw(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestWithdrawWrongSigner(t *testing.T) {
	tr := newTestRelay(t)
	creator, creatorPriv := tr.newIdentity(t)
	challenge := tr.createChallenge(t, creator, creatorPriv, 3600)
	user, userPriv := tr.newIdentity(t)
	tr.deposit(t, user, "10000000")
	resp := tr.join(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusCreated, resp.Code)
	tr.clock.Add(3600)

	message, sig := signedTelemetry(userPriv, 1500)
	resp = tr.request(
		t,
		http.MethodPost,
		"/api/v0/challenges/"+challenge.Address+"/sync",
		SyncRequest{
			User:      hex.EncodeToString(user),
			Message:   message,
			Signature: sig,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	tr.clock.Add(2 * 86400)

	// A third party cannot claim the participant's reward
	_, attackerPriv := tr.newIdentity(t)
	resp = tr.withdraw(t, challenge.Address, user, attackerPriv)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "0", tr.balance(t, user))

	// The participant's own claim still works
	resp = tr.withdraw(t, challenge.Address, user, userPriv)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "10000000", tr.balance(t, user))
}
