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
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/strider/address"
	"github.com/blinklabs-io/strider/core"
)

const apiVersion = "0.1.0"

// writeJSON writes a JSON response with the given status code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// writeCoreError maps a state machine error onto an HTTP status and
// writes it out.
func writeCoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errStr := "Internal Server Error"
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		status = http.StatusBadRequest
		errStr = "Bad Request"
	case errors.Is(err, core.ErrChallengeNotFound),
		errors.Is(err, core.ErrNotParticipant):
		status = http.StatusNotFound
		errStr = "Not Found"
	case errors.Is(err, core.ErrChallengeExists),
		errors.Is(err, core.ErrAlreadyJoined),
		errors.Is(err, core.ErrAlreadyClaimed):
		status = http.StatusConflict
		errStr = "Conflict"
	case errors.Is(err, core.ErrNotInvited),
		errors.Is(err, core.ErrUnauthorized):
		status = http.StatusForbidden
		errStr = "Forbidden"
	case errors.Is(err, core.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
		errStr = "Payment Required"
	case errors.Is(err, core.ErrChallengeStarted),
		errors.Is(err, core.ErrOutsideWindow),
		errors.Is(err, core.ErrTooEarly),
		errors.Is(err, core.ErrNotEligible):
		status = http.StatusUnprocessableEntity
		errStr = "Unprocessable Entity"
	}
	message := "internal error"
	if status != http.StatusInternalServerError {
		message = err.Error()
	}
	writeError(w, status, errStr, message)
}

// pathAddress decodes the {address} path segment.
func pathAddress(req *http.Request) (address.Address, error) {
	return address.FromHex(req.PathValue("address"))
}

// parseIdentity decodes a hex-encoded ed25519 public key.
func parseIdentity(s string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid identity encoding: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("invalid identity length")
	}
	return ed25519.PublicKey(raw), nil
}

// parseAmount decodes a decimal-string value amount.
func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	return amount, nil
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

// verifyInstruction checks the actor's ed25519 signature over the raw
// instruction bytes. It writes the error response itself and reports
// whether the request may proceed.
func (r *Relay) verifyInstruction(
	w http.ResponseWriter,
	actor ed25519.PublicKey,
	actorHex string,
	message json.RawMessage,
	signature string,
) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid signature encoding",
		)
		return false
	}
	if len(message) == 0 || !ed25519.Verify(actor, message, sig) {
		r.logger.Warn(
			"rejected instruction with bad signature",
			"actor", actorHex,
		)
		writeError(
			w,
			http.StatusForbidden,
			"Forbidden",
			"instruction signature verification failed",
		)
		return false
	}
	return true
}

// decodeChallengeInstruction validates a signed join/withdraw payload
// against the expected action and the challenge address from the URL.
func decodeChallengeInstruction(
	message json.RawMessage,
	action string,
	challengeAddr address.Address,
) error {
	var instr challengeInstruction
	if err := json.Unmarshal(message, &instr); err != nil {
		return errors.New("invalid instruction message")
	}
	if instr.Action != action {
		return errors.New("instruction action mismatch")
	}
	if instr.Challenge != challengeAddr.String() {
		return errors.New("instruction challenge mismatch")
	}
	return nil
}

func challengeResponse(view *core.ChallengeView) ChallengeResponse {
	return ChallengeResponse{
		Address:                view.Address.String(),
		Creator:                hex.EncodeToString(view.Creator),
		Name:                   view.Name,
		Duration:               view.Duration,
		StakeAmount:            formatAmount(view.StakeAmount),
		TargetSteps:            view.TargetSteps,
		StartTime:              view.StartTime,
		EndTime:                view.EndTime,
		TotalParticipants:      view.TotalParticipants,
		SuccessfulParticipants: view.SuccessfulParticipants,
		Pool:                   formatAmount(view.Pool),
		IsPrivate:              view.IsPrivate,
	}
}

func participantResponse(view *core.ParticipantView) ParticipantResponse {
	history := view.History
	if history == nil {
		history = []uint32{}
	}
	return ParticipantResponse{
		Address:       view.Address.String(),
		Challenge:     view.Challenge.String(),
		User:          hex.EncodeToString(view.User),
		History:       history,
		DaysCompleted: view.DaysCompleted,
		Completed:     view.Completed,
		RewardTaken:   view.RewardTaken,
	}
}

// handleRoot handles GET / and returns API metadata.
func (r *Relay) handleRoot(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, RootResponse{
		URL:     "https://blinklabs.io/",
		Version: apiVersion,
	})
}

// handleHealth handles GET /health.
func (r *Relay) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleCreateChallenge handles POST /api/v0/challenges. The creator's
// signature over the instruction message is verified before anything is
// created.
func (r *Relay) handleCreateChallenge(
	w http.ResponseWriter,
	req *http.Request,
) {
	var body CreateChallengeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	creator, err := parseIdentity(body.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if !r.verifyInstruction(
		w,
		creator,
		body.Creator,
		body.Message,
		body.Signature,
	) {
		return
	}
	var instr createInstruction
	if err := json.Unmarshal(body.Message, &instr); err != nil ||
		instr.Action != actionCreateChallenge {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid instruction message",
		)
		return
	}
	stakeAmount, err := parseAmount(instr.StakeAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	group := make([][]byte, 0, len(instr.Group))
	for _, member := range instr.Group {
		identity, err := parseIdentity(member)
		if err != nil {
			writeError(
				w,
				http.StatusBadRequest,
				"Bad Request",
				"group: "+err.Error(),
			)
			return
		}
		group = append(group, identity)
	}
	view, err := r.core.CreateChallenge(core.ChallengeParams{
		Creator:     creator,
		Name:        instr.Name,
		Duration:    instr.Duration,
		StakeAmount: stakeAmount,
		TargetSteps: instr.TargetSteps,
		StartTime:   instr.StartTime,
		IsPrivate:   instr.IsPrivate,
		Group:       group,
	})
	if err != nil {
		r.logger.Error(
			"failed to create challenge",
			"error", err,
		)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, challengeResponse(view))
}

// handleGetChallenge handles GET /api/v0/challenges/{address}.
func (r *Relay) handleGetChallenge(
	w http.ResponseWriter,
	req *http.Request,
) {
	challengeAddr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid challenge address",
		)
		return
	}
	view, err := r.core.Challenge(challengeAddr)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challengeResponse(view))
}

// handleJoinChallenge handles POST /api/v0/challenges/{address}/join.
// Joining moves the stake out of the user's account, so the instruction
// must carry the user's own signature.
func (r *Relay) handleJoinChallenge(
	w http.ResponseWriter,
	req *http.Request,
) {
	challengeAddr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid challenge address",
		)
		return
	}
	var body JoinRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	user, err := parseIdentity(body.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if !r.verifyInstruction(
		w,
		user,
		body.User,
		body.Message,
		body.Signature,
	) {
		return
	}
	if err := decodeChallengeInstruction(
		body.Message,
		actionJoinChallenge,
		challengeAddr,
	); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	view, err := r.core.JoinChallenge(challengeAddr, user)
	if err != nil {
		r.logger.Error(
			"failed to join challenge",
			"error", err,
		)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantResponse(view))
}

// handleGetParticipant handles
// GET /api/v0/challenges/{address}/participants/{user}.
func (r *Relay) handleGetParticipant(
	w http.ResponseWriter,
	req *http.Request,
) {
	challengeAddr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid challenge address",
		)
		return
	}
	user, err := parseIdentity(req.PathValue("user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	view, err := r.core.Participant(challengeAddr, user)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participantResponse(view))
}

// handleSync handles POST /api/v0/challenges/{address}/sync. The device
// signature is checked against the submitting user's identity before
// anything else; only a verified message is countersigned with the oracle
// key and relayed to the state machine.
func (r *Relay) handleSync(
	w http.ResponseWriter,
	req *http.Request,
) {
	challengeAddr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid challenge address",
		)
		return
	}
	var body SyncRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	user, err := parseIdentity(body.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	deviceSig, err := hex.DecodeString(body.Signature)
	if err != nil || len(deviceSig) != ed25519.SignatureSize {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid signature encoding",
		)
		return
	}
	if len(body.Message) == 0 ||
		!ed25519.Verify(user, body.Message, deviceSig) {
		r.logger.Warn(
			"rejected telemetry with bad device signature",
			"user", body.User,
		)
		writeError(
			w,
			http.StatusForbidden,
			"Forbidden",
			"device signature verification failed",
		)
		return
	}
	var message syncMessage
	if err := json.Unmarshal(body.Message, &message); err != nil ||
		message.Data.Steps == nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"telemetry message missing step count",
		)
		return
	}
	attestation := core.Attestation{
		Message:   body.Message,
		Signature: ed25519.Sign(r.config.OracleKey, body.Message),
		Signer:    r.config.OracleKey.Public().(ed25519.PublicKey),
	}
	view, err := r.core.SyncProgress(
		challengeAddr,
		user,
		*message.Data.Steps,
		attestation,
	)
	if err != nil {
		r.logger.Error(
			"failed to sync progress",
			"error", err,
		)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participantResponse(view))
}

// handleWithdraw handles POST /api/v0/challenges/{address}/withdraw.
// Only the participant may claim their reward, so the instruction must
// carry their signature.
func (r *Relay) handleWithdraw(
	w http.ResponseWriter,
	req *http.Request,
) {
	challengeAddr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid challenge address",
		)
		return
	}
	var body WithdrawRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	user, err := parseIdentity(body.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if !r.verifyInstruction(
		w,
		user,
		body.User,
		body.Message,
		body.Signature,
	) {
		return
	}
	if err := decodeChallengeInstruction(
		body.Message,
		actionWithdrawReward,
		challengeAddr,
	); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	receipt, err := r.core.WithdrawReward(challengeAddr, user)
	if err != nil {
		r.logger.Error(
			"failed to withdraw reward",
			"error", err,
		)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Challenge: receipt.Challenge.String(),
		User:      hex.EncodeToString(receipt.User),
		Amount:    formatAmount(receipt.Amount),
	})
}

// handleGetAccount handles GET /api/v0/accounts/{address}. Identities and
// derived addresses are both 32 bytes, so one endpoint serves user and
// vault balances alike.
func (r *Relay) handleGetAccount(
	w http.ResponseWriter,
	req *http.Request,
) {
	addr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid account address",
		)
		return
	}
	balance, err := r.core.Balance(addr.Bytes())
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address: addr.String(),
		Balance: formatAmount(balance),
	})
}

// handleDeposit handles POST /api/v0/accounts/{address}/deposits. This is
// the value inflow boundary: deposits originate outside the system and
// credit the target account.
func (r *Relay) handleDeposit(
	w http.ResponseWriter,
	req *http.Request,
) {
	addr, err := pathAddress(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid account address",
		)
		return
	}
	var body DepositRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	amount, err := parseAmount(body.Amount)
	if err != nil || amount == 0 {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid deposit amount",
		)
		return
	}
	if err := r.core.Database().CreditAccount(
		addr.Bytes(),
		amount,
		nil,
	); err != nil {
		r.logger.Error(
			"failed to credit account",
			"error", err,
		)
		writeCoreError(w, err)
		return
	}
	balance, err := r.core.Balance(addr.Bytes())
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address: addr.String(),
		Balance: formatAmount(balance),
	})
}
