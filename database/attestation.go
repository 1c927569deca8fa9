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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/strider/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

// Attestation blobs are the raw signed oracle messages backing each recorded
// day, journaled alongside the metadata mutation for audit.

func attestationKey(participantAddr []byte, day int) []byte {
	return fmt.Appendf(nil, "attestation:%x:%d", participantAddr, day)
}

// SetAttestation journals the raw signed message for a participant's day
func (d *Database) SetAttestation(
	participantAddr []byte,
	day int,
	message []byte,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.SetAttestation(participantAddr, day, message, txn)
		})
	}
	return txn.Blob().Set(
		attestationKey(participantAddr, day),
		message,
	)
}

// GetAttestation returns the raw signed message recorded for a participant's
// day, or ErrBlobKeyNotFound if no attestation was journaled
func (d *Database) GetAttestation(
	participantAddr []byte,
	day int,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	item, err := txn.Blob().Get(attestationKey(participantAddr, day))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
