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
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"
)

// Txn is a wrapper that coordinates both metadata and blob transactions.
// Metadata and blob are first-class siblings, not nested. The metadata
// store is the source of truth: the blob transaction commits first so a
// metadata commit failure leaves at worst an orphan attestation blob,
// never a record without its attestation.
type Txn struct {
	db          *Database
	metadataTxn *gorm.DB
	blobTxn     *badger.Txn
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if db.metadata != nil {
		t.metadataTxn = db.metadata.Begin()
	}
	if db.blob != nil {
		t.blobTxn = db.blob.NewTransaction(readWrite)
	}
	return t
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the underlying metadata transaction handle
func (t *Txn) Metadata() *gorm.DB {
	return t.metadataTxn
}

// Blob returns the blob transaction handle
func (t *Txn) Blob() *badger.Txn {
	return t.blobTxn
}

// Do executes the specified function in the context of the transaction. Any errors returned will result
// in the transaction being rolled back
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if err2 := t.Rollback(); err2 != nil {
			return fmt.Errorf(
				"rollback failed: %w: original error: %w",
				err2,
				err,
			)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	// No need to commit for read-only, but we do want to free up resources
	if !t.readWrite {
		return t.rollback()
	}
	var err error
	if t.blobTxn != nil {
		if blobErr := t.blobTxn.Commit(); blobErr != nil {
			err = errors.Join(err, blobErr)
		}
	}
	if t.metadataTxn != nil {
		if metaErr := t.metadataTxn.Commit().Error; metaErr != nil {
			err = errors.Join(err, metaErr)
		}
	}
	t.finished = true
	if err == nil {
		t.db.metrics.IncTxnCommit()
	}
	return err
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	var err error
	if t.blobTxn != nil {
		t.blobTxn.Discard()
	}
	if t.metadataTxn != nil {
		if metaErr := t.metadataTxn.Rollback().Error; metaErr != nil {
			err = errors.Join(err, metaErr)
		}
	}
	t.finished = true
	// Read-only transactions also release through here; only count
	// abandoned writes
	if t.readWrite {
		t.db.metrics.IncTxnRollback()
	}
	return err
}
