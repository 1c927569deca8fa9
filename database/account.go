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

	"github.com/blinklabs-io/strider/database/models"
	"github.com/blinklabs-io/strider/database/types"
	"gorm.io/gorm"
)

// GetAccount returns the value-ledger account at the given address
func (d *Database) GetAccount(
	addr []byte,
	txn *Txn,
) (*models.Account, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var tmpAccount models.Account
	result := txn.Metadata().
		Where("address = ?", addr).
		First(&tmpAccount)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrAccountNotFound
		}
		return nil, result.Error
	}
	return &tmpAccount, nil
}

// EnsureAccount creates a zero-balance account at the given address if one
// does not already exist
func (d *Database) EnsureAccount(
	addr []byte,
	txn *Txn,
) (*models.Account, error) {
	if txn == nil {
		txn = d.Transaction(true)
		var tmpAccount *models.Account
		err := txn.Do(func(txn *Txn) error {
			var err error
			tmpAccount, err = d.EnsureAccount(addr, txn)
			return err
		})
		return tmpAccount, err
	}
	account, err := d.GetAccount(addr, txn)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, models.ErrAccountNotFound) {
		return nil, err
	}
	tmpAccount := models.Account{
		Address: addr,
	}
	if result := txn.Metadata().Create(&tmpAccount); result.Error != nil {
		return nil, result.Error
	}
	return &tmpAccount, nil
}

// CreditAccount adds value to an account, creating it if needed. This is the
// deposit half of the value-transfer boundary with the host environment.
func (d *Database) CreditAccount(
	addr []byte,
	amount uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.CreditAccount(addr, amount, txn)
		})
	}
	account, err := d.EnsureAccount(addr, txn)
	if err != nil {
		return err
	}
	account.Balance += types.Uint64(amount)
	result := txn.Metadata().
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("balance", account.Balance)
	return result.Error
}

// TransferValue atomically moves value between two accounts. The destination
// account is created if absent. Fails with ErrInsufficientFunds without
// touching either balance when the source cannot cover the amount.
func (d *Database) TransferValue(
	from []byte,
	to []byte,
	amount uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.TransferValue(from, to, amount, txn)
		})
	}
	fromAccount, err := d.GetAccount(from, txn)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return fmt.Errorf(
				"%w: account %x has no balance",
				models.ErrInsufficientFunds,
				from,
			)
		}
		return err
	}
	if uint64(fromAccount.Balance) < amount {
		return fmt.Errorf(
			"%w: balance %d, need %d",
			models.ErrInsufficientFunds,
			uint64(fromAccount.Balance),
			amount,
		)
	}
	toAccount, err := d.EnsureAccount(to, txn)
	if err != nil {
		return err
	}
	fromAccount.Balance -= types.Uint64(amount)
	toAccount.Balance += types.Uint64(amount)
	result := txn.Metadata().
		Model(&models.Account{}).
		Where("id = ?", fromAccount.ID).
		Update("balance", fromAccount.Balance)
	if result.Error != nil {
		return result.Error
	}
	result = txn.Metadata().
		Model(&models.Account{}).
		Where("id = ?", toAccount.ID).
		Update("balance", toAccount.Balance)
	return result.Error
}
