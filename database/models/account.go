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

package models

import (
	"errors"

	"github.com/blinklabs-io/strider/database/types"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account is the value ledger at the interface boundary: one row per
// address holding a balance in base units. User identities and derived
// vault addresses share this table.
type Account struct {
	Address []byte `gorm:"uniqueIndex;size:32"`
	ID      uint   `gorm:"primarykey"`
	Balance types.Uint64
}

func (Account) TableName() string {
	return "account"
}
