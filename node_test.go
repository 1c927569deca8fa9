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

package strider

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testOracleKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return key
}

func TestNewRequiresOracleKey(t *testing.T) {
	_, err := New(NewConfig())
	require.Error(t, err)
}

func TestNodeRunStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	n, err := New(NewConfig(
		WithOracleKey(testOracleKey(t)),
		WithDataDir(t.TempDir()),
		WithRelayListenAddress("127.0.0.1:0"),
		WithShutdownTimeout(10*time.Second),
	))
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(t.Context())
	}()

	// Give Run a moment to bring everything up, then verify the state
	// machine is wired
	require.Eventually(t, func() bool {
		return n.Core() != nil
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, n.Stop())
	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("node did not shut down in time")
	}

	// Stop is idempotent
	assert.NoError(t, n.Stop())
}
