//go:build windows

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

package keystore

import "os"

// checkOpenFilePermissions is a no-op on Windows. POSIX mode bits are not
// meaningful there; access control comes from the file's DACL, which is
// inherited from the containing directory.
func checkOpenFilePermissions(_ *os.File) error {
	return nil
}
