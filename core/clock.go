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

import "time"

// SecondsPerDay is the length of one challenge day
const SecondsPerDay = 86400

// EndTime returns the end of a challenge window given its start and duration
// in days
func EndTime(startTime uint64, duration uint16) uint64 {
	return startTime + uint64(duration)*SecondsPerDay
}

// DayIndex returns the day-of-challenge for the given time, or -1 if the
// time is before the challenge start
func DayIndex(startTime uint64, now time.Time) int {
	ts := now.Unix()
	if ts < 0 || uint64(ts) < startTime {
		return -1
	}
	return int((uint64(ts) - startTime) / SecondsPerDay)
}
