/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/friendsincode/nightwatch/internal/roster"
)

// Digest identifies a roster planned with a given seed. Two requests with
// the same digest produce the same timetable.
func Digest(ro *roster.Roster, seed int64) (string, error) {
	data, err := json.Marshal(ro)
	if err != nil {
		return "", err
	}
	// blake2b.New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(seed, 10)))
	return hex.EncodeToString(h.Sum(nil)), nil
}
