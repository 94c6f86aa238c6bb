// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package deviceid implements the Syncthing device ID codec: a bidirectional
// mapping between a 32-byte certificate hash and its 63-character grouped,
// checksummed human-readable form.
package deviceid

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/wfraser/stget/internal/luhn"
)

// ErrMalformed is returned when a device ID string fails to parse: wrong
// length, an out-of-alphabet character, or a bad check digit.
type ErrMalformed struct {
	Reason string
}

func (e ErrMalformed) Error() string {
	return fmt.Sprintf("malformed device ID: %s", e.Reason)
}

const encodedLen = 63 // 8 groups of 7, joined by 7 dashes

// FromHash encodes a 32-byte certificate hash into its 63-character grouped
// device ID form.
func FromHash(hash [32]byte) string {
	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(hash[:])
	// s is 52 characters (256 bits / 5 bits-per-char, rounded up).
	var groups [4]string
	for i := 0; i < 4; i++ {
		g := s[i*13 : (i+1)*13]
		c, err := luhn.Base32.Generate(g)
		if err != nil {
			// s is always drawn from luhn.Base32's alphabet; this cannot fail.
			panic(err)
		}
		groups[i] = fmt.Sprintf("%s%c", g, c)
	}
	return chunkify(groups[0] + groups[1] + groups[2] + groups[3])
}

// ToHash decodes a 63-character grouped device ID back into its 32-byte
// certificate hash, validating the four check characters along the way.
func ToHash(id string) ([32]byte, error) {
	var hash [32]byte

	if len(id) != encodedLen {
		return hash, ErrMalformed{Reason: fmt.Sprintf("want %d characters, got %d", encodedLen, len(id))}
	}

	unchunked := unchunkify(id)
	if len(unchunked) != 56 {
		return hash, ErrMalformed{Reason: "unexpected separator placement"}
	}

	raw := make([]byte, 0, 52)
	for i := 0; i < 4; i++ {
		group := unchunked[i*14 : (i+1)*14-1]
		check := unchunked[(i+1)*14-1]
		want, err := luhn.Base32.Generate(group)
		if err != nil {
			return hash, ErrMalformed{Reason: err.Error()}
		}
		if byte(want) != check {
			return hash, ErrMalformed{Reason: fmt.Sprintf("check character mismatch in group %d: got %c, want %c", i, check, want)}
		}
		raw = append(raw, group...)
	}

	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(string(raw))
	if err != nil {
		return hash, ErrMalformed{Reason: err.Error()}
	}
	if len(decoded) != 32 {
		return hash, ErrMalformed{Reason: fmt.Sprintf("decoded to %d bytes, want 32", len(decoded))}
	}
	copy(hash[:], decoded)
	return hash, nil
}

func chunkify(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i += 7 {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(s[i : i+7])
	}
	return b.String()
}

func unchunkify(s string) string {
	return strings.ReplaceAll(s, "-", "")
}
