// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package luhn generates and validates Luhn mod N check digits.
package luhn

import (
	"fmt"
	"strings"
)

// An Alphabet is a string of N characters, representing the digits of a
// given base N.
type Alphabet string

// Base32 is the RFC 4648 base-32 alphabet used by the device ID codec. Note
// that the starting factor in Generate is 1 rather than the 2 a standard
// Luhn check would use; that, plus the left-to-right scan direction, is a
// deliberate deviation needed for wire compatibility with the device ID
// scheme this package backs.
var Base32 Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// Generate returns a check digit for the string s, which should be composed
// of characters from the Alphabet a.
func (a Alphabet) Generate(s string) (rune, error) {
	if err := a.check(); err != nil {
		return 0, err
	}

	factor := 1
	sum := 0
	n := len(a)

	for i := range s {
		codepoint := strings.IndexByte(string(a), s[i])
		if codepoint == -1 {
			return 0, fmt.Errorf("digit %q not valid in alphabet %q", s[i], a)
		}
		addend := factor * codepoint
		if factor == 2 {
			factor = 1
		} else {
			factor = 2
		}
		addend = (addend / n) + (addend % n)
		sum += addend
	}
	remainder := sum % n
	checkCodepoint := (n - remainder) % n
	return rune(a[checkCodepoint]), nil
}

// Validate returns true if the last character of the string s is correct,
// for a string s composed of characters in the alphabet a.
func (a Alphabet) Validate(s string) bool {
	if len(s) == 0 {
		return false
	}
	t := s[:len(s)-1]
	c, err := a.Generate(t)
	if err != nil {
		return false
	}
	return rune(s[len(s)-1]) == c
}

// check returns an error if the given alphabet does not consist of unique
// characters.
func (a Alphabet) check() error {
	cm := make(map[byte]bool, len(a))
	for i := range a {
		if cm[a[i]] {
			return fmt.Errorf("digit %q non-unique in alphabet %q", a[i], a)
		}
		cm[a[i]] = true
	}
	return nil
}
