// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package luhn_test

import (
	"testing"

	"github.com/wfraser/stget/internal/luhn"
)

func TestGenerate(t *testing.T) {
	a := luhn.Alphabet("abcdef")
	c, err := a.Generate("abcdef")
	if err != nil {
		t.Fatal(err)
	}
	if c != 'e' {
		t.Errorf("incorrect check digit %c != e", c)
	}

	a = luhn.Alphabet("0123456789")
	c, err = a.Generate("7992739871")
	if err != nil {
		t.Fatal(err)
	}
	if c != '3' {
		t.Errorf("incorrect check digit %c != 3", c)
	}
}

func TestInvalidString(t *testing.T) {
	a := luhn.Alphabet("ABC")
	_, err := a.Generate("7992739871")
	if err == nil {
		t.Error("unexpected nil error")
	}
}

func TestBadAlphabet(t *testing.T) {
	a := luhn.Alphabet("01234566789")
	_, err := a.Generate("7992739871")
	if err == nil {
		t.Error("unexpected nil error")
	}
}

func TestValidate(t *testing.T) {
	a := luhn.Alphabet("abcdef")
	if !a.Validate("abcdefe") {
		t.Errorf("incorrect validation response for abcdefe")
	}
	if a.Validate("abcdefd") {
		t.Errorf("incorrect validation response for abcdefd")
	}
}

func TestBase32KnownGroup(t *testing.T) {
	// "JDF55R5QQJBXU" (13 chars) must check to 'N'.
	c, err := luhn.Base32.Generate("JDF55R5QQJBXU")
	if err != nil {
		t.Fatal(err)
	}
	if c != 'N' {
		t.Errorf("incorrect check digit %c != N", c)
	}
}
