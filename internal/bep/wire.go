// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bep defines the Block Exchange Protocol message schema: the set of
// structures carried inside Hello and the framed messages, and their
// wire-format (de)serialization.
//
// This package is the "generated structural definitions" collaborator the
// core protocol engine treats as an opaque, externally-supplied schema (see
// the top-level design notes): the core never reaches into protobuf wire
// details itself, it only calls Marshal/Unmarshal here. Each message's wire
// layout follows standard protobuf encoding (tag/varint/length-delimited),
// written directly against encoding/binary rather than through a reflection-
// based protobuf runtime, since no protoc toolchain is invoked to generate
// this glue.
package bep

import (
	"encoding/binary"
	"fmt"
)

type wireType uint8

const (
	wireVarint wireType = 0
	wire64bit  wireType = 1
	wireBytes  wireType = 2
	wire32bit  wireType = 5
)

// writer accumulates a protobuf-encoded message body.
type writer struct {
	buf []byte
}

func (w *writer) tag(field int, wt wireType) {
	w.varint(uint64(field)<<3 | uint64(wt))
}

func (w *writer) varint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf = append(w.buf, tmp[:n]...)
}

func (w *writer) uint64Field(field int, v uint64) {
	if v == 0 {
		return
	}
	w.tag(field, wireVarint)
	w.varint(v)
}

func (w *writer) int64Field(field int, v int64) {
	w.uint64Field(field, uint64(v))
}

func (w *writer) int32Field(field int, v int32) {
	w.uint64Field(field, uint64(int64(v)))
}

func (w *writer) boolField(field int, v bool) {
	if !v {
		return
	}
	w.tag(field, wireVarint)
	w.varint(1)
}

func (w *writer) stringField(field int, s string) {
	if s == "" {
		return
	}
	w.bytesField(field, []byte(s))
}

func (w *writer) bytesField(field int, b []byte) {
	if len(b) == 0 {
		return
	}
	w.tag(field, wireBytes)
	w.varint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) messageField(field int, sub []byte) {
	if sub == nil {
		return
	}
	w.tag(field, wireBytes)
	w.varint(uint64(len(sub)))
	w.buf = append(w.buf, sub...)
}

// reader consumes a protobuf-encoded message body.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) done() bool {
	return r.pos >= len(r.data)
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("bep: malformed varint")
	}
	r.pos += n
	return v, nil
}

func (r *reader) tag() (field int, wt wireType, err error) {
	v, err := r.uvarint()
	if err != nil {
		return 0, 0, err
	}
	return int(v >> 3), wireType(v & 0x7), nil
}

func (r *reader) bytesValue() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	end := r.pos + int(n)
	if n > uint64(len(r.data)-r.pos) || end < r.pos {
		return nil, fmt.Errorf("bep: length-delimited field overruns message")
	}
	v := r.data[r.pos:end]
	r.pos = end
	return v, nil
}

func (r *reader) stringValue() (string, error) {
	b, err := r.bytesValue()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) skip(wt wireType) error {
	switch wt {
	case wireVarint:
		_, err := r.uvarint()
		return err
	case wire64bit:
		if len(r.data)-r.pos < 8 {
			return fmt.Errorf("bep: truncated 64-bit field")
		}
		r.pos += 8
		return nil
	case wire32bit:
		if len(r.data)-r.pos < 4 {
			return fmt.Errorf("bep: truncated 32-bit field")
		}
		r.pos += 4
		return nil
	case wireBytes:
		_, err := r.bytesValue()
		return err
	default:
		return fmt.Errorf("bep: unknown wire type %d", wt)
	}
}
