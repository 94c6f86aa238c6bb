// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package framing

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/pierrec/lz4/v4"

	"github.com/wfraser/stget/internal/bep"
)

func TestHelloRoundTrip(t *testing.T) {
	h := bep.Hello{DeviceName: "t", ClientName: "c", ClientVersion: "v"}
	buf := WriteHello(h)

	consumed, h2, err := ReadHello(buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(buf) {
		t.Errorf("consumed %d bytes, want %d", consumed, len(buf))
	}
	if h2 != h {
		t.Errorf("Hello roundtrip mismatch: %+v != %+v", h2, h)
	}
}

func TestHelloPartialRead(t *testing.T) {
	h := bep.Hello{DeviceName: "t", ClientName: "c", ClientVersion: "v"}
	buf := WriteHello(h)

	if _, _, err := ReadHello(buf[:5]); err != ErrIncomplete {
		t.Fatalf("ReadHello() with truncated buffer = %v, want ErrIncomplete", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	req := bep.Request{ID: 3, Folder: "f", Name: "n", Offset: 0, Size: 17}
	buf := WriteFrame(bep.MessageTypeRequest, req.Marshal())

	consumed, header, body, err := ReadFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(buf) {
		t.Errorf("consumed %d bytes, want %d", consumed, len(buf))
	}
	if header.Type != bep.MessageTypeRequest || header.Compression != bep.CompressionNone {
		t.Errorf("unexpected header: %+v", header)
	}
	var req2 bep.Request
	if err := req2.Unmarshal(body); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(req2, req) {
		t.Errorf("Request roundtrip mismatch: %+v != %+v", req2, req)
	}
}

func TestFramePartialData(t *testing.T) {
	req := bep.Request{ID: 1, Folder: "f", Name: "n"}
	buf := WriteFrame(bep.MessageTypeRequest, req.Marshal())

	// Split the 16-byte frame (2+2 header, 4 length, 8 body) at byte 5: the codec must signal
	// "need more", then succeed once the remainder is fed.
	split := 5
	if split > len(buf) {
		t.Fatalf("test frame too short (%d bytes) for the intended split", len(buf))
	}

	if _, _, _, err := ReadFrame(buf[:split]); err != ErrIncomplete {
		t.Fatalf("ReadFrame() on partial data = %v, want ErrIncomplete", err)
	}

	consumed, _, _, err := ReadFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(buf) {
		t.Errorf("consumed %d bytes, want %d", consumed, len(buf))
	}
}

func TestFrameLZ4RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("hello world, compress me please "), 20)

	dst := make([]byte, lz4.CompressBlockBound(len(payload)))
	var c lz4.Compressor
	n, err := c.CompressBlock(payload, dst)
	if err != nil {
		t.Fatal(err)
	}
	compressed := dst[:n]

	raw := make([]byte, 4+len(compressed))
	binary.BigEndian.PutUint32(raw[0:4], uint32(len(payload)))
	copy(raw[4:], compressed)

	header := bep.Header{Type: bep.MessageTypeResponse, Compression: bep.CompressionLZ4}
	hdrBytes := header.Marshal()

	buf := make([]byte, 0, 2+len(hdrBytes)+4+len(raw))
	var tmp2 [2]byte
	binary.BigEndian.PutUint16(tmp2[:], uint16(len(hdrBytes)))
	buf = append(buf, tmp2[:]...)
	buf = append(buf, hdrBytes...)
	var tmp4 [4]byte
	binary.BigEndian.PutUint32(tmp4[:], uint32(len(raw)))
	buf = append(buf, tmp4[:]...)
	buf = append(buf, raw...)

	consumed, gotHeader, body, err := ReadFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(buf) {
		t.Errorf("consumed %d bytes, want %d", consumed, len(buf))
	}
	if gotHeader.Compression != bep.CompressionLZ4 {
		t.Errorf("Compression = %v, want LZ4", gotHeader.Compression)
	}
	if !bytes.Equal(body, payload) {
		t.Errorf("decompressed body mismatch")
	}
}

func TestFrameLZ4LengthMismatch(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 99)

	dst := make([]byte, lz4.CompressBlockBound(len(payload)))
	var c lz4.Compressor
	n, err := c.CompressBlock(payload, dst)
	if err != nil {
		t.Fatal(err)
	}
	compressed := dst[:n]

	raw := make([]byte, 4+len(compressed))
	binary.BigEndian.PutUint32(raw[0:4], 100) // lies: only 99 bytes actually decode
	copy(raw[4:], compressed)

	header := bep.Header{Type: bep.MessageTypeResponse, Compression: bep.CompressionLZ4}
	hdrBytes := header.Marshal()

	buf := make([]byte, 0, 2+len(hdrBytes)+4+len(raw))
	var tmp2 [2]byte
	binary.BigEndian.PutUint16(tmp2[:], uint16(len(hdrBytes)))
	buf = append(buf, tmp2[:]...)
	buf = append(buf, hdrBytes...)
	var tmp4 [4]byte
	binary.BigEndian.PutUint32(tmp4[:], uint32(len(raw)))
	buf = append(buf, tmp4[:]...)
	buf = append(buf, raw...)

	if _, _, _, err := ReadFrame(buf); err == nil {
		t.Fatal("expected an error for mismatched LZ4 uncompressed length")
	}
}
