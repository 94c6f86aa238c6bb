// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package framing implements the BEP wire framing: the once-per-direction
// Hello frame, and the Header/body frames used by every other message,
// including transparent LZ4 body decompression.
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/wfraser/stget/internal/bep"
)

// HelloMagic precedes the Hello message in each direction, network byte
// order.
const HelloMagic uint32 = 0x2EA7D90B

// ErrIncomplete is returned by the Read* functions when buf does not yet
// hold a complete frame; the caller should read more bytes from the
// transport and retry with the grown buffer.
var ErrIncomplete = errors.New("framing: incomplete frame")

// WriteHello serializes a Hello message in its magic-prefixed wire form.
func WriteHello(h bep.Hello) []byte {
	body := h.Marshal()
	if len(body) > 0xFFFF {
		panic("framing: hello body too large")
	}
	buf := make([]byte, 6+len(body))
	binary.BigEndian.PutUint32(buf[0:4], HelloMagic)
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(body)))
	copy(buf[6:], body)
	return buf
}

// ReadHello parses a Hello frame from the front of buf. On success it
// returns the number of bytes consumed; on a short buffer it returns
// ErrIncomplete and the caller should wait for more data.
func ReadHello(buf []byte) (consumed int, hello bep.Hello, err error) {
	if len(buf) < 6 {
		return 0, hello, ErrIncomplete
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != HelloMagic {
		return 0, hello, fmt.Errorf("framing: bad hello magic %#08x", magic)
	}
	length := int(binary.BigEndian.Uint16(buf[4:6]))
	total := 6 + length
	if len(buf) < total {
		return 0, hello, ErrIncomplete
	}
	if err := hello.Unmarshal(buf[6:total]); err != nil {
		return 0, hello, fmt.Errorf("framing: bad hello body: %w", err)
	}
	return total, hello, nil
}

// WriteFrame serializes a Header + body frame. The client never compresses
// its own output; compression is always None on write.
func WriteFrame(msgType bep.MessageType, body []byte) []byte {
	header := bep.Header{Type: msgType, Compression: bep.CompressionNone}
	hdrBytes := header.Marshal()
	if len(hdrBytes) > 0xFFFF {
		panic("framing: header too large")
	}

	buf := make([]byte, 0, 2+len(hdrBytes)+4+len(body))
	var tmp2 [2]byte
	binary.BigEndian.PutUint16(tmp2[:], uint16(len(hdrBytes)))
	buf = append(buf, tmp2[:]...)
	buf = append(buf, hdrBytes...)

	var tmp4 [4]byte
	binary.BigEndian.PutUint32(tmp4[:], uint32(len(body)))
	buf = append(buf, tmp4[:]...)
	buf = append(buf, body...)
	return buf
}

// ReadFrame parses a Header + body frame from the front of buf, transparently
// decompressing an LZ4-compressed body. On success it returns the number of
// bytes consumed from buf and the decoded (decompressed) body. On a short
// buffer it returns ErrIncomplete.
func ReadFrame(buf []byte) (consumed int, header bep.Header, body []byte, err error) {
	if len(buf) < 2 {
		return 0, header, nil, ErrIncomplete
	}
	hdrLen := int(binary.BigEndian.Uint16(buf[0:2]))
	if len(buf) < 2+hdrLen+4 {
		return 0, header, nil, ErrIncomplete
	}
	if err := header.Unmarshal(buf[2 : 2+hdrLen]); err != nil {
		return 0, header, nil, fmt.Errorf("framing: bad header: %w", err)
	}

	bodyLenOff := 2 + hdrLen
	bodyLen := int(binary.BigEndian.Uint32(buf[bodyLenOff : bodyLenOff+4]))
	total := bodyLenOff + 4 + bodyLen
	if len(buf) < total {
		return 0, header, nil, ErrIncomplete
	}
	raw := buf[bodyLenOff+4 : total]

	switch header.Compression {
	case bep.CompressionNone:
		body = raw
	case bep.CompressionLZ4:
		body, err = decompressLZ4(raw)
		if err != nil {
			return 0, header, nil, err
		}
	default:
		return 0, header, nil, fmt.Errorf("framing: unknown compression scheme %d", header.Compression)
	}
	return total, header, body, nil
}

func decompressLZ4(raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("framing: lz4 body shorter than the uncompressed-length prefix")
	}
	uncompLen := binary.BigEndian.Uint32(raw[0:4])
	compressed := raw[4:]

	dst := make([]byte, uncompLen)
	n, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("framing: lz4 decompress: %w", err)
	}
	if uint32(n) != uncompLen {
		return nil, fmt.Errorf("framing: lz4 decompressed to %d bytes, header declared %d", n, uncompLen)
	}
	return dst, nil
}
