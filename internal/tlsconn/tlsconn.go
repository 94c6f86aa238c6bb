// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tlsconn establishes the mutually-authenticated, certificate-pinned
// TLS connection a session is built on top of, and owns the request-id
// counter for the lifetime of that connection.
package tlsconn

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"

	"github.com/wfraser/stget/internal/deviceid"
	"github.com/wfraser/stget/internal/logger"
)

var l = logger.New("tlsconn")

// ALPN is the protocol identifier offered during the TLS handshake.
const ALPN = "bep/1.0"

// DefaultPort is used when the caller's address has no explicit port.
const DefaultPort = "22000"

// ErrDeviceIDMismatch is returned when none of the certificates presented by
// the peer hash to the expected device id.
type ErrDeviceIDMismatch struct {
	Expected string
	Got      []string
}

func (e ErrDeviceIDMismatch) Error() string {
	return fmt.Sprintf("device id mismatch: expected %s, peer presented %v", e.Expected, e.Got)
}

// Session wraps the established TLS connection and the per-session state the
// protocol engine needs on top of it: the underlying TCP socket (for e.g.
// setting deadlines) and a monotonically increasing request-id counter.
//
// A Session is owned by a single caller and is not safe for concurrent use.
type Session struct {
	TCP        net.Conn
	TLS        net.Conn // always a *tls.Conn outside of tests
	DeviceName string

	nextRequestID int32
}

// NextRequestID returns the next request id to use for an outbound Request,
// starting at 0 and incrementing monotonically for the life of the session.
func (s *Session) NextRequestID() int32 {
	id := s.nextRequestID
	s.nextRequestID++
	return id
}

// Dial opens a TCP connection to addr (host[:port], default port
// DefaultPort), then performs a mutually-authenticated TLS handshake pinned
// to expectedDeviceID: any certificate the peer presents must hash (SHA-256
// over the raw DER bytes) to that device id, or the handshake is rejected.
//
// cert is the client's own certificate and key, sent so the peer can perform
// the reciprocal check.
func Dial(addr string, expectedDeviceID string, cert tls.Certificate, localDeviceName string) (*Session, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
		port = DefaultPort
	}

	tcp, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("tlsconn: dial %s: %w", addr, err)
	}

	cfg := &tls.Config{
		Certificates:          []tls.Certificate{cert},
		InsecureSkipVerify:    true, // identity is established by pinning, not by CA chain or hostname
		NextProtos:            []string{ALPN},
		MinVersion:            tls.VersionTLS12,
		VerifyPeerCertificate: pinnedVerifier(expectedDeviceID),
	}

	tlsConn := tls.Client(tcp, cfg)
	if err := tlsConn.Handshake(); err != nil {
		tcp.Close()
		return nil, fmt.Errorf("tlsconn: handshake with %s: %w", addr, err)
	}

	l.Debugf("handshake with %s complete, negotiated proto %q", addr, tlsConn.ConnectionState().NegotiatedProtocol)

	return &Session{
		TCP:        tcp,
		TLS:        tlsConn,
		DeviceName: localDeviceName,
	}, nil
}

// pinnedVerifier builds a tls.Config.VerifyPeerCertificate callback that
// accepts the handshake iff at least one certificate in the chain presented
// by the peer hashes to expectedDeviceID. No CA chain validation and no
// hostname match is performed; see deviceid for the encoding.
func pinnedVerifier(expectedDeviceID string) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		var got []string
		for _, raw := range rawCerts {
			hash := sha256.Sum256(raw)
			id := deviceid.FromHash(hash)
			got = append(got, id)
			if id == expectedDeviceID {
				return nil
			}
		}
		return ErrDeviceIDMismatch{Expected: expectedDeviceID, Got: got}
	}
}
