// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command stget opens a pull-only BEP session against a single peer,
// listing or fetching files from a shared folder.
package main

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/wfraser/stget/internal/client"
	"github.com/wfraser/stget/internal/deviceid"
	"github.com/wfraser/stget/internal/logger"
	"github.com/wfraser/stget/internal/tlsconn"
)

const (
	exitSuccess    = 0
	exitUserError  = 1
	exitProtocolIO = 2

	clientName    = "stget"
	clientVersion = "1.0.0"

	certFile = "cert/cert.pem"
	keyFile  = "cert/private.pem"
)

var l = logger.New("main")

type cli struct {
	Address  string `arg:"" help:"Peer address, host[:port] (default port 22000)."`
	DeviceID string `arg:"" help:"Peer's 63-character device id."`
	Path     string `arg:"" optional:"" help:"\"<label>\", \"<label>/\", \"<label>/<file>\", or \"<label>/<subdir>/\"."`

	List bool   `short:"l" help:"List the peer's folders instead of fetching a path."`
	Dest string `short:"d" default:"." help:"Destination root for fetched files."`
}

func main() {
	os.Exit(run())
}

func run() int {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("stget"),
		kong.Description("Pull files from a BEP peer."),
	)

	if c.List == (c.Path != "") {
		kctx.FatalIfErrorf(fmt.Errorf("exactly one of <path> or --list must be given"))
		return exitUserError
	}

	remoteDeviceID, err := deviceid.ToHash(c.DeviceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stget: %v\n", err)
		return exitUserError
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stget: loading client certificate: %v\n", err)
		return exitUserError
	}

	hostname, _ := os.Hostname()
	sess, err := tlsconn.Dial(c.Address, c.DeviceID, cert, hostname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stget: %v\n", err)
		return exitProtocolIO
	}
	defer sess.TCP.Close()

	opts := client.Options{
		Out:      os.Stdout,
		DestRoot: c.Dest,
	}
	if c.List {
		opts.Mode = client.ModeList
	} else {
		opts.Mode = client.ModeFetch
		opts.RequestPath = c.Path
	}

	cl := client.New(sess, remoteDeviceID, clientName, clientVersion, opts)
	if err := cl.Run(); err != nil {
		l.Warnf("session failed: %v", err)
		fmt.Fprintf(os.Stderr, "stget: %v\n", err)
		switch err.(type) {
		case client.ErrFolderNotOffered, client.ErrIsDirectory:
			return exitUserError
		default:
			return exitProtocolIO
		}
	}

	return exitSuccess
}
