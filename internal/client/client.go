// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package client implements the client-driven BEP protocol state machine:
// hello exchange, cluster configuration negotiation, index ingestion, and
// pipelined block fetching.
package client

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wfraser/stget/internal/bep"
	"github.com/wfraser/stget/internal/framing"
	"github.com/wfraser/stget/internal/logger"
	"github.com/wfraser/stget/internal/tlsconn"
)

var l = logger.New("client")

// Mode selects whether the session lists a peer's folders or fetches files
// from one of them.
type Mode int

const (
	ModeList Mode = iota
	ModeFetch
)

// Options configures a Client.
type Options struct {
	Mode Mode

	// RequestPath is "<label>", "<label>/", "<label>/<file>", or
	// "<label>/<subdir>/". Only meaningful in ModeFetch. New normalizes a
	// bare "<label>" to "<label>/".
	RequestPath string

	// DestRoot is the local directory fetched files are written under.
	DestRoot string

	// Out receives one "<folder_label>/<name>" line per listed file in
	// ModeList.
	Out io.Writer
}

// ErrFolderNotOffered is returned in ModeFetch when no folder offered by the
// peer has a label matching the requested path's first segment.
type ErrFolderNotOffered struct {
	Labels []string
}

func (e ErrFolderNotOffered) Error() string {
	return fmt.Sprintf("folder not offered by peer; available folders: %s", strings.Join(e.Labels, ", "))
}

// ErrIsDirectory is returned when the requested path names a directory
// exactly, without a trailing slash to opt into a recursive fetch.
type ErrIsDirectory struct {
	Path string
}

func (e ErrIsDirectory) Error() string {
	return fmt.Sprintf("%q is a directory; append a trailing / to fetch it recursively", e.Path)
}

// ErrProtocol signals a fatal protocol violation: an unexpected message for
// the current state, or a Response matching no outstanding request.
type ErrProtocol struct {
	Reason string
}

func (e ErrProtocol) Error() string {
	return "protocol violation: " + e.Reason
}

type state int

const (
	stateExpectClusterConfig state = iota
	stateIndexOrResponse
	stateDone
)

// folderInfo is populated from the peer's ClusterConfig for every folder
// where the peer's own device entry (remoteDeviceID) appears.
type folderInfo struct {
	id           string
	label        string
	maxRemoteSeq int64
	complete     bool
}

// fileFetchState tracks one in-progress file fetch.
type fileFetchState struct {
	f             *os.File
	name          string // wire name, within the folder
	folder        string // folder id
	path          string // destination path on disk
	size          int64
	bytesReceived int64
	blocks        []*bep.BlockInfo
	blockIdx      int
}

// Client drives one BEP session to completion: hello, cluster config,
// index streaming, and (in ModeFetch) block requests.
//
// A Client is owned by a single caller and is not safe for concurrent use.
type Client struct {
	sess           *tlsconn.Session
	opts           Options
	remoteDeviceID [32]byte
	clientName     string
	clientVersion  string

	st  state
	buf []byte

	folders       map[string]*folderInfo // by folder id
	activeFolders []string               // folder ids relevant to this session, in ClusterConfig order
	folderIdx     int
	seqSeen       map[string]int64

	fetchFolder *folderInfo // set in ModeFetch once ClusterConfig is negotiated

	requests map[int32]*fileFetchState
}

// New builds a Client ready to Run() over an already-established session.
// remoteDeviceID is the peer's own device id (decoded from the CLI-supplied
// device id string), used to find the peer's entry in its own ClusterConfig
// folder device lists — that entry carries the max_sequence this session
// should expect for each folder.
func New(sess *tlsconn.Session, remoteDeviceID [32]byte, clientName, clientVersion string, opts Options) *Client {
	if opts.Mode == ModeFetch && !strings.Contains(opts.RequestPath, "/") {
		opts.RequestPath += "/"
	}
	return &Client{
		sess:           sess,
		opts:           opts,
		remoteDeviceID: remoteDeviceID,
		clientName:     clientName,
		clientVersion:  clientVersion,
		st:             stateExpectClusterConfig,
		folders:        make(map[string]*folderInfo),
		seqSeen:        make(map[string]int64),
		requests:       make(map[int32]*fileFetchState),
	}
}

// Run drives the session to completion: Hello exchange, ClusterConfig
// negotiation, then index streaming and (in ModeFetch) block fetching until
// every relevant folder has been fully indexed and every request answered.
func (c *Client) Run() error {
	var err error
	metricRunDuration.Time(func() {
		err = c.run()
	})
	return err
}

func (c *Client) run() error {
	if err := c.exchangeHello(); err != nil {
		return err
	}
	if err := c.exchangeClusterConfig(); err != nil {
		return err
	}
	c.st = stateIndexOrResponse
	c.checkDone() // the peer may share nothing with us at all
	for c.st != stateDone {
		header, body, err := c.readFrame()
		if err != nil {
			return err
		}
		if err := c.dispatch(header, body); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) fill() error {
	var tmp [32 * 1024]byte
	n, err := c.sess.TLS.Read(tmp[:])
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("client: connection closed by peer: %w", io.ErrUnexpectedEOF)
		}
		return fmt.Errorf("client: read: %w", err)
	}
	c.buf = append(c.buf, tmp[:n]...)
	return nil
}

func (c *Client) readFrame() (bep.Header, []byte, error) {
	for {
		consumed, header, body, err := framing.ReadFrame(c.buf)
		if err == framing.ErrIncomplete {
			if err := c.fill(); err != nil {
				return bep.Header{}, nil, err
			}
			continue
		}
		if err != nil {
			return bep.Header{}, nil, err
		}
		c.buf = c.buf[consumed:]
		return header, body, nil
	}
}

func (c *Client) exchangeHello() error {
	out := framing.WriteHello(bep.Hello{
		DeviceName:    c.sess.DeviceName,
		ClientName:    c.clientName,
		ClientVersion: c.clientVersion,
	})
	if _, err := c.sess.TLS.Write(out); err != nil {
		return fmt.Errorf("client: write hello: %w", err)
	}
	for {
		consumed, hello, err := framing.ReadHello(c.buf)
		if err == framing.ErrIncomplete {
			if err := c.fill(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("client: read hello: %w", err)
		}
		c.buf = c.buf[consumed:]
		l.Debugf("peer hello: device=%q client=%q/%q", hello.DeviceName, hello.ClientName, hello.ClientVersion)
		return nil
	}
}

func (c *Client) exchangeClusterConfig() error {
	header, body, err := c.readFrame()
	if err != nil {
		return err
	}
	if header.Type != bep.MessageTypeClusterConfig {
		return ErrProtocol{Reason: fmt.Sprintf("expected ClusterConfig, got %s", header.Type)}
	}
	var cc bep.ClusterConfig
	if err := cc.Unmarshal(body); err != nil {
		return fmt.Errorf("client: bad ClusterConfig: %w", err)
	}

	for _, f := range cc.Folders {
		for _, d := range f.Devices {
			if bytes.Equal(d.ID, c.remoteDeviceID[:]) {
				c.folders[f.ID] = &folderInfo{id: f.ID, label: f.Label, maxRemoteSeq: d.MaxSequence}
				c.activeFolders = append(c.activeFolders, f.ID)
				break
			}
		}
	}

	reply := bep.ClusterConfig{}
	switch c.opts.Mode {
	case ModeList:
		for _, id := range c.activeFolders {
			reply.Folders = append(reply.Folders, echoFolder(c.folders[id]))
		}

	case ModeFetch:
		label := strings.SplitN(c.opts.RequestPath, "/", 2)[0]
		var labels []string
		for _, id := range c.activeFolders {
			fi := c.folders[id]
			labels = append(labels, fi.label)
			if fi.label == label {
				c.fetchFolder = fi
			}
		}
		if c.fetchFolder == nil {
			return ErrFolderNotOffered{Labels: labels}
		}
		reply.Folders = []*bep.Folder{echoFolder(c.fetchFolder)}
		c.activeFolders = []string{c.fetchFolder.id}
	}

	buf := framing.WriteFrame(bep.MessageTypeClusterConfig, reply.Marshal())
	if _, err := c.sess.TLS.Write(buf); err != nil {
		return fmt.Errorf("client: write ClusterConfig: %w", err)
	}
	return nil
}

func echoFolder(fi *folderInfo) *bep.Folder {
	return &bep.Folder{
		ID:                 fi.id,
		Label:              fi.label,
		ReadOnly:           true,
		IgnorePermissions:  true,
		IgnoreDelete:       true,
		DisableTempIndexes: true,
	}
}

func (c *Client) dispatch(header bep.Header, body []byte) error {
	switch header.Type {
	case bep.MessageTypeIndex:
		var idx bep.Index
		if err := idx.Unmarshal(body); err != nil {
			return fmt.Errorf("client: bad Index: %w", err)
		}
		return c.ingestIndex(idx.Folder, idx.Files)

	case bep.MessageTypeIndexUpdate:
		var iu bep.IndexUpdate
		if err := iu.Unmarshal(body); err != nil {
			return fmt.Errorf("client: bad IndexUpdate: %w", err)
		}
		idx := iu.AsIndex()
		return c.ingestIndex(idx.Folder, idx.Files)

	case bep.MessageTypePing:
		return nil

	case bep.MessageTypeClose:
		var cl bep.Close
		if err := cl.Unmarshal(body); err != nil {
			return fmt.Errorf("client: bad Close: %w", err)
		}
		l.Infof("peer closed session: %s", cl.Reason)
		c.st = stateDone
		return nil

	case bep.MessageTypeResponse:
		var resp bep.Response
		if err := resp.Unmarshal(body); err != nil {
			return fmt.Errorf("client: bad Response: %w", err)
		}
		return c.handleResponse(resp)

	case bep.MessageTypeDownloadProgress:
		return nil

	default:
		return ErrProtocol{Reason: fmt.Sprintf("unexpected message type %s", header.Type)}
	}
}

func (c *Client) ingestIndex(folderID string, files []*bep.FileInfo) error {
	fi, ok := c.folders[folderID]
	if !ok || (c.opts.Mode == ModeFetch && folderID != c.fetchFolder.id) {
		return nil
	}

	var maxSeq int64
	for _, f := range files {
		if f.Sequence > maxSeq {
			maxSeq = f.Sequence
		}
		if f.Deleted {
			continue
		}
		if f.Type == bep.FileInfoTypeDirectory {
			if c.opts.Mode == ModeFetch {
				checkPath := strings.TrimPrefix(c.opts.RequestPath, fi.label+"/")
				if f.Name == checkPath && !strings.HasSuffix(c.opts.RequestPath, "/") {
					return ErrIsDirectory{Path: f.Name}
				}
			}
			continue
		}

		switch c.opts.Mode {
		case ModeList:
			fmt.Fprintf(c.opts.Out, "%s/%s\n", fi.label, f.Name)
		case ModeFetch:
			dest, matched := resolveDestPath(fi.label, c.opts.RequestPath, f.Name, c.opts.DestRoot)
			if !matched {
				continue
			}
			if err := c.startFetch(fi.id, f, dest); err != nil {
				return err
			}
		}
	}

	if maxSeq > c.seqSeen[folderID] {
		c.seqSeen[folderID] = maxSeq
	}
	if !fi.complete && c.seqSeen[folderID] >= fi.maxRemoteSeq {
		fi.complete = true
		c.folderIdx++
	}
	c.checkDone()
	return nil
}

func (c *Client) startFetch(folderID string, f *bep.FileInfo, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("client: mkdir for %s: %w", dest, err)
	}
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("client: create %s: %w", dest, err)
	}

	ffs := &fileFetchState{
		f:      file,
		name:   f.Name,
		folder: folderID,
		path:   dest,
		size:   f.Size,
		blocks: f.Blocks,
	}
	if len(ffs.blocks) == 0 {
		return file.Close()
	}
	return c.requestNextBlock(ffs)
}

func (c *Client) requestNextBlock(ffs *fileFetchState) error {
	blk := ffs.blocks[ffs.blockIdx]
	id := c.sess.NextRequestID()
	req := bep.Request{
		ID:     id,
		Folder: ffs.folder,
		Name:   ffs.name,
		Offset: blk.Offset,
		Size:   blk.Size,
		Hash:   blk.Hash,
	}
	buf := framing.WriteFrame(bep.MessageTypeRequest, req.Marshal())
	if _, err := c.sess.TLS.Write(buf); err != nil {
		return fmt.Errorf("client: write Request: %w", err)
	}
	metricRequestsSent.Inc(1)
	c.requests[id] = ffs
	return nil
}

func (c *Client) handleResponse(resp bep.Response) error {
	ffs, ok := c.requests[resp.ID]
	if !ok {
		return ErrProtocol{Reason: fmt.Sprintf("response for unknown request id %d", resp.ID)}
	}
	delete(c.requests, resp.ID)

	if resp.Code != bep.ErrorCodeNoError {
		l.Warnf("%s: peer returned %s", ffs.path, resp.Code)
		ffs.f.Close()
		c.checkDone()
		return nil
	}

	if _, err := ffs.f.Write(resp.Data); err != nil {
		return fmt.Errorf("client: write %s: %w", ffs.path, err)
	}
	ffs.bytesReceived += int64(len(resp.Data))
	ffs.blockIdx++
	metricBytesReceived.Inc(int64(len(resp.Data)))

	if ffs.blockIdx >= len(ffs.blocks) {
		if ffs.bytesReceived != ffs.size {
			return fmt.Errorf("client: %s: received %d bytes, want %d", ffs.path, ffs.bytesReceived, ffs.size)
		}
		if err := ffs.f.Close(); err != nil {
			return fmt.Errorf("client: close %s: %w", ffs.path, err)
		}
		metricFilesFetched.Inc(1)
		c.checkDone()
		return nil
	}

	return c.requestNextBlock(ffs)
}

func (c *Client) checkDone() {
	if c.folderIdx < len(c.activeFolders) {
		return
	}
	if c.opts.Mode == ModeList || len(c.requests) == 0 {
		c.st = stateDone
	}
}
