// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package client

import "testing"

func TestResolveDestPath(t *testing.T) {
	cases := []struct {
		name        string
		label       string
		requestPath string
		fileName    string
		destRoot    string
		wantOK      bool
		wantDest    string
	}{
		{
			name:        "whole folder fetch",
			label:       "default",
			requestPath: "default/",
			fileName:    "foo.txt",
			destRoot:    "/out",
			wantOK:      true,
			wantDest:    "/out/default/foo.txt",
		},
		{
			name:        "single file match",
			label:       "default",
			requestPath: "default/foo.txt",
			fileName:    "foo.txt",
			destRoot:    "/out",
			wantOK:      true,
			wantDest:    "/out/foo.txt",
		},
		{
			name:        "single file, nested basename kept bare",
			label:       "default",
			requestPath: "default/dir/foo.txt",
			fileName:    "dir/foo.txt",
			destRoot:    "/out",
			wantOK:      true,
			wantDest:    "/out/foo.txt",
		},
		{
			name:        "single file, no match",
			label:       "default",
			requestPath: "default/foo.txt",
			fileName:    "bar.txt",
			destRoot:    "/out",
			wantOK:      false,
		},
		{
			name:        "one-segment subtree fetch keeps full relative path",
			label:       "default",
			requestPath: "default/sub/",
			fileName:    "sub/a.txt",
			destRoot:    "/out",
			wantOK:      true,
			wantDest:    "/out/sub/a.txt",
		},
		{
			name:        "two-segment subtree fetch strips first segment",
			label:       "default",
			requestPath: "default/sub/deep/",
			fileName:    "sub/deep/a.txt",
			destRoot:    "/out",
			wantOK:      true,
			wantDest:    "/out/deep/a.txt",
		},
		{
			name:        "subtree fetch, file outside subtree",
			label:       "default",
			requestPath: "default/sub/",
			fileName:    "other/a.txt",
			destRoot:    "/out",
			wantOK:      false,
		},
		{
			name:        "wrong label",
			label:       "default",
			requestPath: "other/foo.txt",
			fileName:    "foo.txt",
			destRoot:    "/out",
			wantOK:      false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dest, ok := resolveDestPath(tc.label, tc.requestPath, tc.fileName, tc.destRoot)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v (dest=%q)", ok, tc.wantOK, dest)
			}
			if ok && dest != tc.wantDest {
				t.Errorf("dest = %q, want %q", dest, tc.wantDest)
			}
		})
	}
}
