// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package client

import (
	"path/filepath"
	"strings"
)

// resolveDestPath implements the fetch-mode destination path resolution: it
// decides whether fileName (the Name field of a FileInfo) falls under the
// requested path, and if so, where it should land under destRoot.
//
// requestPath is the "<label>/..." path the caller asked for, with label
// always present and terminated by a '/' before any subpath.
func resolveDestPath(label, requestPath, fileName, destRoot string) (dest string, ok bool) {
	prefix := label + "/"
	if !strings.HasPrefix(requestPath, prefix) {
		return "", false
	}
	checkPath := requestPath[len(prefix):]

	switch {
	case checkPath == "":
		// "<label>/": fetch the whole folder. (A bare "<label>" does not
		// match the prefix check above; New turns it into "<label>/".)
		return filepath.Join(destRoot, label, fileName), true

	case strings.HasSuffix(checkPath, "/") && strings.HasPrefix(fileName, checkPath):
		return filepath.Join(destRoot, fileName[len(subtreeStripPrefix(checkPath)):]), true

	case fileName == checkPath:
		return filepath.Join(destRoot, filepath.Base(fileName)), true

	default:
		return "", false
	}
}

// subtreeStripPrefix returns the portion of checkPath (which ends in "/")
// up to and including its second-to-last "/", or "" if checkPath has only
// the one (trailing) slash.
func subtreeStripPrefix(checkPath string) string {
	trimmed := strings.TrimSuffix(checkPath, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return checkPath[:i+1]
}
