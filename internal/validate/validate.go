/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package validate is the server-side UPGRADE_REQUEST validator (§4.H): it
// rejects any request field that would otherwise reach the filesystem or
// the package-manager invocation unchecked.
package validate

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/sabouaram/syncd/internal/wire"
)

const minPkgValidate = liberr.MinAvailable + 500

const (
	ErrUnknownConfigSet liberr.CodeError = iota + minPkgValidate
	ErrUnknownCompression
	ErrUnknownPackageManager
	ErrFutureUpgradeTime
	ErrConfigSetNotFile
)

func init() {
	liberr.RegisterIdFctMessage(ErrUnknownConfigSet, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrUnknownConfigSet:
		return "configuration set does not resolve inside the configuration sets directory"
	case ErrUnknownCompression:
		return "compression type is not supported by this server"
	case ErrUnknownPackageManager:
		return "package manager is not recognized"
	case ErrFutureUpgradeTime:
		return "last upgrade time is in the future"
	case ErrConfigSetNotFile:
		return "configuration set path does not resolve to a regular file"
	}
	return ""
}

// Request is the decoded, not-yet-trusted UPGRADE_REQUEST body (§4.A), plus
// the absolute configuration-set path ConfigSetPath resolved and validated
// it against once Validate has run.
type Request struct {
	ConfigSet        uint16
	Compression      wire.CompressionType
	PackageManager   wire.PackageManager
	LastUpgradeTime  uint32
	ConfigSetAbsPath string
}

// ConfigSetPath resolves req.ConfigSet to a path strictly inside
// configSetsDir, rejecting any resolution that escapes it — the Go
// equivalent of the original's path-traversal guard on the configuration
// set name — and, per §4.H, confirms the resolved path both exists and
// names a regular file before the caller ever hands it to the filesystem
// or the archive builder.
func ConfigSetPath(configSetsDir string, configSet uint16, fileName string) (string, liberr.Error) {
	joined := filepath.Join(configSetsDir, fileName)
	clean := filepath.Clean(joined)

	root := filepath.Clean(configSetsDir)
	if clean != root && !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return "", ErrUnknownConfigSet.Error()
	}

	info, err := os.Stat(clean)
	if err != nil {
		return "", ErrUnknownConfigSet.Error(err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrConfigSetNotFile.Error()
	}

	return clean, nil
}

// Validate checks every field of req against the server's supported
// ranges, returning the first violation found.
func Validate(req Request, supportedCompression map[wire.CompressionType]bool, now time.Time) liberr.Error {
	if !req.Compression.InRange() || !supportedCompression[req.Compression] {
		return ErrUnknownCompression.Error()
	}

	if !req.PackageManager.InRange() {
		return ErrUnknownPackageManager.Error()
	}

	if int64(req.LastUpgradeTime) > now.Unix() {
		return ErrFutureUpgradeTime.Error()
	}

	return nil
}
