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

package archivebuild

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/sabouaram/syncd/internal/wire"
)

// tokenPattern is the package-token grammar accepted in a configuration set
// file: names, versions and distro revisions, nothing a shell would ever
// need to interpret.
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9._+-]+$`)

// DownloadTimeout bounds a single package-manager invocation.
const DownloadTimeout = 5 * time.Minute

// pkgMgrTool maps the wire-level package manager selector to the external
// binary invoked to populate the package cache (§4.I). Both tools are
// invoked with an explicit argv, never through a shell.
func pkgMgrTool(pm wire.PackageManager) (tool string, baseArgs []string, ok bool) {
	switch pm {
	case wire.PackageManagerDpkg:
		return "apt-get", []string{"install", "--download-only", "--yes"}, true
	case wire.PackageManagerTarXz:
		return "pkgdl", []string{"fetch"}, true
	default:
		return "", nil, false
	}
}

// ReadConfigSet reads the configuration set file at path, one package token
// per line, skipping blank lines and '#'-prefixed comments, and validates
// every token against tokenPattern before it is ever handed to exec.Command.
// The caller is expected to have already resolved and stat-checked path
// through validate.ConfigSetPath.
func ReadConfigSet(path string) ([]string, liberr.Error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, ErrConfigSetRead.Error(e)
	}
	defer func() { _ = f.Close() }()

	var tokens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()

		if line == "" || line[0] == '#' {
			continue
		}

		if !tokenPattern.MatchString(line) {
			return nil, ErrConfigSetToken.Error()
		}

		tokens = append(tokens, line)
	}

	if e := sc.Err(); e != nil {
		return nil, ErrConfigSetRead.Error(e)
	}

	return tokens, nil
}

// ConfigSetFileName returns the on-disk file name a configuration set
// number resolves to, the same naming validate.ConfigSetPath expects.
func ConfigSetFileName(configSet uint16) string {
	return strconv.FormatUint(uint64(configSet), 10) + ".conf"
}

// FetchPackages invokes the configured package manager to populate
// pkgCacheDir with the packages named by tokens, running the tool with
// pkgCacheDir as its working directory and no shell interpretation of the
// token list.
func FetchPackages(ctx context.Context, pm wire.PackageManager, pkgCacheDir string, tokens []string) liberr.Error {
	tool, baseArgs, ok := pkgMgrTool(pm)
	if !ok {
		return ErrPkgMgrInvoke.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	args := append(append([]string{}, baseArgs...), tokens...)

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = pkgCacheDir
	cmd.Stdin = nil

	if e := cmd.Run(); e != nil {
		if _, ok := e.(*exec.ExitError); ok {
			return ErrPkgMgrExitStatus.Error(e)
		}
		return ErrPkgMgrInvoke.Error(e)
	}

	return nil
}
