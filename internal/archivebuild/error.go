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

// Package archivebuild downloads the packages named by a configuration set
// and assembles them into the compressed archive streamed back to the
// client (§4.I).
package archivebuild

import "github.com/nabbar/golib/errors"

const minPkgArchiveBuild = errors.MinAvailable + 600

const (
	ErrConfigSetRead errors.CodeError = iota + minPkgArchiveBuild
	ErrConfigSetToken
	ErrPkgMgrInvoke
	ErrPkgMgrExitStatus
	ErrArchiveCreate
	ErrArchiveWrite
)

func init() {
	errors.RegisterIdFctMessage(ErrConfigSetRead, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrConfigSetRead:
		return "cannot read configuration set file"
	case ErrConfigSetToken:
		return "configuration set contains an invalid package token"
	case ErrPkgMgrInvoke:
		return "package manager invocation failed"
	case ErrPkgMgrExitStatus:
		return "package manager exited with a non-zero status"
	case ErrArchiveCreate:
		return "cannot create archive output"
	case ErrArchiveWrite:
		return "error writing archive content"
	}
	return ""
}
