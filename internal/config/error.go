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

// Package config is the layered configuration loader (§4.K): compiled-in
// defaults, an optional config file, environment variables, then flags,
// producing an immutable, validated ServerConfig or ClientConfig.
package config

import "github.com/nabbar/golib/errors"

const minPkgConfig = errors.MinAvailable + 900

const (
	ErrValidation errors.CodeError = iota + minPkgConfig
	ErrReadConfig
	ErrUnsupportedCompression
)

func init() {
	errors.RegisterIdFctMessage(ErrValidation, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrValidation:
		return "configuration failed validation"
	case ErrReadConfig:
		return "cannot read configuration source"
	case ErrUnsupportedCompression:
		return "compression type is not in the server's supported subset"
	}
	return ""
}
