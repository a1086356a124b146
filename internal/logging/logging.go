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

// Package logging adapts the structured logger to the server and client's
// needs (§4.L): a process-wide logger plus a per-connection child carrying
// a correlation id field for every log line a worker goroutine emits.
package logging

import (
	"context"
	"fmt"

	liblog "github.com/nabbar/golib/logger"
	logfld "github.com/nabbar/golib/logger/fields"
	loglvl "github.com/nabbar/golib/logger/level"
)

// New builds the process logger, leveled from the configuration's LogLevel
// string (empty or unrecognized defaults to Info).
func New(ctx context.Context, level string) liblog.Logger {
	l := liblog.New(ctx)
	l.SetLevel(loglvl.Parse(level))
	return l
}

// WithConn returns a child logger tagging every entry with connID, so
// concurrent worker goroutines' log lines can be told apart (§4.G).
func WithConn(l liblog.Logger, connID uint64) liblog.Logger {
	clone, err := l.Clone()
	if err != nil {
		clone = l
	}

	f := clone.GetFields()
	if f == nil {
		f = logfld.New(context.Background())
	}
	f.Add("conn_id", fmt.Sprintf("%d", connID))
	clone.SetFields(f)

	return clone
}
