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
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	dsbzip2 "github.com/dsnet/compress/bzip2"
	liberr "github.com/nabbar/golib/errors"
	"github.com/ulikunitz/xz"

	libtar "github.com/nabbar/golib/archive/tar"
	libzip "github.com/nabbar/golib/archive/zip"

	"github.com/sabouaram/syncd/internal/wire"
)

// BuildArchive walks srcDir and writes a single archive of the requested
// compression type to dst. Tar, tar.gz and zip are built with the same
// walk-and-strip-path helpers the archive package uses for its own
// CreateArchive entry point; bzip2 and xz wrap a plain tar stream since
// neither compressor is one archive/tar or archive/zip know how to drive
// themselves (§3, §4.I).
func BuildArchive(dst io.WriteSeeker, srcDir string, compression wire.CompressionType) liberr.Error {
	switch compression {
	case wire.CompressionNone:
		if ok, err := libtar.Create(dst, srcDir, srcDir); err != nil {
			return ErrArchiveWrite.Error(err)
		} else if !ok {
			return ErrArchiveCreate.Error()
		}
		return nil
	case wire.CompressionTarGz:
		if ok, err := libtar.CreateGzip(dst, srcDir, srcDir); err != nil {
			return ErrArchiveWrite.Error(err)
		} else if !ok {
			return ErrArchiveCreate.Error()
		}
		return nil
	case wire.CompressionTarBz2:
		bz, e := dsbzip2.NewWriter(dst, nil)
		if e != nil {
			return ErrArchiveCreate.Error(e)
		}
		if err := writeTar(bz, srcDir); err != nil {
			return err
		}
		if e := bz.Close(); e != nil {
			return ErrArchiveWrite.Error(e)
		}
		return nil
	case wire.CompressionTarXz:
		xzw, e := xz.NewWriter(dst)
		if e != nil {
			return ErrArchiveCreate.Error(e)
		}
		if err := writeTar(xzw, srcDir); err != nil {
			return err
		}
		if e := xzw.Close(); e != nil {
			return ErrArchiveWrite.Error(e)
		}
		return nil
	case wire.CompressionZip:
		if ok, err := libzip.Create(dst, srcDir, "", srcDir); err != nil {
			return ErrArchiveWrite.Error(err)
		} else if !ok {
			return ErrArchiveCreate.Error()
		}
		return nil
	default:
		return ErrArchiveCreate.Error()
	}
}

// writeTar is the tar-stream writer for the two compressors archive/tar
// never wraps itself (bzip2, xz): same relative-path-and-forward-slash
// naming archive/tar/writer.go's createTar uses, applied to an arbitrary
// io.Writer instead of the package's own compressor choice.
func writeTar(w io.Writer, srcDir string) liberr.Error {
	t := tar.NewWriter(w)

	err := filepath.Walk(srcDir, func(file string, info os.FileInfo, e error) error {
		if e != nil {
			return e
		}
		if info.IsDir() {
			return nil
		}

		rel, e := filepath.Rel(srcDir, file)
		if e != nil {
			return e
		}

		hdr, e := tar.FileInfoHeader(info, "")
		if e != nil {
			return e
		}
		hdr.Name = filepath.ToSlash(rel)

		if e := t.WriteHeader(hdr); e != nil {
			return e
		}

		f, e := os.Open(file)
		if e != nil {
			return e
		}
		defer func() { _ = f.Close() }()

		_, e = io.Copy(t, f)
		return e
	})
	if err != nil {
		return ErrArchiveWrite.Error(err)
	}

	if e := t.Close(); e != nil {
		return ErrArchiveWrite.Error(e)
	}

	return nil
}
