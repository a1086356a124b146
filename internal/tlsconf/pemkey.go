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

package tlsconf

import (
	"encoding/pem"
	"errors"
)

// decryptPEMKey is the Go counterpart of the original context factory's
// password callback: it decrypts a PEM-encrypted private key block with the
// configured password, read once from the decrypted Secret (§4.N) at
// config-load time. An unencrypted key is returned unchanged so a server
// operator may still choose not to protect the key file at rest.
//
// encoding/pem's encrypted-PEM helpers are deprecated in the standard
// library (PEM encryption is a weak, legacy construction) but remain the
// only stdlib path that understands "Proc-Type: 4,ENCRYPTED" key files of
// the kind the original server format produces; no dependency in this
// repository's stack replaces it.
func decryptPEMKey(keyPEM []byte, password string) ([]byte, error) { //nolint:staticcheck
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, errors.New("no PEM block found in private key file")
	}

	if !pem.IsEncryptedPEMBlock(block) { //nolint:staticcheck
		return keyPEM, nil
	}

	der, err := pem.DecryptPEMBlock(block, []byte(password)) //nolint:staticcheck
	if err != nil {
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}
