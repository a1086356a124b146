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

package config

import (
	"os"

	libcrypt "github.com/nabbar/golib/crypt"
	liberr "github.com/nabbar/golib/errors"
)

// Secret is the private-key password stored at rest (§4.N): only its
// AES-GCM hex ciphertext is kept on the struct. Cleartext() is the sole
// place it is ever decrypted, and the result is not retained by the caller
// beyond the single use at TLS context construction.
type Secret struct {
	cipherHex string
}

// NewSecret wraps an already-encrypted hex value, as read from a config
// file's privateKeyPasswordSecret field.
func NewSecret(cipherHex string) Secret {
	return Secret{cipherHex: cipherHex}
}

// EncryptSecret encrypts clearValue with the key/nonce configured via
// SetSecretKeyFromEnv, for use by an operator preparing a config file; it is
// not called by the running service itself.
func EncryptSecret(clearValue string) (Secret, liberr.Error) {
	hex, err := libcrypt.Encrypt([]byte(clearValue))
	if err != nil {
		return Secret{}, err
	}
	return Secret{cipherHex: hex}, nil
}

// Cleartext decrypts and returns the password. Called exactly once, by the
// TLS context factory, when building the server's private-key password
// callback.
func (s Secret) Cleartext() (string, liberr.Error) {
	if s.cipherHex == "" {
		return "", nil
	}

	clear, err := libcrypt.Decrypt(s.cipherHex)
	if err != nil {
		return "", err
	}

	return string(clear), nil
}

// SecretKeyEnv and SecretNonceEnv name the environment variables carrying
// the hex-encoded AES-256 key and GCM nonce used to decrypt every Secret in
// the process. They are read once, at startup, and never logged.
const (
	SecretKeyEnv   = "SYNCD_SECRET_KEY"
	SecretNonceEnv = "SYNCD_SECRET_NONCE"
)

// SetSecretKeyFromEnv installs the process-wide AES-GCM key/nonce pair used
// by Secret.Cleartext and EncryptSecret, read from SecretKeyEnv/
// SecretNonceEnv. It is a no-op, not an error, when neither variable is set
// — a deployment with no encrypted secret in its config never needs it.
func SetSecretKeyFromEnv() liberr.Error {
	key := os.Getenv(SecretKeyEnv)
	nonce := os.Getenv(SecretNonceEnv)

	if key == "" && nonce == "" {
		return nil
	}

	return libcrypt.SetKeyHex(key, nonce)
}
