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
	"fmt"
	"strings"

	libval "github.com/go-playground/validator/v10"
	liberr "github.com/nabbar/golib/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/sabouaram/syncd/internal/wire"
)

// ServerConfig is the server's immutable, validated configuration (§3,
// §4.K). Once returned by LoadServerConfig it is never mutated; every
// component that needs it is handed one by reference.
type ServerConfig struct {
	ListenAddress string `mapstructure:"listenAddress" validate:"required"`
	ListenPort    uint16 `mapstructure:"listenPort" validate:"required,min=1025"`

	MaxClientThreads int `mapstructure:"maxClientThreads" validate:"required,min=1"`

	ConfigurationSetsDir string `mapstructure:"configurationSetsDir" validate:"required,dir"`
	PkgCacheDir          string `mapstructure:"pkgCacheDir" validate:"required"`
	ArchivesDir          string `mapstructure:"archivesDir" validate:"required"`

	CertificateChainFile     string `mapstructure:"certificateChainFile" validate:"required,file"`
	PrivateKeyFile           string `mapstructure:"privateKeyFile" validate:"required,file"`
	PrivateKeyPasswordSecret string `mapstructure:"privateKeyPasswordSecret"`
	ClientCAFile             string `mapstructure:"clientCAFile"`
	RequireClientCert        bool   `mapstructure:"requireClientCert"`

	SupportedCompression []string `mapstructure:"supportedCompression" validate:"required,min=1"`
	PackageManager       string   `mapstructure:"packageManager" validate:"required"`

	LogLevel string `mapstructure:"logLevel"`
}

// supportedCompressionSet resolves the configured compression names to the
// wire enum values this server accepts; see SPEC_FULL.md §3's decision on
// the compression support matrix.
func (c *ServerConfig) supportedCompressionSet() (map[wire.CompressionType]bool, liberr.Error) {
	set := make(map[wire.CompressionType]bool, len(c.SupportedCompression))

	for _, s := range c.SupportedCompression {
		ct, ok := wire.ParseCompressionType(s)
		if !ok {
			return nil, ErrUnsupportedCompression.Error()
		}
		if ct == wire.CompressionRar {
			return nil, ErrUnsupportedCompression.Error()
		}
		set[ct] = true
	}

	return set, nil
}

// SupportedCompressionTypes returns the validated server compression
// subset, ready for the request validator (§4.H).
func (c *ServerConfig) SupportedCompressionTypes() (map[wire.CompressionType]bool, liberr.Error) {
	return c.supportedCompressionSet()
}

// Secret decodes the server's at-rest private-key password secret.
func (c *ServerConfig) Secret() Secret {
	return NewSecret(c.PrivateKeyPasswordSecret)
}

// ClientConfig is the client's immutable, validated configuration (§3,
// §4.K).
type ClientConfig struct {
	ServerHost string `mapstructure:"serverHost" validate:"required"`
	ServerPort uint16 `mapstructure:"serverPort" validate:"required,min=1025"`

	ConfigSet               uint16 `mapstructure:"configSet"`
	PreferredCompression    string `mapstructure:"preferredCompression" validate:"required"`
	PreferredPackageManager string `mapstructure:"preferredPackageManager" validate:"required"`
	LastUpgradeTime         uint32 `mapstructure:"lastUpgradeTime"`

	DestinationDir string `mapstructure:"destinationDir" validate:"required"`
	CATrustFile    string `mapstructure:"caTrustFile"`
	CATrustDir     string `mapstructure:"caTrustDir"`

	LogLevel string `mapstructure:"logLevel"`
}

func validateStruct(v interface{}) liberr.Error {
	if er := libval.New().Struct(v); er != nil {
		err := ErrValidation.Error()

		if e, ok := er.(*libval.InvalidValidationError); ok {
			err.Add(e)
		} else if ve, ok := er.(libval.ValidationErrors); ok {
			for _, e := range ve {
				//nolint goerr113
				err.Add(fmt.Errorf("field '%s' failed constraint '%s'", e.StructNamespace(), e.ActualTag()))
			}
		} else {
			err.Add(er)
		}

		return err
	}

	return nil
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress:        "0.0.0.0",
		ListenPort:           4440,
		MaxClientThreads:     32,
		SupportedCompression: []string{"tar.gz", "tar.bz2", "tar.xz", "zip"},
		PackageManager:       "dpkg",
		LogLevel:             "info",
	}
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerPort:              4440,
		PreferredCompression:    "tar.gz",
		PreferredPackageManager: "dpkg",
		LogLevel:                "info",
	}
}

func newViper(configFile, envPrefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	return v
}

// LoadServerConfig builds a ServerConfig from defaults, an optional config
// file, and SYNCD_-prefixed environment variables, in that override order,
// then validates the result.
func LoadServerConfig(configFile string) (*ServerConfig, liberr.Error) {
	cfg := defaultServerConfig()

	v := newViper(configFile, "SYNCD")
	if err := bindDefaults(v, cfg); err != nil {
		return nil, err
	}

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, ErrReadConfig.Error(err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ErrReadConfig.Error(err)
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}

	if _, err := cfg.supportedCompressionSet(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadClientConfig builds a ClientConfig the same way LoadServerConfig does.
func LoadClientConfig(configFile string) (*ClientConfig, liberr.Error) {
	cfg := defaultClientConfig()

	v := newViper(configFile, "SYNCD")
	if err := bindDefaults(v, cfg); err != nil {
		return nil, err
	}

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, ErrReadConfig.Error(err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ErrReadConfig.Error(err)
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}

	if _, ok := wire.ParseCompressionType(cfg.PreferredCompression); !ok {
		return nil, ErrUnsupportedCompression.Error()
	}
	if _, ok := wire.ParsePackageManager(cfg.PreferredPackageManager); !ok {
		return nil, ErrUnsupportedCompression.Error()
	}

	return &cfg, nil
}

// bindDefaults flattens cfg's mapstructure-tagged fields into viper
// defaults, so file/env/flag layers can override individual keys without
// the caller re-declaring every default twice.
func bindDefaults(v *viper.Viper, cfg interface{}) liberr.Error {
	m := map[string]interface{}{}
	if err := mapstructure.Decode(cfg, &m); err != nil {
		return ErrReadConfig.Error(err)
	}

	for k, val := range m {
		v.SetDefault(k, val)
	}

	return nil
}
