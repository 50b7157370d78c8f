// string_encryptor.go: String front end for the PBE byte encryptor.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// StandardPBEStringEncryptor encrypts strings: the message is converted to UTF-8,
// encrypted by a StandardPBEByteEncryptor and rendered with the configured output
// encoding, prefix and suffix. Decrypt expects the same rendering.
type StandardPBEStringEncryptor struct {
	lc lifecycle

	bytes *StandardPBEByteEncryptor

	outputType Override[OutputEncoding]
	prefix     Override[string]
	suffix     Override[string]
	config     StringPBEConfig

	preset *textCodec
	codec  textCodec
}

// NewStandardPBEStringEncryptor returns an unconfigured string encryptor.
func NewStandardPBEStringEncryptor() *StandardPBEStringEncryptor {
	return &StandardPBEStringEncryptor{bytes: NewStandardPBEByteEncryptor()}
}

// SetConfig sets the config source for both the string and the byte layer.
func (s *StandardPBEStringEncryptor) SetConfig(cfg StringPBEConfig) error {
	return s.lc.configure("config", func() error {
		var byteCfg PBEConfig
		if cfg != nil {
			byteCfg = cfg
		}
		if err := s.bytes.SetConfig(byteCfg); err != nil {
			return err
		}
		s.config = cfg
		return nil
	})
}

// SetAlgorithm sets the PBE algorithm name.
func (s *StandardPBEStringEncryptor) SetAlgorithm(algorithm string) error {
	return s.bytes.SetAlgorithm(algorithm)
}

// SetPassword sets the encryption password. It cannot be empty.
func (s *StandardPBEStringEncryptor) SetPassword(password string) error {
	return s.bytes.SetPassword(password)
}

// SetKeyObtentionIterations sets the PBKDF2 iteration count.
func (s *StandardPBEStringEncryptor) SetKeyObtentionIterations(iterations int) error {
	return s.bytes.SetKeyObtentionIterations(iterations)
}

// SetSaltGenerator sets the salt source.
func (s *StandardPBEStringEncryptor) SetSaltGenerator(g SaltGenerator) error {
	return s.bytes.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (s *StandardPBEStringEncryptor) SetProviderName(name string) error {
	return s.bytes.SetProviderName(name)
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (s *StandardPBEStringEncryptor) SetProvider(p Provider) error {
	return s.bytes.SetProvider(p)
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (s *StandardPBEStringEncryptor) SetLogger(logger *slog.Logger) error {
	return s.bytes.SetLogger(logger)
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (s *StandardPBEStringEncryptor) SetMeterProvider(mp metric.MeterProvider) error {
	return s.bytes.SetMeterProvider(mp)
}

// SetStringOutputType selects "base64" (default) or "hexadecimal".
func (s *StandardPBEStringEncryptor) SetStringOutputType(t string) error {
	return s.lc.configure("string output type", func() error {
		enc, err := ParseOutputEncoding(t)
		if err != nil {
			return err
		}
		s.outputType = Explicit(enc)
		return nil
	})
}

// SetPrefix sets the text written before every output and required on input.
func (s *StandardPBEStringEncryptor) SetPrefix(prefix string) error {
	return s.lc.configure("prefix", func() error {
		s.prefix = Explicit(prefix)
		return nil
	})
}

// SetSuffix sets the text written after every output and required on input.
func (s *StandardPBEStringEncryptor) SetSuffix(suffix string) error {
	return s.lc.configure("suffix", func() error {
		s.suffix = Explicit(suffix)
		return nil
	})
}

// IsInitialized reports whether the configuration is frozen.
func (s *StandardPBEStringEncryptor) IsInitialized() bool {
	return s.lc.isInitialized()
}

// Initialize freezes both layers. It is idempotent.
func (s *StandardPBEStringEncryptor) Initialize() error {
	return s.lc.ensure(func() error {
		codec, err := s.resolveCodec()
		if err != nil {
			return err
		}
		if err := s.bytes.Initialize(); err != nil {
			return err
		}
		s.codec = codec
		return nil
	})
}

func (s *StandardPBEStringEncryptor) resolveCodec() (textCodec, error) {
	if s.preset != nil {
		return *s.preset, nil
	}
	var cfg StringPBEConfig = noConfig{}
	if s.config != nil {
		cfg = s.config
	}
	enc := resolve(Base64Encoding, cfg.StringOutputType, s.outputType)
	if _, err := ParseOutputEncoding(string(enc)); err != nil {
		return textCodec{}, err
	}
	return textCodec{
		encoding: enc,
		prefix:   resolve("", cfg.Prefix, s.prefix),
		suffix:   resolve("", cfg.Suffix, s.suffix),
	}, nil
}

// Encrypt returns the encoded encryption of message.
func (s *StandardPBEStringEncryptor) Encrypt(message string) (string, error) {
	if err := s.Initialize(); err != nil {
		return "", err
	}
	out, err := s.bytes.Encrypt([]byte(message))
	if err != nil {
		return "", err
	}
	return s.codec.encode(out), nil
}

// Decrypt reverses Encrypt. Input with the wrong prefix, suffix or encoding fails
// with ErrOperationNotPossible.
func (s *StandardPBEStringEncryptor) Decrypt(encrypted string) (string, error) {
	if err := s.Initialize(); err != nil {
		return "", err
	}
	raw, err := s.codec.decode(encrypted)
	if err != nil {
		return "", err
	}
	plain, err := s.bytes.Decrypt(raw)
	if err != nil {
		return "", err
	}
	out := string(plain)
	Zeroize(plain)
	return out, nil
}

// Info returns the frozen byte-layer parameters, or false before initialization.
func (s *StandardPBEStringEncryptor) Info() (EngineInfo, bool) {
	if !s.lc.isInitialized() {
		return EngineInfo{}, false
	}
	return s.bytes.Info()
}

// clone returns an unfrozen copy that initializes with s's frozen parameters.
func (s *StandardPBEStringEncryptor) clone() *StandardPBEStringEncryptor {
	preset := s.codec
	return &StandardPBEStringEncryptor{
		bytes:  s.bytes.clone(),
		preset: &preset,
	}
}

func (s *StandardPBEStringEncryptor) reset() {
	s.lc.reset()
	s.bytes.reset()
}
