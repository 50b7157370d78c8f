// string_digester.go: String front end for the byte digester.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/text/unicode/norm"
)

// stringParams is the frozen string-layer parameter set.
type stringParams struct {
	codec           textCodec
	ignoreNormalize bool
}

// StandardStringDigester digests strings: the message is NFC-normalized (unless
// disabled), converted to UTF-8, digested by a StandardByteDigester and rendered
// with the configured output encoding, prefix and suffix.
type StandardStringDigester struct {
	lc lifecycle

	bytes *StandardByteDigester

	outputType      Override[OutputEncoding]
	prefix          Override[string]
	suffix          Override[string]
	ignoreNormalize Override[bool]
	config          StringDigesterConfig

	preset *stringParams
	params stringParams
}

// NewStandardStringDigester returns an unconfigured string digester.
func NewStandardStringDigester() *StandardStringDigester {
	return &StandardStringDigester{bytes: NewStandardByteDigester()}
}

// SetConfig sets the config source for both the string and the byte layer.
func (s *StandardStringDigester) SetConfig(cfg StringDigesterConfig) error {
	return s.lc.configure("config", func() error {
		var byteCfg DigesterConfig
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

// SetAlgorithm sets the digest algorithm name.
func (s *StandardStringDigester) SetAlgorithm(algorithm string) error {
	return s.bytes.SetAlgorithm(algorithm)
}

// SetIterations sets how many times the hash function is applied.
func (s *StandardStringDigester) SetIterations(iterations int) error {
	return s.bytes.SetIterations(iterations)
}

// SetSaltSizeBytes sets the salt length. Zero disables salting.
func (s *StandardStringDigester) SetSaltSizeBytes(size int) error {
	return s.bytes.SetSaltSizeBytes(size)
}

// SetSaltGenerator sets the salt source.
func (s *StandardStringDigester) SetSaltGenerator(g SaltGenerator) error {
	return s.bytes.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (s *StandardStringDigester) SetProviderName(name string) error {
	return s.bytes.SetProviderName(name)
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (s *StandardStringDigester) SetProvider(p Provider) error {
	return s.bytes.SetProvider(p)
}

// SetInvertPositionOfSaltInMessageBeforeDigesting hashes message||salt instead of salt||message.
func (s *StandardStringDigester) SetInvertPositionOfSaltInMessageBeforeDigesting(v bool) error {
	return s.bytes.SetInvertPositionOfSaltInMessageBeforeDigesting(v)
}

// SetInvertPositionOfPlainSaltInEncryptionResults places the embedded salt after the hash.
func (s *StandardStringDigester) SetInvertPositionOfPlainSaltInEncryptionResults(v bool) error {
	return s.bytes.SetInvertPositionOfPlainSaltInEncryptionResults(v)
}

// SetUseLenientSaltSizeCheck takes the embedded salt length from the digest length when matching.
func (s *StandardStringDigester) SetUseLenientSaltSizeCheck(v bool) error {
	return s.bytes.SetUseLenientSaltSizeCheck(v)
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (s *StandardStringDigester) SetLogger(logger *slog.Logger) error {
	return s.bytes.SetLogger(logger)
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (s *StandardStringDigester) SetMeterProvider(mp metric.MeterProvider) error {
	return s.bytes.SetMeterProvider(mp)
}

// SetStringOutputType selects "base64" (default) or "hexadecimal".
func (s *StandardStringDigester) SetStringOutputType(t string) error {
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
func (s *StandardStringDigester) SetPrefix(prefix string) error {
	return s.lc.configure("prefix", func() error {
		s.prefix = Explicit(prefix)
		return nil
	})
}

// SetSuffix sets the text written after every output and required on input.
func (s *StandardStringDigester) SetSuffix(suffix string) error {
	return s.lc.configure("suffix", func() error {
		s.suffix = Explicit(suffix)
		return nil
	})
}

// SetUnicodeNormalizationIgnored disables NFC normalization of messages.
func (s *StandardStringDigester) SetUnicodeNormalizationIgnored(v bool) error {
	return s.lc.configure("unicodeNormalizationIgnored", func() error {
		s.ignoreNormalize = Explicit(v)
		return nil
	})
}

// IsInitialized reports whether the configuration is frozen.
func (s *StandardStringDigester) IsInitialized() bool {
	return s.lc.isInitialized()
}

// Initialize freezes both layers. It is idempotent.
func (s *StandardStringDigester) Initialize() error {
	return s.lc.ensure(func() error {
		params, err := s.resolveParams()
		if err != nil {
			return err
		}
		if err := s.bytes.Initialize(); err != nil {
			return err
		}
		s.params = *params
		return nil
	})
}

func (s *StandardStringDigester) resolveParams() (*stringParams, error) {
	if s.preset != nil {
		p := *s.preset
		return &p, nil
	}
	var cfg StringDigesterConfig = noConfig{}
	if s.config != nil {
		cfg = s.config
	}
	enc := resolve(Base64Encoding, cfg.StringOutputType, s.outputType)
	if _, err := ParseOutputEncoding(string(enc)); err != nil {
		return nil, err
	}
	return &stringParams{
		codec: textCodec{
			encoding: enc,
			prefix:   resolve("", cfg.Prefix, s.prefix),
			suffix:   resolve("", cfg.Suffix, s.suffix),
		},
		ignoreNormalize: resolve(false, cfg.UnicodeNormalizationIgnored, s.ignoreNormalize),
	}, nil
}

func (s *StandardStringDigester) messageBytes(message string) []byte {
	b := []byte(message)
	if !s.params.ignoreNormalize {
		b = norm.NFC.Bytes(b)
	}
	if b == nil {
		b = []byte{}
	}
	return b
}

// Digest returns the encoded digest of message.
func (s *StandardStringDigester) Digest(message string) (string, error) {
	if err := s.Initialize(); err != nil {
		return "", err
	}
	out, err := s.bytes.Digest(s.messageBytes(message))
	if err != nil {
		return "", err
	}
	return s.params.codec.encode(out), nil
}

// Matches reports whether digest, as produced by Digest, is a digest of message.
// A digest with the wrong prefix, suffix or encoding fails with ErrOperationNotPossible.
func (s *StandardStringDigester) Matches(message, digest string) (bool, error) {
	if err := s.Initialize(); err != nil {
		return false, err
	}
	raw, err := s.params.codec.decode(digest)
	if err != nil {
		return false, err
	}
	return s.bytes.Matches(s.messageBytes(message), raw)
}

// Info returns the frozen byte-layer parameters, or false before initialization.
func (s *StandardStringDigester) Info() (EngineInfo, bool) {
	if !s.lc.isInitialized() {
		return EngineInfo{}, false
	}
	return s.bytes.Info()
}

// clone returns an unfrozen copy that initializes with s's frozen parameters.
func (s *StandardStringDigester) clone() *StandardStringDigester {
	preset := s.params
	return &StandardStringDigester{
		bytes:  s.bytes.clone(),
		preset: &preset,
	}
}

func (s *StandardStringDigester) reset() {
	s.lc.reset()
	s.bytes.reset()
}
