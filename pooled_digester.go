// pooled_digester.go: Digesters spreading work over a pool of independent members.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// PooledByteDigester dispatches digests round-robin over poolSize byte digesters.
// The first member (the seed) resolves the configuration; the others clone the
// resolved parameters and own their hash handles, so concurrent callers do not
// contend on a single lock.
//
// The pool size is mandatory. It is set with SetPoolSize or taken from the config
// source.
type PooledByteDigester struct {
	lc lifecycle

	seed     *StandardByteDigester
	poolSize Override[int]
	config   DigesterConfig

	rr *roundRobin[*StandardByteDigester]
}

// NewPooledByteDigester returns an unconfigured pooled digester.
func NewPooledByteDigester() *PooledByteDigester {
	return &PooledByteDigester{seed: NewStandardByteDigester()}
}

// SetPoolSize sets the number of members.
func (p *PooledByteDigester) SetPoolSize(size int) error {
	return p.lc.configure("pool size", func() error {
		if err := validatePoolSize(size); err != nil {
			return err
		}
		p.poolSize = Explicit(size)
		return nil
	})
}

// SetConfig sets the config source consulted at initialization.
func (p *PooledByteDigester) SetConfig(cfg DigesterConfig) error {
	return p.lc.configure("config", func() error {
		if err := p.seed.SetConfig(cfg); err != nil {
			return err
		}
		p.config = cfg
		return nil
	})
}

// SetAlgorithm sets the digest algorithm name.
func (p *PooledByteDigester) SetAlgorithm(algorithm string) error {
	return p.seed.SetAlgorithm(algorithm)
}

// SetIterations sets how many times the hash function is applied.
func (p *PooledByteDigester) SetIterations(iterations int) error {
	return p.seed.SetIterations(iterations)
}

// SetSaltSizeBytes sets the salt length. Zero disables salting.
func (p *PooledByteDigester) SetSaltSizeBytes(size int) error {
	return p.seed.SetSaltSizeBytes(size)
}

// SetSaltGenerator sets the salt source.
func (p *PooledByteDigester) SetSaltGenerator(g SaltGenerator) error {
	return p.seed.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (p *PooledByteDigester) SetProviderName(name string) error {
	return p.seed.SetProviderName(name)
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (p *PooledByteDigester) SetProvider(provider Provider) error {
	return p.seed.SetProvider(provider)
}

// SetInvertPositionOfSaltInMessageBeforeDigesting hashes message||salt instead of salt||message.
func (p *PooledByteDigester) SetInvertPositionOfSaltInMessageBeforeDigesting(v bool) error {
	return p.seed.SetInvertPositionOfSaltInMessageBeforeDigesting(v)
}

// SetInvertPositionOfPlainSaltInEncryptionResults places the embedded salt after the hash.
func (p *PooledByteDigester) SetInvertPositionOfPlainSaltInEncryptionResults(v bool) error {
	return p.seed.SetInvertPositionOfPlainSaltInEncryptionResults(v)
}

// SetUseLenientSaltSizeCheck takes the embedded salt length from the digest length when matching.
func (p *PooledByteDigester) SetUseLenientSaltSizeCheck(v bool) error {
	return p.seed.SetUseLenientSaltSizeCheck(v)
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (p *PooledByteDigester) SetLogger(logger *slog.Logger) error {
	return p.seed.SetLogger(logger)
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (p *PooledByteDigester) SetMeterProvider(mp metric.MeterProvider) error {
	return p.seed.SetMeterProvider(mp)
}

// IsInitialized reports whether the configuration is frozen.
func (p *PooledByteDigester) IsInitialized() bool {
	return p.lc.isInitialized()
}

// Initialize freezes the seed and builds the other members. It is idempotent.
// If a member fails to initialize, the seed is reset and the pool stays configurable.
func (p *PooledByteDigester) Initialize() error {
	return p.lc.ensure(func() error {
		var fromConfig func() (int, bool)
		if p.config != nil {
			fromConfig = p.config.PoolSize
		}
		size, err := resolvePoolSize(p.poolSize, fromConfig)
		if err != nil {
			return err
		}
		if err := p.seed.Initialize(); err != nil {
			return err
		}
		members, err := buildMembers(p.seed, size, p.seed.clone, (*StandardByteDigester).Initialize)
		if err != nil {
			p.seed.reset()
			return err
		}
		p.rr = newRoundRobin(members)
		p.seed.obs.loggerOrDiscard().Debug("digester pool initialized", "pool_size", size)
		return nil
	})
}

// Digest digests message on the next pool member.
func (p *PooledByteDigester) Digest(message []byte) ([]byte, error) {
	if message == nil {
		return nil, nil
	}
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	return p.rr.pick().Digest(message)
}

// Matches checks digest on the next pool member.
func (p *PooledByteDigester) Matches(message, digest []byte) (bool, error) {
	if message == nil || digest == nil {
		return message == nil && digest == nil, nil
	}
	if err := p.Initialize(); err != nil {
		return false, err
	}
	return p.rr.pick().Matches(message, digest)
}

// Info returns the seed parameters and the pool size, or false before initialization.
func (p *PooledByteDigester) Info() (EngineInfo, bool) {
	if !p.lc.isInitialized() {
		return EngineInfo{}, false
	}
	info, ok := p.seed.Info()
	info.PoolSize = p.rr.size()
	return info, ok
}

// PooledStringDigester is the string counterpart of PooledByteDigester.
type PooledStringDigester struct {
	lc lifecycle

	seed     *StandardStringDigester
	poolSize Override[int]
	config   StringDigesterConfig

	rr *roundRobin[*StandardStringDigester]
}

// NewPooledStringDigester returns an unconfigured pooled string digester.
func NewPooledStringDigester() *PooledStringDigester {
	return &PooledStringDigester{seed: NewStandardStringDigester()}
}

// SetPoolSize sets the number of pool members.
func (p *PooledStringDigester) SetPoolSize(size int) error {
	return p.lc.configure("pool size", func() error {
		if err := validatePoolSize(size); err != nil {
			return err
		}
		p.poolSize = Explicit(size)
		return nil
	})
}

// SetConfig sets the config source consulted at initialization.
func (p *PooledStringDigester) SetConfig(cfg StringDigesterConfig) error {
	return p.lc.configure("config", func() error {
		if err := p.seed.SetConfig(cfg); err != nil {
			return err
		}
		p.config = cfg
		return nil
	})
}

// SetAlgorithm sets the digest algorithm name.
func (p *PooledStringDigester) SetAlgorithm(algorithm string) error {
	return p.seed.SetAlgorithm(algorithm)
}

// SetIterations sets how many times the hash function is applied.
func (p *PooledStringDigester) SetIterations(iterations int) error {
	return p.seed.SetIterations(iterations)
}

// SetSaltSizeBytes sets the salt length. Zero disables salting.
func (p *PooledStringDigester) SetSaltSizeBytes(size int) error {
	return p.seed.SetSaltSizeBytes(size)
}

// SetSaltGenerator sets the salt source.
func (p *PooledStringDigester) SetSaltGenerator(g SaltGenerator) error {
	return p.seed.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (p *PooledStringDigester) SetProviderName(name string) error {
	return p.seed.SetProviderName(name)
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (p *PooledStringDigester) SetProvider(provider Provider) error {
	return p.seed.SetProvider(provider)
}

// SetInvertPositionOfSaltInMessageBeforeDigesting hashes message||salt instead of salt||message.
func (p *PooledStringDigester) SetInvertPositionOfSaltInMessageBeforeDigesting(v bool) error {
	return p.seed.SetInvertPositionOfSaltInMessageBeforeDigesting(v)
}

// SetInvertPositionOfPlainSaltInEncryptionResults places the embedded salt after the hash.
func (p *PooledStringDigester) SetInvertPositionOfPlainSaltInEncryptionResults(v bool) error {
	return p.seed.SetInvertPositionOfPlainSaltInEncryptionResults(v)
}

// SetUseLenientSaltSizeCheck takes the embedded salt length from the digest length when matching.
func (p *PooledStringDigester) SetUseLenientSaltSizeCheck(v bool) error {
	return p.seed.SetUseLenientSaltSizeCheck(v)
}

// SetStringOutputType selects "base64" or "hexadecimal" output.
func (p *PooledStringDigester) SetStringOutputType(t string) error {
	return p.seed.SetStringOutputType(t)
}

// SetPrefix sets the text written before every output and required on input.
func (p *PooledStringDigester) SetPrefix(prefix string) error {
	return p.seed.SetPrefix(prefix)
}

// SetSuffix sets the text written after every output and required on input.
func (p *PooledStringDigester) SetSuffix(suffix string) error {
	return p.seed.SetSuffix(suffix)
}

// SetUnicodeNormalizationIgnored disables NFC normalization of messages.
func (p *PooledStringDigester) SetUnicodeNormalizationIgnored(v bool) error {
	return p.seed.SetUnicodeNormalizationIgnored(v)
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (p *PooledStringDigester) SetLogger(logger *slog.Logger) error {
	return p.seed.SetLogger(logger)
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (p *PooledStringDigester) SetMeterProvider(mp metric.MeterProvider) error {
	return p.seed.SetMeterProvider(mp)
}

// IsInitialized reports whether the configuration is frozen.
func (p *PooledStringDigester) IsInitialized() bool {
	return p.lc.isInitialized()
}

// Initialize freezes the seed and builds the other members. It is idempotent.
// If a member fails to initialize, the seed is reset and the pool stays configurable.
func (p *PooledStringDigester) Initialize() error {
	return p.lc.ensure(func() error {
		var fromConfig func() (int, bool)
		if p.config != nil {
			fromConfig = p.config.PoolSize
		}
		size, err := resolvePoolSize(p.poolSize, fromConfig)
		if err != nil {
			return err
		}
		if err := p.seed.Initialize(); err != nil {
			return err
		}
		members, err := buildMembers(p.seed, size, p.seed.clone, (*StandardStringDigester).Initialize)
		if err != nil {
			p.seed.reset()
			return err
		}
		p.rr = newRoundRobin(members)
		p.seed.bytes.obs.loggerOrDiscard().Debug("string digester pool initialized", "pool_size", size)
		return nil
	})
}

// Digest digests message on the next pool member.
func (p *PooledStringDigester) Digest(message string) (string, error) {
	if err := p.Initialize(); err != nil {
		return "", err
	}
	return p.rr.pick().Digest(message)
}

// Matches checks digest on the next pool member.
func (p *PooledStringDigester) Matches(message, digest string) (bool, error) {
	if err := p.Initialize(); err != nil {
		return false, err
	}
	return p.rr.pick().Matches(message, digest)
}

// Info returns the frozen parameters and the pool size.
func (p *PooledStringDigester) Info() (EngineInfo, bool) {
	if !p.lc.isInitialized() {
		return EngineInfo{}, false
	}
	info, ok := p.seed.Info()
	info.PoolSize = p.rr.size()
	return info, ok
}
