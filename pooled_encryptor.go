// pooled_encryptor.go: Encryptors spreading work over a pool of independent members.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// PooledPBEByteEncryptor dispatches encryptions and decryptions round-robin over
// poolSize byte encryptors. The seed resolves the configuration and builds the
// password key; the other members reuse that key with their own cipher handles.
type PooledPBEByteEncryptor struct {
	lc lifecycle

	seed     *StandardPBEByteEncryptor
	poolSize Override[int]
	config   PBEConfig

	rr *roundRobin[*StandardPBEByteEncryptor]
}

// NewPooledPBEByteEncryptor returns an unconfigured pooled encryptor.
func NewPooledPBEByteEncryptor() *PooledPBEByteEncryptor {
	return &PooledPBEByteEncryptor{seed: NewStandardPBEByteEncryptor()}
}

// SetPoolSize sets the number of pool members.
func (p *PooledPBEByteEncryptor) SetPoolSize(size int) error {
	return p.lc.configure("pool size", func() error {
		if err := validatePoolSize(size); err != nil {
			return err
		}
		p.poolSize = Explicit(size)
		return nil
	})
}

// SetConfig sets the config source consulted at initialization.
func (p *PooledPBEByteEncryptor) SetConfig(cfg PBEConfig) error {
	return p.lc.configure("config", func() error {
		if err := p.seed.SetConfig(cfg); err != nil {
			return err
		}
		p.config = cfg
		return nil
	})
}

// SetAlgorithm sets the PBE algorithm name.
func (p *PooledPBEByteEncryptor) SetAlgorithm(algorithm string) error {
	return p.seed.SetAlgorithm(algorithm)
}

// SetPassword sets the encryption password. It cannot be empty.
func (p *PooledPBEByteEncryptor) SetPassword(password string) error {
	return p.seed.SetPassword(password)
}

// SetKeyObtentionIterations sets the PBKDF2 iteration count.
func (p *PooledPBEByteEncryptor) SetKeyObtentionIterations(iterations int) error {
	return p.seed.SetKeyObtentionIterations(iterations)
}

// SetSaltGenerator sets the salt source.
func (p *PooledPBEByteEncryptor) SetSaltGenerator(g SaltGenerator) error {
	return p.seed.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (p *PooledPBEByteEncryptor) SetProviderName(name string) error {
	return p.seed.SetProviderName(name)
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (p *PooledPBEByteEncryptor) SetProvider(provider Provider) error {
	return p.seed.SetProvider(provider)
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (p *PooledPBEByteEncryptor) SetLogger(logger *slog.Logger) error {
	return p.seed.SetLogger(logger)
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (p *PooledPBEByteEncryptor) SetMeterProvider(mp metric.MeterProvider) error {
	return p.seed.SetMeterProvider(mp)
}

// IsInitialized reports whether the configuration is frozen.
func (p *PooledPBEByteEncryptor) IsInitialized() bool {
	return p.lc.isInitialized()
}

// Initialize freezes the seed and builds the other members. It is idempotent.
// If a member fails to initialize, the seed is reset and the pool stays configurable.
func (p *PooledPBEByteEncryptor) Initialize() error {
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
		members, err := buildMembers(p.seed, size, p.seed.clone, (*StandardPBEByteEncryptor).Initialize)
		if err != nil {
			p.seed.reset()
			return err
		}
		p.rr = newRoundRobin(members)
		p.seed.obs.loggerOrDiscard().Debug("encryptor pool initialized", "pool_size", size)
		return nil
	})
}

// Encrypt encrypts message on the next pool member.
func (p *PooledPBEByteEncryptor) Encrypt(message []byte) ([]byte, error) {
	if message == nil {
		return nil, nil
	}
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	return p.rr.pick().Encrypt(message)
}

// Decrypt decrypts on the next pool member.
func (p *PooledPBEByteEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if ciphertext == nil {
		return nil, nil
	}
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	return p.rr.pick().Decrypt(ciphertext)
}

// Info returns the frozen parameters and the pool size.
func (p *PooledPBEByteEncryptor) Info() (EngineInfo, bool) {
	if !p.lc.isInitialized() {
		return EngineInfo{}, false
	}
	info, ok := p.seed.Info()
	info.PoolSize = p.rr.size()
	return info, ok
}

// PooledPBEStringEncryptor is the string counterpart of PooledPBEByteEncryptor.
type PooledPBEStringEncryptor struct {
	lc lifecycle

	seed     *StandardPBEStringEncryptor
	poolSize Override[int]
	config   StringPBEConfig

	rr *roundRobin[*StandardPBEStringEncryptor]
}

// NewPooledPBEStringEncryptor returns an unconfigured pooled string encryptor.
func NewPooledPBEStringEncryptor() *PooledPBEStringEncryptor {
	return &PooledPBEStringEncryptor{seed: NewStandardPBEStringEncryptor()}
}

// SetPoolSize sets the number of pool members.
func (p *PooledPBEStringEncryptor) SetPoolSize(size int) error {
	return p.lc.configure("pool size", func() error {
		if err := validatePoolSize(size); err != nil {
			return err
		}
		p.poolSize = Explicit(size)
		return nil
	})
}

// SetConfig sets the config source consulted at initialization.
func (p *PooledPBEStringEncryptor) SetConfig(cfg StringPBEConfig) error {
	return p.lc.configure("config", func() error {
		if err := p.seed.SetConfig(cfg); err != nil {
			return err
		}
		p.config = cfg
		return nil
	})
}

// SetAlgorithm sets the PBE algorithm name.
func (p *PooledPBEStringEncryptor) SetAlgorithm(algorithm string) error {
	return p.seed.SetAlgorithm(algorithm)
}

// SetPassword sets the encryption password. It cannot be empty.
func (p *PooledPBEStringEncryptor) SetPassword(password string) error {
	return p.seed.SetPassword(password)
}

// SetKeyObtentionIterations sets the PBKDF2 iteration count.
func (p *PooledPBEStringEncryptor) SetKeyObtentionIterations(iterations int) error {
	return p.seed.SetKeyObtentionIterations(iterations)
}

// SetSaltGenerator sets the salt source.
func (p *PooledPBEStringEncryptor) SetSaltGenerator(g SaltGenerator) error {
	return p.seed.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (p *PooledPBEStringEncryptor) SetProviderName(name string) error {
	return p.seed.SetProviderName(name)
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (p *PooledPBEStringEncryptor) SetProvider(provider Provider) error {
	return p.seed.SetProvider(provider)
}

// SetStringOutputType selects "base64" or "hexadecimal" output.
func (p *PooledPBEStringEncryptor) SetStringOutputType(t string) error {
	return p.seed.SetStringOutputType(t)
}

// SetPrefix sets the text written before every output and required on input.
func (p *PooledPBEStringEncryptor) SetPrefix(prefix string) error {
	return p.seed.SetPrefix(prefix)
}

// SetSuffix sets the text written after every output and required on input.
func (p *PooledPBEStringEncryptor) SetSuffix(suffix string) error {
	return p.seed.SetSuffix(suffix)
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (p *PooledPBEStringEncryptor) SetLogger(logger *slog.Logger) error {
	return p.seed.SetLogger(logger)
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (p *PooledPBEStringEncryptor) SetMeterProvider(mp metric.MeterProvider) error {
	return p.seed.SetMeterProvider(mp)
}

// IsInitialized reports whether the configuration is frozen.
func (p *PooledPBEStringEncryptor) IsInitialized() bool {
	return p.lc.isInitialized()
}

// Initialize freezes the seed and builds the other members. It is idempotent.
// If a member fails to initialize, the seed is reset and the pool stays configurable.
func (p *PooledPBEStringEncryptor) Initialize() error {
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
		members, err := buildMembers(p.seed, size, p.seed.clone, (*StandardPBEStringEncryptor).Initialize)
		if err != nil {
			p.seed.reset()
			return err
		}
		p.rr = newRoundRobin(members)
		p.seed.bytes.obs.loggerOrDiscard().Debug("string encryptor pool initialized", "pool_size", size)
		return nil
	})
}

// Encrypt encrypts message on the next pool member.
func (p *PooledPBEStringEncryptor) Encrypt(message string) (string, error) {
	if err := p.Initialize(); err != nil {
		return "", err
	}
	return p.rr.pick().Encrypt(message)
}

// Decrypt decrypts on the next pool member.
func (p *PooledPBEStringEncryptor) Decrypt(encrypted string) (string, error) {
	if err := p.Initialize(); err != nil {
		return "", err
	}
	return p.rr.pick().Decrypt(encrypted)
}

// Info returns the frozen parameters and the pool size.
func (p *PooledPBEStringEncryptor) Info() (EngineInfo, bool) {
	if !p.lc.isInitialized() {
		return EngineInfo{}, false
	}
	info, ok := p.seed.Info()
	info.PoolSize = p.rr.size()
	return info, ok
}
