// config.go: Configuration sources for digesters and encryptors.
//
// A config source sits between the built-in defaults and the engine setters:
// a value it reports is used unless the same parameter was set explicitly on the
// engine. Engines query their config source once, while initializing.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// DigesterConfig supplies optional digester parameters. The boolean result is false
// when the source has no value for the parameter.
type DigesterConfig interface {
	Algorithm() (string, bool)
	Iterations() (int, bool)
	SaltSizeBytes() (int, bool)
	SaltGenerator() (SaltGenerator, bool)
	ProviderName() (string, bool)
	Provider() (Provider, bool)
	InvertPositionOfSaltInMessageBeforeDigesting() (bool, bool)
	InvertPositionOfPlainSaltInEncryptionResults() (bool, bool)
	UseLenientSaltSizeCheck() (bool, bool)
	PoolSize() (int, bool)
}

// StringDigesterConfig adds the string-layer parameters.
type StringDigesterConfig interface {
	DigesterConfig
	StringOutputType() (OutputEncoding, bool)
	Prefix() (string, bool)
	Suffix() (string, bool)
	UnicodeNormalizationIgnored() (bool, bool)
}

// PBEConfig supplies optional encryptor parameters.
type PBEConfig interface {
	Algorithm() (string, bool)
	Password() (string, bool)
	Iterations() (int, bool)
	SaltGenerator() (SaltGenerator, bool)
	ProviderName() (string, bool)
	Provider() (Provider, bool)
	PoolSize() (int, bool)
}

// StringPBEConfig adds the string-layer parameters.
type StringPBEConfig interface {
	PBEConfig
	StringOutputType() (OutputEncoding, bool)
	Prefix() (string, bool)
	Suffix() (string, bool)
}

// Property keys understood by SimpleConfig.Set and EnvironmentConfig bindings.
const (
	KeyAlgorithm                   = "algorithm"
	KeyPassword                    = "password"
	KeyIterations                  = "iterations"
	KeySaltSizeBytes               = "saltSizeBytes"
	KeySaltGenerator               = "saltGenerator"
	KeyProviderName                = "providerName"
	KeyPoolSize                    = "poolSize"
	KeyStringOutputType            = "stringOutputType"
	KeyPrefix                      = "prefix"
	KeySuffix                      = "suffix"
	KeyInvertSaltInMessage         = "invertPositionOfSaltInMessageBeforeDigesting"
	KeyInvertPlainSaltInResults    = "invertPositionOfPlainSaltInEncryptionResults"
	KeyUseLenientSaltSizeCheck     = "useLenientSaltSizeCheck"
	KeyUnicodeNormalizationIgnored = "unicodeNormalizationIgnored"
)

// SimpleConfig is a config source holding plain values. It implements every config
// interface of this package. Setters validate immediately. It is safe for
// concurrent use.
type SimpleConfig struct {
	mu sync.RWMutex

	algorithm        Override[string]
	password         Override[string]
	iterations       Override[int]
	saltSizeBytes    Override[int]
	saltGenerator    Override[SaltGenerator]
	providerName     Override[string]
	provider         Override[Provider]
	poolSize         Override[int]
	outputType       Override[OutputEncoding]
	prefix           Override[string]
	suffix           Override[string]
	invertSalt       Override[bool]
	invertPlainSalt  Override[bool]
	lenientSaltCheck Override[bool]
	ignoreNormalize  Override[bool]
}

// NewSimpleConfig returns an empty SimpleConfig.
func NewSimpleConfig() *SimpleConfig {
	return &SimpleConfig{}
}

func getOverride[T any](mu *sync.RWMutex, o *Override[T]) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return o.Get()
}

func setOverride[T any](mu *sync.RWMutex, o *Override[T], v T) {
	mu.Lock()
	defer mu.Unlock()
	*o = Explicit(v)
}

func clearOverride[T any](mu *sync.RWMutex, o *Override[T]) {
	mu.Lock()
	defer mu.Unlock()
	*o = Override[T]{}
}

// Algorithm returns the algorithm name and whether it is set.
func (c *SimpleConfig) Algorithm() (string, bool) { return getOverride(&c.mu, &c.algorithm) }

// Password returns the password and whether it is set.
func (c *SimpleConfig) Password() (string, bool) { return getOverride(&c.mu, &c.password) }

// Iterations returns the iteration count and whether it is set.
func (c *SimpleConfig) Iterations() (int, bool) { return getOverride(&c.mu, &c.iterations) }

// SaltSizeBytes returns the salt length and whether it is set.
func (c *SimpleConfig) SaltSizeBytes() (int, bool) { return getOverride(&c.mu, &c.saltSizeBytes) }

// ProviderName returns the provider name and whether it is set.
func (c *SimpleConfig) ProviderName() (string, bool) { return getOverride(&c.mu, &c.providerName) }

// Provider returns the provider handle and whether it is set.
func (c *SimpleConfig) Provider() (Provider, bool) { return getOverride(&c.mu, &c.provider) }

// PoolSize returns the pool size and whether it is set.
func (c *SimpleConfig) PoolSize() (int, bool) { return getOverride(&c.mu, &c.poolSize) }

// Prefix returns the output prefix and whether it is set.
func (c *SimpleConfig) Prefix() (string, bool) { return getOverride(&c.mu, &c.prefix) }

// Suffix returns the output suffix and whether it is set.
func (c *SimpleConfig) Suffix() (string, bool) { return getOverride(&c.mu, &c.suffix) }

// SaltGenerator returns the salt generator and whether it is set.
func (c *SimpleConfig) SaltGenerator() (SaltGenerator, bool) {
	return getOverride(&c.mu, &c.saltGenerator)
}

// StringOutputType returns the output encoding and whether it is set.
func (c *SimpleConfig) StringOutputType() (OutputEncoding, bool) {
	return getOverride(&c.mu, &c.outputType)
}

// InvertPositionOfSaltInMessageBeforeDigesting returns the salt-after-message flag and whether it is set.
func (c *SimpleConfig) InvertPositionOfSaltInMessageBeforeDigesting() (bool, bool) {
	return getOverride(&c.mu, &c.invertSalt)
}

// InvertPositionOfPlainSaltInEncryptionResults returns the salt-after-hash flag and whether it is set.
func (c *SimpleConfig) InvertPositionOfPlainSaltInEncryptionResults() (bool, bool) {
	return getOverride(&c.mu, &c.invertPlainSalt)
}

// UseLenientSaltSizeCheck returns the lenient salt check flag and whether it is set.
func (c *SimpleConfig) UseLenientSaltSizeCheck() (bool, bool) {
	return getOverride(&c.mu, &c.lenientSaltCheck)
}

// UnicodeNormalizationIgnored returns the normalization flag and whether it is set.
func (c *SimpleConfig) UnicodeNormalizationIgnored() (bool, bool) {
	return getOverride(&c.mu, &c.ignoreNormalize)
}

// SetAlgorithm sets the digest or PBE algorithm name.
func (c *SimpleConfig) SetAlgorithm(algorithm string) error {
	if err := validateName("algorithm", algorithm); err != nil {
		return err
	}
	setOverride(&c.mu, &c.algorithm, algorithm)
	return nil
}

// SetPassword sets the PBE password.
func (c *SimpleConfig) SetPassword(password string) error {
	if password == "" {
		return invalidParameter("password", goerrors.New(ErrCodeInvalidParameter, "password cannot be empty"))
	}
	setOverride(&c.mu, &c.password, password)
	return nil
}

// SetIterations sets the hash or key obtention iteration count.
func (c *SimpleConfig) SetIterations(iterations int) error {
	if err := validateIterations(iterations); err != nil {
		return err
	}
	setOverride(&c.mu, &c.iterations, iterations)
	return nil
}

// SetSaltSizeBytes sets the digester salt size. Zero disables salting.
func (c *SimpleConfig) SetSaltSizeBytes(size int) error {
	if err := validateSaltSize(size); err != nil {
		return err
	}
	setOverride(&c.mu, &c.saltSizeBytes, size)
	return nil
}

// SetSaltGenerator sets the salt generator.
func (c *SimpleConfig) SetSaltGenerator(g SaltGenerator) error {
	if g == nil {
		return invalidParameter("salt generator", goerrors.New(ErrCodeInvalidParameter, "salt generator cannot be nil"))
	}
	setOverride(&c.mu, &c.saltGenerator, g)
	return nil
}

// SetSaltGeneratorName sets the salt generator by registered name.
func (c *SimpleConfig) SetSaltGeneratorName(name string) error {
	g, err := NewSaltGenerator(name)
	if err != nil {
		return err
	}
	return c.SetSaltGenerator(g)
}

// SetProviderName selects a registered provider by name.
func (c *SimpleConfig) SetProviderName(name string) error {
	if err := validateName("provider name", name); err != nil {
		return err
	}
	setOverride(&c.mu, &c.providerName, name)
	return nil
}

// SetProvider selects a provider by handle. It takes precedence over a provider name.
func (c *SimpleConfig) SetProvider(p Provider) error {
	if p == nil {
		return invalidParameter("provider", goerrors.New(ErrCodeInvalidParameter, "provider cannot be nil"))
	}
	setOverride(&c.mu, &c.provider, p)
	return nil
}

// SetPoolSize sets the number of members of pooled engines.
func (c *SimpleConfig) SetPoolSize(size int) error {
	if err := validatePoolSize(size); err != nil {
		return err
	}
	setOverride(&c.mu, &c.poolSize, size)
	return nil
}

// SetStringOutputType sets the string-layer encoding ("base64" or "hexadecimal").
func (c *SimpleConfig) SetStringOutputType(t string) error {
	enc, err := ParseOutputEncoding(t)
	if err != nil {
		return err
	}
	setOverride(&c.mu, &c.outputType, enc)
	return nil
}

// SetPrefix sets the literal prefix of string-layer outputs.
func (c *SimpleConfig) SetPrefix(prefix string) { setOverride(&c.mu, &c.prefix, prefix) }

// SetSuffix sets the literal suffix of string-layer outputs.
func (c *SimpleConfig) SetSuffix(suffix string) { setOverride(&c.mu, &c.suffix, suffix) }

// SetInvertPositionOfSaltInMessageBeforeDigesting sets the salt-after-message flag.
func (c *SimpleConfig) SetInvertPositionOfSaltInMessageBeforeDigesting(v bool) {
	setOverride(&c.mu, &c.invertSalt, v)
}

// SetInvertPositionOfPlainSaltInEncryptionResults sets the salt-after-hash flag.
func (c *SimpleConfig) SetInvertPositionOfPlainSaltInEncryptionResults(v bool) {
	setOverride(&c.mu, &c.invertPlainSalt, v)
}

// SetUseLenientSaltSizeCheck sets the lenient salt check flag.
func (c *SimpleConfig) SetUseLenientSaltSizeCheck(v bool) {
	setOverride(&c.mu, &c.lenientSaltCheck, v)
}

// SetUnicodeNormalizationIgnored sets the normalization flag.
func (c *SimpleConfig) SetUnicodeNormalizationIgnored(v bool) {
	setOverride(&c.mu, &c.ignoreNormalize, v)
}

// Set assigns a parameter from text, the way DI containers and property files
// supply configuration. key is one of the Key* constants.
func (c *SimpleConfig) Set(key, value string) error {
	switch key {
	case KeyAlgorithm:
		return c.SetAlgorithm(value)
	case KeyPassword:
		return c.SetPassword(value)
	case KeyIterations:
		n, err := parseInt("iterations", value)
		if err != nil {
			return err
		}
		return c.SetIterations(n)
	case KeySaltSizeBytes:
		n, err := parseInt("salt size", value)
		if err != nil {
			return err
		}
		return c.SetSaltSizeBytes(n)
	case KeySaltGenerator:
		return c.SetSaltGeneratorName(value)
	case KeyProviderName:
		return c.SetProviderName(value)
	case KeyPoolSize:
		n, err := parseInt("pool size", value)
		if err != nil {
			return err
		}
		return c.SetPoolSize(n)
	case KeyStringOutputType:
		return c.SetStringOutputType(value)
	case KeyPrefix:
		c.SetPrefix(value)
		return nil
	case KeySuffix:
		c.SetSuffix(value)
		return nil
	}

	b, err := parseBool(key, value)
	if err != nil {
		if _, known := boolKeys[key]; !known {
			return unknownKey(key)
		}
		return err
	}
	switch key {
	case KeyInvertSaltInMessage:
		c.SetInvertPositionOfSaltInMessageBeforeDigesting(b)
	case KeyInvertPlainSaltInResults:
		c.SetInvertPositionOfPlainSaltInEncryptionResults(b)
	case KeyUseLenientSaltSizeCheck:
		c.SetUseLenientSaltSizeCheck(b)
	case KeyUnicodeNormalizationIgnored:
		c.SetUnicodeNormalizationIgnored(b)
	default:
		return unknownKey(key)
	}
	return nil
}

// SetAll applies every entry of props with Set, in sorted key order, and stops at
// the first error.
func (c *SimpleConfig) SetAll(props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, props[k]); err != nil {
			return err
		}
	}
	return nil
}

// unset clears a parameter, used by environment bindings whose variable is absent.
func (c *SimpleConfig) unset(key string) error {
	switch key {
	case KeyAlgorithm:
		clearOverride(&c.mu, &c.algorithm)
	case KeyPassword:
		clearOverride(&c.mu, &c.password)
	case KeyIterations:
		clearOverride(&c.mu, &c.iterations)
	case KeySaltSizeBytes:
		clearOverride(&c.mu, &c.saltSizeBytes)
	case KeySaltGenerator:
		clearOverride(&c.mu, &c.saltGenerator)
	case KeyProviderName:
		clearOverride(&c.mu, &c.providerName)
	case KeyPoolSize:
		clearOverride(&c.mu, &c.poolSize)
	case KeyStringOutputType:
		clearOverride(&c.mu, &c.outputType)
	case KeyPrefix:
		clearOverride(&c.mu, &c.prefix)
	case KeySuffix:
		clearOverride(&c.mu, &c.suffix)
	case KeyInvertSaltInMessage:
		clearOverride(&c.mu, &c.invertSalt)
	case KeyInvertPlainSaltInResults:
		clearOverride(&c.mu, &c.invertPlainSalt)
	case KeyUseLenientSaltSizeCheck:
		clearOverride(&c.mu, &c.lenientSaltCheck)
	case KeyUnicodeNormalizationIgnored:
		clearOverride(&c.mu, &c.ignoreNormalize)
	default:
		return unknownKey(key)
	}
	return nil
}

var boolKeys = map[string]struct{}{
	KeyInvertSaltInMessage:         {},
	KeyInvertPlainSaltInResults:    {},
	KeyUseLenientSaltSizeCheck:     {},
	KeyUnicodeNormalizationIgnored: {},
}

func unknownKey(key string) error {
	return invalidParameter("property key",
		goerrors.New(ErrCodeInvalidParameter, fmt.Sprintf("unknown property %q", strings.TrimSpace(key))))
}

// noConfig stands in for an absent config source: it reports no value at all.
type noConfig struct{}

func (noConfig) Algorithm() (string, bool) { return "", false }
func (noConfig) Password() (string, bool) { return "", false }
func (noConfig) Iterations() (int, bool) { return 0, false }
func (noConfig) SaltSizeBytes() (int, bool) { return 0, false }
func (noConfig) SaltGenerator() (SaltGenerator, bool) { return nil, false }
func (noConfig) ProviderName() (string, bool) { return "", false }
func (noConfig) Provider() (Provider, bool) { return nil, false }
func (noConfig) PoolSize() (int, bool) { return 0, false }
func (noConfig) StringOutputType() (OutputEncoding, bool) { return "", false }
func (noConfig) Prefix() (string, bool) { return "", false }
func (noConfig) Suffix() (string, bool) { return "", false }
func (noConfig) InvertPositionOfSaltInMessageBeforeDigesting() (bool, bool) { return false, false }
func (noConfig) InvertPositionOfPlainSaltInEncryptionResults() (bool, bool) { return false, false }
func (noConfig) UseLenientSaltSizeCheck() (bool, bool) { return false, false }
func (noConfig) UnicodeNormalizationIgnored() (bool, bool) { return false, false }

var (
	_ StringDigesterConfig = noConfig{}
	_ StringPBEConfig      = noConfig{}
	_ StringDigesterConfig = (*SimpleConfig)(nil)
	_ StringPBEConfig      = (*SimpleConfig)(nil)
)
