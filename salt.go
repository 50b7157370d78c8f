// salt.go: Salt generators and the salt generator registry.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"crypto/rand"
	"fmt"
	"io"
	"sort"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// SaltGenerator produces salt for digesters and encryptors.
//
// IncludePlainSaltInResult reports whether the salt must be embedded, unencrypted,
// in digest results. Generators returning false must be deterministic, because a
// digester has to regenerate the very same salt when matching.
//
// Implementations must be safe for concurrent use.
type SaltGenerator interface {
	GenerateSalt(lengthBytes int) ([]byte, error)
	IncludePlainSaltInResult() bool
}

// RandomSaltGenerator reads salt from a cryptographically secure source.
// It is the default generator.
type RandomSaltGenerator struct {
	// Reader overrides the randomness source; nil means crypto/rand.
	Reader io.Reader
}

// NewRandomSaltGenerator returns a generator backed by crypto/rand.
func NewRandomSaltGenerator() *RandomSaltGenerator {
	return &RandomSaltGenerator{}
}

// GenerateSalt returns lengthBytes random bytes.
func (g *RandomSaltGenerator) GenerateSalt(lengthBytes int) ([]byte, error) {
	if lengthBytes < 0 {
		return nil, goerrors.New(ErrCodeSaltGeneration, "salt length must not be negative")
	}
	r := g.Reader
	if r == nil {
		r = rand.Reader
	}
	salt := make([]byte, lengthBytes)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, goerrors.Wrap(err, ErrCodeSaltGeneration, "failed to generate salt")
	}
	return salt, nil
}

// IncludePlainSaltInResult returns true: random salt cannot be regenerated.
func (g *RandomSaltGenerator) IncludePlainSaltInResult() bool { return true }

// ZeroSaltGenerator always returns salt made of zero bytes.
//
// Useful when digests must be reproducible and comparable by equality, at the cost
// of the protection salt gives against precomputed tables.
type ZeroSaltGenerator struct{}

// NewZeroSaltGenerator returns a ZeroSaltGenerator.
func NewZeroSaltGenerator() *ZeroSaltGenerator {
	return &ZeroSaltGenerator{}
}

// GenerateSalt returns lengthBytes zero bytes.
func (ZeroSaltGenerator) GenerateSalt(lengthBytes int) ([]byte, error) {
	if lengthBytes < 0 {
		return nil, goerrors.New(ErrCodeSaltGeneration, "salt length must not be negative")
	}
	return make([]byte, lengthBytes), nil
}

// IncludePlainSaltInResult returns false.
func (ZeroSaltGenerator) IncludePlainSaltInResult() bool { return false }

// FixedSaltGenerator always returns a prefix of the same configured salt.
type FixedSaltGenerator struct {
	salt []byte
}

// NewFixedSaltGenerator copies salt and returns a generator serving it.
func NewFixedSaltGenerator(salt []byte) (*FixedSaltGenerator, error) {
	if len(salt) == 0 {
		return nil, invalidParameter("fixed salt", goerrors.New(ErrCodeInvalidParameter, "salt cannot be empty"))
	}
	s := make([]byte, len(salt))
	copy(s, salt)
	return &FixedSaltGenerator{salt: s}, nil
}

// GenerateSalt returns the first lengthBytes bytes of the fixed salt. Asking for more
// bytes than were configured is an error.
func (g *FixedSaltGenerator) GenerateSalt(lengthBytes int) ([]byte, error) {
	if lengthBytes < 0 {
		return nil, goerrors.New(ErrCodeSaltGeneration, "salt length must not be negative")
	}
	if lengthBytes > len(g.salt) {
		return nil, goerrors.New(ErrCodeSaltGeneration,
			fmt.Sprintf("requested salt of %d bytes, fixed salt has %d", lengthBytes, len(g.salt)))
	}
	out := make([]byte, lengthBytes)
	copy(out, g.salt[:lengthBytes])
	return out, nil
}

// IncludePlainSaltInResult returns false.
func (g *FixedSaltGenerator) IncludePlainSaltInResult() bool { return false }

// SaltGeneratorFactory builds a salt generator for the registry.
type SaltGeneratorFactory func() SaltGenerator

// Built-in salt generator names.
const (
	SaltGeneratorRandom = "random"
	SaltGeneratorZero   = "zero"
)

var (
	saltRegistryMu sync.RWMutex
	saltRegistry   = map[string]SaltGeneratorFactory{
		SaltGeneratorRandom: func() SaltGenerator { return NewRandomSaltGenerator() },
		SaltGeneratorZero:   func() SaltGenerator { return NewZeroSaltGenerator() },
	}
)

// RegisterSaltGenerator makes a salt generator available by name, so that config
// sources fed with text (environment, dotenv files, DI containers) can select it.
// Registering an existing name replaces it.
func RegisterSaltGenerator(name string, factory SaltGeneratorFactory) error {
	if err := validateName("salt generator name", name); err != nil {
		return err
	}
	if factory == nil {
		return invalidParameter("salt generator factory", goerrors.New(ErrCodeInvalidParameter, "factory cannot be nil"))
	}
	saltRegistryMu.Lock()
	defer saltRegistryMu.Unlock()
	saltRegistry[name] = factory
	return nil
}

// NewSaltGenerator builds the salt generator registered under name.
func NewSaltGenerator(name string) (SaltGenerator, error) {
	saltRegistryMu.RLock()
	factory, ok := saltRegistry[name]
	saltRegistryMu.RUnlock()
	if !ok {
		return nil, invalidParameter("salt generator",
			goerrors.New(ErrCodeInvalidParameter, fmt.Sprintf("unknown salt generator %q", name)))
	}
	return factory(), nil
}

// SaltGenerators lists the registered salt generator names in sorted order.
func SaltGenerators() []string {
	saltRegistryMu.RLock()
	defer saltRegistryMu.RUnlock()
	names := make([]string, 0, len(saltRegistry))
	for name := range saltRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
