// provider.go: Cryptography provider interface, registry, and provider selection.
//
// Providers supply the primitives (hash functions, PBE schemes) that digesters and
// encryptors orchestrate. The registry replaces loading providers by class name:
// providers are registered explicitly, looked up by name, and searched in
// registration order when no provider is selected.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"fmt"
	"hash"
	"strings"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// Provider supplies hash functions and PBE schemes by algorithm name.
//
// Algorithm lookups are case-insensitive. A provider returns an error for any
// algorithm it does not implement; the error text may be surfaced during
// initialization, never during operations.
type Provider interface {
	// Name identifies the provider in the registry (e.g. "Go", "XCrypto").
	Name() string

	// NewDigest returns a fresh hash handle. Handles are owned by one engine and
	// need not be safe for concurrent use.
	NewDigest(algorithm string) (hash.Hash, error)

	// PBEScheme returns the password-based encryption scheme for algorithm.
	PBEScheme(algorithm string) (PBEScheme, error)
}

// ProviderSelector picks the provider used by an engine: none (search every
// registered provider), by registered name, or by handle.
type ProviderSelector struct {
	name     string
	provider Provider
}

// ProviderByName selects the registered provider called name.
func ProviderByName(name string) ProviderSelector {
	return ProviderSelector{name: name}
}

// ProviderByHandle selects p directly, registered or not.
func ProviderByHandle(p Provider) ProviderSelector {
	return ProviderSelector{provider: p}
}

// IsZero reports whether no provider is selected.
func (s ProviderSelector) IsZero() bool {
	return s.name == "" && s.provider == nil
}

// String returns the selected provider name, or "" when none is selected.
func (s ProviderSelector) String() string {
	if s.provider != nil {
		return s.provider.Name()
	}
	return s.name
}

// candidates returns the providers to try, in order.
func (s ProviderSelector) candidates() ([]Provider, error) {
	switch {
	case s.provider != nil:
		return []Provider{s.provider}, nil
	case s.name != "":
		p, err := LookupProvider(s.name)
		if err != nil {
			return nil, err
		}
		return []Provider{p}, nil
	default:
		return defaultRegistry.all(), nil
	}
}

// newDigest acquires a hash handle for algorithm from the selected provider(s).
func (s ProviderSelector) newDigest(algorithm string) (hash.Hash, Provider, error) {
	providers, err := s.candidates()
	if err != nil {
		return nil, nil, err
	}
	var lastErr error
	for _, p := range providers {
		h, err := p.NewDigest(algorithm)
		if err == nil {
			return h, p, nil
		}
		lastErr = err
	}
	return nil, nil, initializationFailed(ErrCodeAlgorithmNotFound, lastErr,
		fmt.Sprintf("no provider supplies digest algorithm %q", algorithm))
}

// pbeScheme looks up the PBE scheme for algorithm in the selected provider(s).
func (s ProviderSelector) pbeScheme(algorithm string) (PBEScheme, Provider, error) {
	providers, err := s.candidates()
	if err != nil {
		return nil, nil, err
	}
	var lastErr error
	for _, p := range providers {
		scheme, err := p.PBEScheme(algorithm)
		if err == nil {
			return scheme, p, nil
		}
		lastErr = err
	}
	return nil, nil, initializationFailed(ErrCodeAlgorithmNotFound, lastErr,
		fmt.Sprintf("no provider supplies PBE algorithm %q", algorithm))
}

// providerRegistry keeps providers by name, preserving registration order.
type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

var defaultRegistry = newProviderRegistry(newGoProvider(), newXCryptoProvider())

func newProviderRegistry(providers ...Provider) *providerRegistry {
	r := &providerRegistry{providers: make(map[string]Provider)}
	for _, p := range providers {
		_ = r.register(p)
	}
	return r
}

func (r *providerRegistry) register(p Provider) error {
	if p == nil {
		return invalidParameter("provider", goerrors.New(ErrCodeInvalidParameter, "provider cannot be nil"))
	}
	if err := validateName("provider name", p.Name()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToUpper(p.Name())
	if _, exists := r.providers[key]; !exists {
		r.order = append(r.order, key)
	}
	r.providers[key] = p
	return nil
}

func (r *providerRegistry) lookup(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[strings.ToUpper(name)]
	if !ok {
		return nil, initializationFailed(ErrCodeProviderNotFound, nil, fmt.Sprintf("provider %q not registered", name))
	}
	return p, nil
}

func (r *providerRegistry) all() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.providers[key])
	}
	return out
}

// RegisterProvider adds p to the registry, after the built-in providers. A provider
// registered under an existing name (case-insensitive) replaces it in place.
func RegisterProvider(p Provider) error {
	return defaultRegistry.register(p)
}

// LookupProvider returns the provider registered under name.
func LookupProvider(name string) (Provider, error) {
	return defaultRegistry.lookup(name)
}

// Providers lists registered provider names in search order.
func Providers() []string {
	all := defaultRegistry.all()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name()
	}
	return names
}
