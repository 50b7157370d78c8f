// config_deferred.go: Config source whose password is supplied after startup.
//
// An application can build its encryptors at startup with a DeferredConfig and
// receive the password later, for example from an operator console. Until the
// password arrives the config reports no password, so initializing an encryptor
// fails with ErrMissingRequiredParameter and can be retried.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"crypto/subtle"
	"fmt"
	"sort"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// DeferredConfig is a SimpleConfig identified by name whose password is supplied
// through a DeferredConfigRegistry. An optional validation word must accompany
// the password when set.
type DeferredConfig struct {
	SimpleConfig

	name           string
	validationWord string
}

// NewDeferredConfig returns a DeferredConfig named name.
func NewDeferredConfig(name string) (*DeferredConfig, error) {
	if err := validateName("config name", name); err != nil {
		return nil, err
	}
	return &DeferredConfig{name: name}, nil
}

// Name returns the config name.
func (c *DeferredConfig) Name() string { return c.name }

// SetValidationWord sets the word that must accompany the password.
func (c *DeferredConfig) SetValidationWord(word string) {
	c.mu.Lock()
	c.validationWord = word
	c.mu.Unlock()
}

// IsComplete reports whether the password has been supplied.
func (c *DeferredConfig) IsComplete() bool {
	_, ok := c.Password()
	return ok
}

func (c *DeferredConfig) checkValidationWord(word string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.validationWord == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(c.validationWord), []byte(word)) == 1
}

// DeferredConfigRegistry tracks the deferred configs of an application.
type DeferredConfigRegistry struct {
	mu      sync.RWMutex
	configs map[string]*DeferredConfig
}

// NewDeferredConfigRegistry returns an empty registry.
func NewDeferredConfigRegistry() *DeferredConfigRegistry {
	return &DeferredConfigRegistry{configs: make(map[string]*DeferredConfig)}
}

// Register adds cfg. Names are unique.
func (r *DeferredConfigRegistry) Register(cfg *DeferredConfig) error {
	if cfg == nil {
		return invalidParameter("config", goerrors.New(ErrCodeInvalidParameter, "config cannot be nil"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.configs[cfg.name]; exists {
		return invalidParameter("config name",
			goerrors.New(ErrCodeInvalidParameter, fmt.Sprintf("config %q already registered", cfg.name)))
	}
	r.configs[cfg.name] = cfg
	return nil
}

// Lookup returns the config registered under name.
func (r *DeferredConfigRegistry) Lookup(name string) (*DeferredConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	return cfg, ok
}

// SupplyPassword sets the password of the named config. The validation word is
// checked when the config has one.
func (r *DeferredConfigRegistry) SupplyPassword(name, validationWord, password string) error {
	cfg, ok := r.Lookup(name)
	if !ok {
		return invalidParameter("config name",
			goerrors.New(ErrCodeInvalidParameter, fmt.Sprintf("no config registered as %q", name)))
	}
	if !cfg.checkValidationWord(validationWord) {
		return invalidParameter("validation word",
			goerrors.New(ErrCodeInvalidParameter, "validation word does not match"))
	}
	return cfg.SetPassword(password)
}

// Pending returns the sorted names of the configs still waiting for a password.
func (r *DeferredConfigRegistry) Pending() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, cfg := range r.configs {
		if !cfg.IsComplete() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// AllComplete reports whether every registered config has its password.
func (r *DeferredConfigRegistry) AllComplete() bool {
	return len(r.Pending()) == 0
}
