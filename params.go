// params.go: Layered parameter resolution and the configure-then-freeze lifecycle.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
	"go.opentelemetry.io/otel/metric"
)

// Override is a parameter value explicitly supplied through a setter, or unset.
type Override[T any] struct {
	value T
	set   bool
}

// Explicit returns an Override carrying v.
func Explicit[T any](v T) Override[T] {
	return Override[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Override[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a setter supplied a value.
func (o Override[T]) IsSet() bool {
	return o.set
}

// resolve applies the priority explicit setter > config source > default.
// fromConfig is only called when no override is set, so a config getter is never
// consulted for a parameter the caller pinned.
func resolve[T any](def T, fromConfig func() (T, bool), override Override[T]) T {
	if v, ok := override.Get(); ok {
		return v
	}
	if fromConfig != nil {
		if v, ok := fromConfig(); ok {
			return v
		}
	}
	return def
}

// lifecycle guards the Configuring -> Initialized transition of an engine.
// Setters run under mu and fail once ready; initialization runs once.
type lifecycle struct {
	mu     sync.Mutex
	ready  atomic.Bool
	initAt time.Time
}

// configure runs set while the engine is still configuring.
func (l *lifecycle) configure(param string, set func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready.Load() {
		return alreadyInitialized(param)
	}
	return set()
}

// ensure runs initFn exactly once. A failing initFn leaves the engine configuring,
// so the caller may fix the configuration and retry.
func (l *lifecycle) ensure(initFn func() error) error {
	if l.ready.Load() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready.Load() {
		return nil
	}
	if err := initFn(); err != nil {
		return err
	}
	l.initAt = timecache.CachedTime().UTC()
	l.ready.Store(true)
	return nil
}

// reset returns an initialized engine to configuring. Only an owner that never
// exposed the engine may call it.
func (l *lifecycle) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ready.Store(false)
	l.initAt = time.Time{}
}

func (l *lifecycle) isInitialized() bool {
	return l.ready.Load()
}

// initializedAt returns the initialization timestamp and whether it exists.
func (l *lifecycle) initializedAt() (time.Time, bool) {
	if !l.ready.Load() {
		return time.Time{}, false
	}
	return l.initAt, true
}

// EngineInfo describes the parameters an engine froze at initialization.
// It never contains the password.
type EngineInfo struct {
	Algorithm     string
	Iterations    int
	SaltSizeBytes int
	Provider      string
	PoolSize      int
	InitializedAt time.Time
}

// observability carries the logger and meter provider of an engine.
type observability struct {
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

func (o observability) loggerOrDiscard() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.New(slog.DiscardHandler)
}

// resolveProvider applies the same priority to the provider selection. Within one
// layer a handle wins over a name.
func resolveProvider(handle Override[Provider], name Override[string], cfg interface {
	Provider() (Provider, bool)
	ProviderName() (string, bool)
}) ProviderSelector {
	if p, ok := handle.Get(); ok && p != nil {
		return ProviderByHandle(p)
	}
	if n, ok := name.Get(); ok && n != "" {
		return ProviderByName(n)
	}
	if p, ok := cfg.Provider(); ok && p != nil {
		return ProviderByHandle(p)
	}
	if n, ok := cfg.ProviderName(); ok && n != "" {
		return ProviderByName(n)
	}
	return ProviderSelector{}
}

// resolvePoolSize resolves the mandatory pool size.
func resolvePoolSize(override Override[int], fromConfig func() (int, bool)) (int, error) {
	size := resolve(0, fromConfig, override)
	if size == 0 {
		return 0, missingParameter("pool size")
	}
	if err := validatePoolSize(size); err != nil {
		return 0, err
	}
	return size, nil
}
