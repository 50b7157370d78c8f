// digester.go: Salted, iterated message digesting over byte messages.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"crypto/subtle"
	"hash"
	"log/slog"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	"go.opentelemetry.io/otel/metric"
)

// Digester defaults.
const (
	DefaultDigestAlgorithm = "MD5"
	DefaultIterations      = 1000
	DefaultSaltSizeBytes   = 8
)

// digestParams is the frozen parameter set of a digester.
type digestParams struct {
	algorithm       string
	iterations      int
	saltSize        int
	saltGenerator   SaltGenerator
	provider        ProviderSelector
	invertSalt      bool
	invertPlainSalt bool
	lenient         bool
}

// embedsSalt reports whether digests carry the plain salt. No salt is never embedded.
func (p *digestParams) embedsSalt() bool {
	return p.saltSize > 0 && p.saltGenerator.IncludePlainSaltInResult()
}

// StandardByteDigester computes salted, iterated digests of byte messages.
//
// The digest of a message is H applied iterations times, first over salt||message
// and then over the previous output alone. When the salt generator includes its
// salt in results, the output is salt||digest.
//
// A digester is configured with setters and an optional DigesterConfig, then frozen
// by Initialize or by its first operation. It is safe for concurrent use; calls on
// one digester serialize on its hash handle.
type StandardByteDigester struct {
	lc lifecycle

	algorithm       Override[string]
	iterations      Override[int]
	saltSize        Override[int]
	saltGenerator   Override[SaltGenerator]
	providerName    Override[string]
	provider        Override[Provider]
	invertSalt      Override[bool]
	invertPlainSalt Override[bool]
	lenient         Override[bool]
	config          DigesterConfig
	obs             observability

	// preset replaces resolution for pool members cloned from a seed.
	preset *digestParams

	params   digestParams
	resolved Provider
	mu       sync.Mutex
	h        hash.Hash
	hashSize int
	metrics  *operationMetrics
}

// NewStandardByteDigester returns an unconfigured digester.
func NewStandardByteDigester() *StandardByteDigester {
	return &StandardByteDigester{}
}

// SetConfig sets the config source consulted at initialization. Values set through
// the other setters take precedence over it.
func (d *StandardByteDigester) SetConfig(cfg DigesterConfig) error {
	return d.lc.configure("config", func() error {
		d.config = cfg
		return nil
	})
}

// SetAlgorithm sets the digest algorithm name.
func (d *StandardByteDigester) SetAlgorithm(algorithm string) error {
	return d.lc.configure("algorithm", func() error {
		if err := validateName("algorithm", algorithm); err != nil {
			return err
		}
		d.algorithm = Explicit(algorithm)
		return nil
	})
}

// SetIterations sets how many times the hash function is applied.
func (d *StandardByteDigester) SetIterations(iterations int) error {
	return d.lc.configure("iterations", func() error {
		if err := validateIterations(iterations); err != nil {
			return err
		}
		d.iterations = Explicit(iterations)
		return nil
	})
}

// SetSaltSizeBytes sets the salt size. Zero disables salting.
func (d *StandardByteDigester) SetSaltSizeBytes(size int) error {
	return d.lc.configure("salt size", func() error {
		if err := validateSaltSize(size); err != nil {
			return err
		}
		d.saltSize = Explicit(size)
		return nil
	})
}

// SetSaltGenerator sets the salt source.
func (d *StandardByteDigester) SetSaltGenerator(g SaltGenerator) error {
	return d.lc.configure("salt generator", func() error {
		if g == nil {
			return invalidParameter("salt generator", goerrors.New(ErrCodeInvalidParameter, "salt generator cannot be nil"))
		}
		d.saltGenerator = Explicit(g)
		return nil
	})
}

// SetProviderName selects a registered provider by name.
func (d *StandardByteDigester) SetProviderName(name string) error {
	return d.lc.configure("provider name", func() error {
		if err := validateName("provider name", name); err != nil {
			return err
		}
		d.providerName = Explicit(name)
		return nil
	})
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (d *StandardByteDigester) SetProvider(p Provider) error {
	return d.lc.configure("provider", func() error {
		if p == nil {
			return invalidParameter("provider", goerrors.New(ErrCodeInvalidParameter, "provider cannot be nil"))
		}
		d.provider = Explicit(p)
		return nil
	})
}

// SetInvertPositionOfSaltInMessageBeforeDigesting hashes message||salt instead of salt||message.
func (d *StandardByteDigester) SetInvertPositionOfSaltInMessageBeforeDigesting(v bool) error {
	return d.lc.configure("invertPositionOfSaltInMessageBeforeDigesting", func() error {
		d.invertSalt = Explicit(v)
		return nil
	})
}

// SetInvertPositionOfPlainSaltInEncryptionResults emits digest||salt instead of salt||digest.
func (d *StandardByteDigester) SetInvertPositionOfPlainSaltInEncryptionResults(v bool) error {
	return d.lc.configure("invertPositionOfPlainSaltInEncryptionResults", func() error {
		d.invertPlainSalt = Explicit(v)
		return nil
	})
}

// SetUseLenientSaltSizeCheck makes Matches take the salt length from the digest
// length, so digests produced with another salt size still match.
func (d *StandardByteDigester) SetUseLenientSaltSizeCheck(v bool) error {
	return d.lc.configure("useLenientSaltSizeCheck", func() error {
		d.lenient = Explicit(v)
		return nil
	})
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (d *StandardByteDigester) SetLogger(logger *slog.Logger) error {
	return d.lc.configure("logger", func() error {
		d.obs.logger = logger
		return nil
	})
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (d *StandardByteDigester) SetMeterProvider(mp metric.MeterProvider) error {
	return d.lc.configure("meter provider", func() error {
		d.obs.meterProvider = mp
		return nil
	})
}

// IsInitialized reports whether the digester is frozen.
func (d *StandardByteDigester) IsInitialized() bool {
	return d.lc.isInitialized()
}

// Initialize freezes the configuration and acquires the hash handle. It is
// idempotent; operations call it implicitly.
func (d *StandardByteDigester) Initialize() error {
	return d.lc.ensure(d.initialize)
}

func (d *StandardByteDigester) initialize() error {
	params, err := d.resolveParams()
	if err != nil {
		return err
	}

	h, provider, err := params.provider.newDigest(params.algorithm)
	if err != nil {
		return err
	}
	metrics, err := newOperationMetrics(d.obs.meterProvider, "byte_digester")
	if err != nil {
		return initializationFailed(ErrCodeInitialization, err, "failed to create metric instruments")
	}

	d.params = *params
	d.resolved = provider
	d.h = h
	d.hashSize = h.Size()
	d.metrics = metrics

	d.obs.loggerOrDiscard().Debug("digester initialized",
		"algorithm", params.algorithm,
		"iterations", params.iterations,
		"salt_size_bytes", params.saltSize,
		"salt_in_result", params.embedsSalt(),
		"provider", provider.Name())
	return nil
}

func (d *StandardByteDigester) resolveParams() (*digestParams, error) {
	if d.preset != nil {
		p := *d.preset
		return &p, nil
	}

	var cfg DigesterConfig = noConfig{}
	if d.config != nil {
		cfg = d.config
	}

	p := &digestParams{
		algorithm:       resolve(DefaultDigestAlgorithm, cfg.Algorithm, d.algorithm),
		iterations:      resolve(DefaultIterations, cfg.Iterations, d.iterations),
		saltSize:        resolve(DefaultSaltSizeBytes, cfg.SaltSizeBytes, d.saltSize),
		saltGenerator:   resolve[SaltGenerator](nil, cfg.SaltGenerator, d.saltGenerator),
		provider:        resolveProvider(d.provider, d.providerName, cfg),
		invertSalt:      resolve(false, cfg.InvertPositionOfSaltInMessageBeforeDigesting, d.invertSalt),
		invertPlainSalt: resolve(false, cfg.InvertPositionOfPlainSaltInEncryptionResults, d.invertPlainSalt),
		lenient:         resolve(false, cfg.UseLenientSaltSizeCheck, d.lenient),
	}
	if p.saltGenerator == nil {
		p.saltGenerator = NewRandomSaltGenerator()
	}

	if p.algorithm == "" {
		return nil, missingParameter("algorithm")
	}
	if err := validateIterations(p.iterations); err != nil {
		return nil, err
	}
	if err := validateSaltSize(p.saltSize); err != nil {
		return nil, err
	}
	return p, nil
}

// Digest returns the digest of message. A nil message yields a nil digest.
func (d *StandardByteDigester) Digest(message []byte) ([]byte, error) {
	if message == nil {
		return nil, nil
	}
	if err := d.Initialize(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := d.digest(message)
	d.metrics.record(opDigest, start, err)
	return out, err
}

func (d *StandardByteDigester) digest(message []byte) ([]byte, error) {
	p := &d.params

	var salt []byte
	if p.saltSize > 0 {
		s, err := p.saltGenerator.GenerateSalt(p.saltSize)
		if err != nil || len(s) != p.saltSize {
			return nil, notPossible(err)
		}
		salt = s
	}

	sum := d.hash(message, salt)
	if !p.embedsSalt() {
		return sum, nil
	}

	out := make([]byte, 0, len(salt)+len(sum))
	if p.invertPlainSalt {
		out = append(append(out, sum...), salt...)
	} else {
		out = append(append(out, salt...), sum...)
	}
	return out, nil
}

// Matches reports whether digest is a digest of message. Matches(nil, nil) is true;
// a nil on one side only is false. A digest too short to hold its salt fails with
// ErrOperationNotPossible.
func (d *StandardByteDigester) Matches(message, digest []byte) (bool, error) {
	if message == nil {
		return digest == nil, nil
	}
	if digest == nil {
		return false, nil
	}
	if err := d.Initialize(); err != nil {
		return false, err
	}

	start := time.Now()
	ok, err := d.matches(message, digest)
	d.metrics.record(opMatches, start, err)
	return ok, err
}

func (d *StandardByteDigester) matches(message, digest []byte) (bool, error) {
	p := &d.params

	var salt []byte
	expected := digest
	switch {
	case p.embedsSalt():
		saltLen := p.saltSize
		if p.lenient {
			saltLen = len(digest) - d.hashSize
		}
		if saltLen < 0 || len(digest) < saltLen {
			return false, ErrOperationNotPossible
		}
		if p.invertPlainSalt {
			salt, expected = digest[len(digest)-saltLen:], digest[:len(digest)-saltLen]
		} else {
			salt, expected = digest[:saltLen], digest[saltLen:]
		}
	case p.saltSize > 0:
		s, err := p.saltGenerator.GenerateSalt(p.saltSize)
		if err != nil || len(s) != p.saltSize {
			return false, notPossible(err)
		}
		salt = s
	}

	sum := d.hash(message, salt)
	defer Zeroize(sum)
	return subtle.ConstantTimeCompare(sum, expected) == 1, nil
}

// hash runs the iterated hash on the digester's own handle.
func (d *StandardByteDigester) hash(message, salt []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.h
	h.Reset()
	if d.params.invertSalt {
		h.Write(message)
		h.Write(salt)
	} else {
		h.Write(salt)
		h.Write(message)
	}

	scratch := getBuffer(d.hashSize)
	defer putBuffer(scratch)

	sum := h.Sum((*scratch)[:0])
	for i := 1; i < d.params.iterations; i++ {
		h.Reset()
		h.Write(sum)
		sum = h.Sum(sum[:0])
	}
	return append(make([]byte, 0, len(sum)), sum...)
}

// Info returns the frozen parameters, or false before initialization.
func (d *StandardByteDigester) Info() (EngineInfo, bool) {
	at, ok := d.lc.initializedAt()
	if !ok {
		return EngineInfo{}, false
	}
	return EngineInfo{
		Algorithm:     d.params.algorithm,
		Iterations:    d.params.iterations,
		SaltSizeBytes: d.params.saltSize,
		Provider:      d.resolved.Name(),
		PoolSize:      1,
		InitializedAt: at,
	}, true
}

// clone returns an unfrozen digester that initializes with d's frozen parameters
// on the provider d resolved, acquiring its own hash handle. d must be initialized.
func (d *StandardByteDigester) clone() *StandardByteDigester {
	preset := d.params
	preset.provider = ProviderByHandle(d.resolved)
	return &StandardByteDigester{
		preset: &preset,
		obs:    observability{meterProvider: d.obs.meterProvider},
	}
}

// reset undoes a seed's initialization so its pool can be reconfigured.
func (d *StandardByteDigester) reset() {
	d.lc.reset()
}
