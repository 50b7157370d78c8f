// encryptor.go: Password-based encryption of byte messages.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"log/slog"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	"go.opentelemetry.io/otel/metric"
)

// DefaultPBEAlgorithm is used when no algorithm is configured.
const DefaultPBEAlgorithm = "PBEWithHMACSHA512AndAES_256"

// pbeParams is the frozen parameter set of an encryptor. The password itself
// is only kept inside the derived key.
type pbeParams struct {
	algorithm     string
	iterations    int
	saltGenerator SaltGenerator
	provider      ProviderSelector
}

// pbeState is what pool members share with their seed: the parameters, the scheme
// and the immutable password key.
type pbeState struct {
	params   pbeParams
	scheme   PBEScheme
	resolved Provider
	key      PBEKey
}

// StandardPBEByteEncryptor encrypts byte messages with a password.
//
// Every message gets a fresh salt from the salt generator; key and IV are derived
// from the password, that salt and the iteration count. The output is always
// salt||ciphertext, whatever the salt generator, because decryption needs the salt.
//
// The password key is built once, at initialization. Any failure while encrypting
// or decrypting is reported as ErrOperationNotPossible with no further detail.
// An encryptor is safe for concurrent use; encryptions serialize on one cipher
// handle and decryptions on another.
type StandardPBEByteEncryptor struct {
	lc lifecycle

	algorithm     Override[string]
	password      Override[string]
	iterations    Override[int]
	saltGenerator Override[SaltGenerator]
	providerName  Override[string]
	provider      Override[Provider]
	config        PBEConfig
	obs           observability

	preset *pbeState

	state   pbeState
	encMu   sync.Mutex
	enc     PBECipher
	decMu   sync.Mutex
	dec     PBECipher
	metrics *operationMetrics
}

// NewStandardPBEByteEncryptor returns an unconfigured encryptor.
func NewStandardPBEByteEncryptor() *StandardPBEByteEncryptor {
	return &StandardPBEByteEncryptor{}
}

// SetConfig sets the config source consulted at initialization.
func (e *StandardPBEByteEncryptor) SetConfig(cfg PBEConfig) error {
	return e.lc.configure("config", func() error {
		e.config = cfg
		return nil
	})
}

// SetAlgorithm sets the PBE algorithm name.
func (e *StandardPBEByteEncryptor) SetAlgorithm(algorithm string) error {
	return e.lc.configure("algorithm", func() error {
		if err := validateName("algorithm", algorithm); err != nil {
			return err
		}
		e.algorithm = Explicit(algorithm)
		return nil
	})
}

// SetPassword sets the encryption password. It cannot be empty.
func (e *StandardPBEByteEncryptor) SetPassword(password string) error {
	return e.lc.configure("password", func() error {
		if password == "" {
			return invalidParameter("password", goerrors.New(ErrCodeInvalidParameter, "password cannot be empty"))
		}
		e.password = Explicit(password)
		return nil
	})
}

// SetKeyObtentionIterations sets the PBKDF2 iteration count.
func (e *StandardPBEByteEncryptor) SetKeyObtentionIterations(iterations int) error {
	return e.lc.configure("key obtention iterations", func() error {
		if err := validateIterations(iterations); err != nil {
			return err
		}
		e.iterations = Explicit(iterations)
		return nil
	})
}

// SetSaltGenerator sets the salt source.
func (e *StandardPBEByteEncryptor) SetSaltGenerator(g SaltGenerator) error {
	return e.lc.configure("salt generator", func() error {
		if g == nil {
			return invalidParameter("salt generator", goerrors.New(ErrCodeInvalidParameter, "salt generator cannot be nil"))
		}
		e.saltGenerator = Explicit(g)
		return nil
	})
}

// SetProviderName selects a registered provider by name.
func (e *StandardPBEByteEncryptor) SetProviderName(name string) error {
	return e.lc.configure("provider name", func() error {
		if err := validateName("provider name", name); err != nil {
			return err
		}
		e.providerName = Explicit(name)
		return nil
	})
}

// SetProvider selects a provider by handle. It wins over a provider name.
func (e *StandardPBEByteEncryptor) SetProvider(p Provider) error {
	return e.lc.configure("provider", func() error {
		if p == nil {
			return invalidParameter("provider", goerrors.New(ErrCodeInvalidParameter, "provider cannot be nil"))
		}
		e.provider = Explicit(p)
		return nil
	})
}

// SetLogger sets the logger for initialization records. Nil discards them.
func (e *StandardPBEByteEncryptor) SetLogger(logger *slog.Logger) error {
	return e.lc.configure("logger", func() error {
		e.obs.logger = logger
		return nil
	})
}

// SetMeterProvider sets the OpenTelemetry meter provider. Nil means noop.
func (e *StandardPBEByteEncryptor) SetMeterProvider(mp metric.MeterProvider) error {
	return e.lc.configure("meter provider", func() error {
		e.obs.meterProvider = mp
		return nil
	})
}

// IsInitialized reports whether the configuration is frozen.
func (e *StandardPBEByteEncryptor) IsInitialized() bool {
	return e.lc.isInitialized()
}

// Initialize freezes the configuration, builds the password key and the cipher
// handles. It is idempotent; operations call it implicitly.
func (e *StandardPBEByteEncryptor) Initialize() error {
	return e.lc.ensure(e.initialize)
}

func (e *StandardPBEByteEncryptor) initialize() error {
	state, err := e.resolveState()
	if err != nil {
		return err
	}
	metrics, err := newOperationMetrics(e.obs.meterProvider, "pbe_byte_encryptor")
	if err != nil {
		return initializationFailed(ErrCodeInitialization, err, "failed to create metric instruments")
	}

	e.state = *state
	e.enc = state.scheme.NewCipher()
	e.dec = state.scheme.NewCipher()
	e.metrics = metrics

	e.obs.loggerOrDiscard().Debug("encryptor initialized",
		"algorithm", state.scheme.Algorithm(),
		"iterations", state.params.iterations,
		"salt_size_bytes", state.scheme.SaltSize(),
		"provider", state.resolved.Name())
	return nil
}

func (e *StandardPBEByteEncryptor) resolveState() (*pbeState, error) {
	if e.preset != nil {
		s := *e.preset
		return &s, nil
	}

	var cfg PBEConfig = noConfig{}
	if e.config != nil {
		cfg = e.config
	}

	password := resolve("", cfg.Password, e.password)
	if password == "" {
		return nil, missingParameter("password")
	}

	params := pbeParams{
		algorithm:     resolve(DefaultPBEAlgorithm, cfg.Algorithm, e.algorithm),
		iterations:    resolve(DefaultIterations, cfg.Iterations, e.iterations),
		saltGenerator: resolve[SaltGenerator](nil, cfg.SaltGenerator, e.saltGenerator),
		provider:      resolveProvider(e.provider, e.providerName, cfg),
	}
	if params.saltGenerator == nil {
		params.saltGenerator = NewRandomSaltGenerator()
	}
	if params.algorithm == "" {
		return nil, missingParameter("algorithm")
	}
	if err := validateIterations(params.iterations); err != nil {
		return nil, err
	}

	scheme, provider, err := params.provider.pbeScheme(params.algorithm)
	if err != nil {
		return nil, err
	}

	pw := []byte(password)
	key, err := scheme.NewKey(pw)
	Zeroize(pw)
	if err != nil {
		return nil, initializationFailed(ErrCodeInitialization, err, "failed to build password key")
	}

	return &pbeState{params: params, scheme: scheme, resolved: provider, key: key}, nil
}

// Encrypt returns salt||ciphertext for message. A nil message yields nil.
func (e *StandardPBEByteEncryptor) Encrypt(message []byte) ([]byte, error) {
	if message == nil {
		return nil, nil
	}
	if err := e.Initialize(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := e.encrypt(message)
	e.metrics.record(opEncrypt, start, err)
	return out, err
}

func (e *StandardPBEByteEncryptor) encrypt(message []byte) ([]byte, error) {
	saltSize := e.state.scheme.SaltSize()
	salt, err := e.state.params.saltGenerator.GenerateSalt(saltSize)
	if err != nil || len(salt) != saltSize {
		return nil, notPossible(err)
	}

	e.encMu.Lock()
	err = e.enc.Init(EncryptMode, e.state.key, salt, e.state.params.iterations)
	var ciphertext []byte
	if err == nil {
		ciphertext, err = e.enc.DoFinal(message)
	}
	e.encMu.Unlock()
	if err != nil {
		return nil, notPossible(err)
	}

	out := make([]byte, 0, len(salt)+len(ciphertext))
	out = append(out, salt...)
	return append(out, ciphertext...), nil
}

// Decrypt reverses Encrypt. A nil input yields nil. Wrong passwords, corrupt
// input and any other failure report ErrOperationNotPossible.
func (e *StandardPBEByteEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if ciphertext == nil {
		return nil, nil
	}
	if err := e.Initialize(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := e.decrypt(ciphertext)
	e.metrics.record(opDecrypt, start, err)
	return out, err
}

func (e *StandardPBEByteEncryptor) decrypt(input []byte) ([]byte, error) {
	saltSize := e.state.scheme.SaltSize()
	if len(input) < saltSize {
		return nil, ErrOperationNotPossible
	}
	salt, body := input[:saltSize], input[saltSize:]

	e.decMu.Lock()
	err := e.dec.Init(DecryptMode, e.state.key, salt, e.state.params.iterations)
	var plain []byte
	if err == nil {
		plain, err = e.dec.DoFinal(body)
	}
	e.decMu.Unlock()
	if err != nil {
		return nil, notPossible(err)
	}
	if plain == nil {
		plain = []byte{}
	}
	return plain, nil
}

// Info returns the frozen parameters, or false before initialization.
func (e *StandardPBEByteEncryptor) Info() (EngineInfo, bool) {
	at, ok := e.lc.initializedAt()
	if !ok {
		return EngineInfo{}, false
	}
	return EngineInfo{
		Algorithm:     e.state.scheme.Algorithm(),
		Iterations:    e.state.params.iterations,
		SaltSizeBytes: e.state.scheme.SaltSize(),
		Provider:      e.state.resolved.Name(),
		PoolSize:      1,
		InitializedAt: at,
	}, true
}

// clone returns an unfrozen encryptor sharing e's frozen state and key but
// owning its own cipher handles once initialized. e must be initialized.
func (e *StandardPBEByteEncryptor) clone() *StandardPBEByteEncryptor {
	preset := e.state
	return &StandardPBEByteEncryptor{
		preset: &preset,
		obs:    observability{meterProvider: e.obs.meterProvider},
	}
}

// reset undoes a seed's initialization so its pool can be reconfigured.
// The derived key is destroyed; the next Initialize derives it again.
func (e *StandardPBEByteEncryptor) reset() {
	e.lc.mu.Lock()
	if e.state.key != nil {
		e.state.key.Destroy()
	}
	e.state = pbeState{}
	e.lc.mu.Unlock()
	e.lc.reset()
}
