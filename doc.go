// Package pbecrypt provides password-based message digesting and password-based
// encryption (PBE) with layered configuration and pooled, concurrency-friendly engines.
//
// The package offers:
//   - Salted, iterated digests of bytes and strings, with matching
//   - PBKDF2-based password encryption of bytes and strings (AES-CBC with HMAC, AES-GCM,
//     ChaCha20-Poly1305 and XChaCha20-Poly1305 schemes)
//   - Base64 or hexadecimal string output with optional prefix and suffix
//   - Config sources: plain values, environment variables and property files,
//     and deferred configs whose password arrives after startup
//   - Round-robin pools of independent engines for concurrent throughput
//   - A provider registry to plug in further hash and PBE implementations
//
// Hash functions, ciphers and PBKDF2 come from the Go standard library and
// golang.org/x/crypto. This package decides which parameters apply, handles salt
// and iterations, and keeps engines safe for concurrent use.
//
// # Quick Start
//
// Encrypting strings:
//
//	enc := pbecrypt.NewStandardPBEStringEncryptor()
//	if err := enc.SetPassword("my-secret-password"); err != nil {
//		log.Fatal(err)
//	}
//
//	ciphertext, err := enc.Encrypt("sensitive data")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	plaintext, err := enc.Decrypt(ciphertext)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Digesting passwords:
//
//	dig := pbecrypt.NewStandardStringDigester()
//	_ = dig.SetAlgorithm("SHA-256")
//	_ = dig.SetIterations(50000)
//	_ = dig.SetSaltSizeBytes(16)
//
//	digest, _ := dig.Digest("user password")
//	ok, _ := dig.Matches("user password", digest) // true
//
// # Configuration
//
// Every parameter resolves once, when the engine initializes, with this priority:
//
//  1. a value passed to the engine setter
//  2. a value reported by the config source (SetConfig)
//  3. the built-in default
//
// Initialization happens on the first operation or on an explicit Initialize
// call. From then on the engine is frozen and every setter returns
// ErrAlreadyInitialized. A failed initialization leaves the engine configurable.
//
//	cfg := pbecrypt.NewEnvironmentConfig()
//	_ = cfg.SetPasswordEnvName("APP_ENCRYPTION_PASSWORD")
//	_ = cfg.SetIterations(10000)
//
//	enc := pbecrypt.NewStandardPBEStringEncryptor()
//	_ = enc.SetConfig(cfg)
//	_ = enc.SetKeyObtentionIterations(20000) // wins over the config value
//
// # Output Formats
//
// Digests are salt||hash when the salt generator includes its salt in results
// (the random generator does), and hash alone otherwise. Encryptions are always
// salt||ciphertext. String engines render these bytes as prefix + text + suffix.
//
// # Error Handling
//
// Every error matches one of ErrMissingRequiredParameter, ErrInvalidParameter,
// ErrAlreadyInitialized, ErrInitializationFailed or ErrOperationNotPossible with
// errors.Is. Configuration errors carry a coded github.com/agilira/go-errors cause.
// Operation failures (wrong password, corrupt input, prefix mismatch) are always
// the bare ErrOperationNotPossible:
//
//	plaintext, err := enc.Decrypt(input)
//	if errors.Is(err, pbecrypt.ErrOperationNotPossible) {
//		// reject input
//	}
//
// # Pools
//
// A standard engine serializes calls on its own cipher or hash handle. Pooled
// engines spread calls over several members that share the resolved parameters:
//
//	pool := pbecrypt.NewPooledPBEStringEncryptor()
//	_ = pool.SetPoolSize(runtime.NumCPU())
//	_ = pool.SetPassword("my-secret-password")
//
// # Observability
//
// Engines log one Debug record at initialization through SetLogger (log/slog) and
// report operation counts and durations through SetMeterProvider (OpenTelemetry).
// Passwords and salts are never logged.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package pbecrypt
