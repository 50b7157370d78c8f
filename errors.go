// errors.go: Error kinds and coded error construction for digesters and encryptors.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Public standard errors. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	// ErrMissingRequiredParameter is returned when a mandatory parameter (the PBE
	// password, or the algorithm) is still unset after every configuration layer.
	ErrMissingRequiredParameter = errors.New("pbecrypt: missing required parameter")

	// ErrInvalidParameter is returned by setters and config sources for values that
	// can never be valid (non-positive iterations, negative salt size, empty names).
	ErrInvalidParameter = errors.New("pbecrypt: invalid parameter")

	// ErrAlreadyInitialized is returned by any setter called after the engine froze.
	ErrAlreadyInitialized = errors.New("pbecrypt: already initialized")

	// ErrInitializationFailed is returned when the selected provider cannot supply
	// the requested algorithm.
	ErrInitializationFailed = errors.New("pbecrypt: initialization failed")

	// ErrOperationNotPossible is returned for every failure while digesting,
	// matching, encrypting or decrypting. It never carries a cause.
	ErrOperationNotPossible = errors.New("pbecrypt: operation not possible")
)

// Error codes for rich error handling
const (
	ErrCodeMissingParameter   = "PBE_MISSING_PARAMETER"
	ErrCodeInvalidParameter   = "PBE_INVALID_PARAMETER"
	ErrCodeAlreadyInitialized = "PBE_ALREADY_INITIALIZED"
	ErrCodeInitialization     = "PBE_INITIALIZATION"
	ErrCodeProviderNotFound   = "PBE_PROVIDER_NOT_FOUND"
	ErrCodeAlgorithmNotFound  = "PBE_ALGORITHM_NOT_FOUND"
	ErrCodeSaltGeneration     = "PBE_SALT_GENERATION"
)

func missingParameter(name string) error {
	richErr := goerrors.New(ErrCodeMissingParameter, fmt.Sprintf("%s must be set", name))
	return fmt.Errorf("%w: %w", ErrMissingRequiredParameter, richErr)
}

func invalidParameter(name string, cause error) error {
	richErr := goerrors.Wrap(cause, ErrCodeInvalidParameter, fmt.Sprintf("invalid %s", name))
	return fmt.Errorf("%w: %w", ErrInvalidParameter, richErr)
}

func alreadyInitialized(name string) error {
	richErr := goerrors.New(ErrCodeAlreadyInitialized, fmt.Sprintf("cannot set %s: engine already initialized", name))
	return fmt.Errorf("%w: %w", ErrAlreadyInitialized, richErr)
}

func initializationFailed(code goerrors.ErrorCode, cause error, msg string) error {
	var richErr error
	if cause != nil {
		richErr = goerrors.Wrap(cause, code, msg)
	} else {
		richErr = goerrors.New(code, msg)
	}
	return fmt.Errorf("%w: %w", ErrInitializationFailed, richErr)
}

// notPossible collapses any runtime failure into the opaque ErrOperationNotPossible.
// The cause is dropped.
func notPossible(error) error {
	return ErrOperationNotPossible
}
