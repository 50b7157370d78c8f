// string_digester_test.go: Tests for the string digester.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringDigester_Base64Default(t *testing.T) {
	d := NewStandardStringDigester()
	require.NoError(t, d.SetAlgorithm("SHA-256"))
	require.NoError(t, d.SetIterations(10))

	digest, err := d.Digest("correct horse battery staple")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(digest)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultSaltSizeBytes+sha256.Size)

	ok, err := d.Matches("correct horse battery staple", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Matches("wrong", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStringDigester_HexadecimalUppercase(t *testing.T) {
	d := NewStandardStringDigester()
	require.NoError(t, d.SetAlgorithm("SHA-256"))
	require.NoError(t, d.SetSaltSizeBytes(0))
	require.NoError(t, d.SetIterations(1))
	require.NoError(t, d.SetStringOutputType("HEXADECIMAL"))

	digest, err := d.Digest("abc")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("abc"))
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(sum[:])), digest)

	ok, err := d.Matches("abc", strings.ToLower(digest))
	require.NoError(t, err)
	assert.True(t, ok, "hex decoding accepts either case")
}

func TestStringDigester_EmptyMessage(t *testing.T) {
	d := NewStandardStringDigester()
	require.NoError(t, d.SetAlgorithm("SHA-256"))
	require.NoError(t, d.SetIterations(1))

	digest, err := d.Digest("")
	require.NoError(t, err)
	assert.NotEmpty(t, digest)

	ok, err := d.Matches("", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStringDigester_PrefixAndSuffix(t *testing.T) {
	d := NewStandardStringDigester()
	require.NoError(t, d.SetPrefix("{SSHA}"))
	require.NoError(t, d.SetSuffix("=="))
	require.NoError(t, d.SetIterations(1))

	digest, err := d.Digest("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "{SSHA}"))
	assert.True(t, strings.HasSuffix(digest, "=="))

	ok, err := d.Matches("secret", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	tests := []struct {
		name   string
		digest string
	}{
		{"missing prefix", strings.TrimPrefix(digest, "{SSHA}")},
		{"wrong prefix", "{SHA}" + strings.TrimPrefix(digest, "{SSHA}")},
		{"missing suffix", strings.TrimSuffix(digest, "==")},
		{"not base64", "{SSHA}***==="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := d.Matches("secret", tt.digest)
			assert.False(t, ok)
			assert.Equal(t, ErrOperationNotPossible, err)
		})
	}
}

func TestStringDigester_UnicodeNormalization(t *testing.T) {
	composed := "caf\u00e9"    // é as one code point
	decomposed := "cafe\u0301" // e + combining acute accent

	d := NewStandardStringDigester()
	require.NoError(t, d.SetIterations(1))
	digest, err := d.Digest(composed)
	require.NoError(t, err)

	ok, err := d.Matches(decomposed, digest)
	require.NoError(t, err)
	assert.True(t, ok, "NFC normalization makes both forms equal")

	raw := NewStandardStringDigester()
	require.NoError(t, raw.SetIterations(1))
	require.NoError(t, raw.SetUnicodeNormalizationIgnored(true))
	digest, err = raw.Digest(composed)
	require.NoError(t, err)

	ok, err = raw.Matches(decomposed, digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStringDigester_ConfigLayers(t *testing.T) {
	cfg := NewSimpleConfig()
	require.NoError(t, cfg.SetStringOutputType("hexadecimal"))
	require.NoError(t, cfg.SetAlgorithm("SHA-1"))
	require.NoError(t, cfg.SetSaltSizeBytes(0))
	cfg.SetPrefix("cfg:")

	d := NewStandardStringDigester()
	require.NoError(t, d.SetConfig(cfg))
	require.NoError(t, d.SetPrefix("explicit:"))
	require.NoError(t, d.SetIterations(1))

	digest, err := d.Digest("x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "explicit:"))
	assert.Len(t, strings.TrimPrefix(digest, "explicit:"), 40, "SHA-1 in hex")

	info, ok := d.Info()
	require.True(t, ok)
	assert.Equal(t, "SHA-1", info.Algorithm)
}

func TestStringDigester_SetterAfterInitialization(t *testing.T) {
	d := NewStandardStringDigester()
	require.NoError(t, d.Initialize())
	require.NoError(t, d.Initialize(), "initialization is idempotent")

	assert.ErrorIs(t, d.SetStringOutputType("base64"), ErrAlreadyInitialized)
	assert.ErrorIs(t, d.SetPrefix("p"), ErrAlreadyInitialized)
	assert.ErrorIs(t, d.SetIterations(2), ErrAlreadyInitialized)
	assert.ErrorIs(t, d.SetConfig(nil), ErrAlreadyInitialized)
}

func TestStringDigester_InvalidOutputType(t *testing.T) {
	d := NewStandardStringDigester()
	assert.ErrorIs(t, d.SetStringOutputType("base32"), ErrInvalidParameter)
	assert.ErrorIs(t, d.SetStringOutputType(""), ErrInvalidParameter)
}

func TestStringDigester_InfoBeforeInitialization(t *testing.T) {
	_, ok := NewStandardStringDigester().Info()
	assert.False(t, ok)
}
