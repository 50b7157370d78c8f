// provider_test.go: Tests for the provider registry and selection.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"crypto/sha256"
	"hash"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProvider serves SHA-256 under a custom name and counts handle requests.
type recordingProvider struct {
	name    string
	digests atomic.Int64
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) NewDigest(algorithm string) (hash.Hash, error) {
	if !strings.EqualFold(algorithm, "CUSTOM-SHA256") {
		return nil, assert.AnError
	}
	p.digests.Add(1)
	return sha256.New(), nil
}

func (p *recordingProvider) PBEScheme(algorithm string) (PBEScheme, error) {
	return nil, assert.AnError
}

func TestBuiltInProviders(t *testing.T) {
	names := Providers()
	require.GreaterOrEqual(t, len(names), 2)
	assert.Equal(t, []string{ProviderGo, ProviderXCrypto}, names[:2], "search order")

	goProvider, err := LookupProvider("go")
	require.NoError(t, err, "lookups ignore case")
	assert.Equal(t, ProviderGo, goProvider.Name())

	_, err = LookupProvider("BouncyCastle")
	assert.ErrorIs(t, err, ErrInitializationFailed)
}

func TestTableProvider_Algorithms(t *testing.T) {
	g := newGoProvider()
	assert.Contains(t, g.DigestAlgorithms(), "SHA-256")
	assert.Contains(t, g.PBEAlgorithms(), DefaultPBEAlgorithm)

	h, err := g.NewDigest("sha-256")
	require.NoError(t, err)
	assert.Equal(t, sha256.Size, h.Size())

	_, err = g.NewDigest("SHA3-256")
	assert.Error(t, err, "served by the XCrypto provider only")

	x := newXCryptoProvider()
	h, err = x.NewDigest("blake2b-512")
	require.NoError(t, err)
	assert.Equal(t, 64, h.Size())

	scheme, err := x.PBEScheme("pbewithhmacsha256andchacha20_poly1305")
	require.NoError(t, err)
	assert.Equal(t, aeadAlgorithm, scheme.Algorithm())
	assert.Equal(t, pbeSaltSize, scheme.SaltSize())
}

func TestProviderSelector(t *testing.T) {
	assert.True(t, ProviderSelector{}.IsZero())
	assert.Equal(t, "", ProviderSelector{}.String())
	assert.Equal(t, "XCrypto", ProviderByName("XCrypto").String())

	p := &recordingProvider{name: "Handle"}
	assert.Equal(t, "Handle", ProviderByHandle(p).String())
	assert.False(t, ProviderByHandle(p).IsZero())

	h, resolved, err := ProviderSelector{}.newDigest("SHA3-512")
	require.NoError(t, err)
	assert.Equal(t, ProviderXCrypto, resolved.Name(), "search falls through to the next provider")
	assert.Equal(t, 64, h.Size())

	_, _, err = ProviderByName(ProviderGo).newDigest("SHA3-512")
	assert.ErrorIs(t, err, ErrInitializationFailed)

	_, _, err = ProviderSelector{}.pbeScheme("PBEWithMD5AndDES")
	assert.ErrorIs(t, err, ErrInitializationFailed)
}

func TestRegisterProvider_Custom(t *testing.T) {
	p := &recordingProvider{name: "Recording-" + t.Name()}
	require.NoError(t, RegisterProvider(p))

	got, err := LookupProvider(strings.ToLower(p.name))
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.Equal(t, p.name, Providers()[len(Providers())-1], "registered after the built-ins")

	d := NewStandardByteDigester()
	require.NoError(t, d.SetProviderName(p.name))
	require.NoError(t, d.SetAlgorithm("CUSTOM-SHA256"))
	require.NoError(t, d.SetIterations(2))

	digest, err := d.Digest([]byte("x"))
	require.NoError(t, err)
	ok, err := d.Matches([]byte("x"), digest)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), p.digests.Load())

	info, _ := d.Info()
	assert.Equal(t, p.name, info.Provider)

	assert.ErrorIs(t, RegisterProvider(nil), ErrInvalidParameter)
	assert.ErrorIs(t, RegisterProvider(&recordingProvider{name: " "}), ErrInvalidParameter)
}

func TestProviderByHandle_Unregistered(t *testing.T) {
	p := &recordingProvider{name: "Unregistered"}

	d := NewStandardByteDigester()
	require.NoError(t, d.SetProvider(p))
	require.NoError(t, d.SetAlgorithm("custom-sha256"))
	require.NoError(t, d.Initialize())

	_, err := LookupProvider("Unregistered")
	assert.Error(t, err)
	info, _ := d.Info()
	assert.Equal(t, "Unregistered", info.Provider)

	e := NewStandardPBEByteEncryptor()
	require.NoError(t, e.SetProvider(p))
	require.NoError(t, e.SetPassword("secret"))
	assert.ErrorIs(t, e.Initialize(), ErrInitializationFailed, "the handle supplies no PBE scheme")
}
