// providers.go: Built-in providers backed by the Go standard library and golang.org/x/crypto.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"crypto/md5"  // #nosec G501 -- MD5 kept as the legacy default digest algorithm
	"crypto/sha1" // #nosec G505 -- SHA-1 kept for PBKDF2-HMAC-SHA1 and legacy digests
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"sort"
	"strings"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Built-in provider names, in default search order.
const (
	ProviderGo      = "Go"
	ProviderXCrypto = "XCrypto"
)

// pbeSaltSize is the salt size of every built-in PBE scheme (one AES block).
const pbeSaltSize = 16

// tableProvider serves algorithms from fixed lookup tables keyed by upper-case name.
type tableProvider struct {
	name    string
	digests map[string]func() hash.Hash
	schemes map[string]*pbes2Scheme
}

func (p *tableProvider) Name() string { return p.name }

func (p *tableProvider) NewDigest(algorithm string) (hash.Hash, error) {
	newHash, ok := p.digests[strings.ToUpper(algorithm)]
	if !ok {
		return nil, goerrors.New(ErrCodeAlgorithmNotFound,
			fmt.Sprintf("provider %s does not support digest algorithm %q", p.name, algorithm))
	}
	return newHash(), nil
}

func (p *tableProvider) PBEScheme(algorithm string) (PBEScheme, error) {
	scheme, ok := p.schemes[strings.ToUpper(algorithm)]
	if !ok {
		return nil, goerrors.New(ErrCodeAlgorithmNotFound,
			fmt.Sprintf("provider %s does not support PBE algorithm %q", p.name, algorithm))
	}
	return scheme, nil
}

// DigestAlgorithms lists the digest algorithms p supports.
func (p *tableProvider) DigestAlgorithms() []string {
	return sortedKeys(p.digests)
}

// PBEAlgorithms lists the canonical names of the PBE algorithms p supports.
func (p *tableProvider) PBEAlgorithms() []string {
	names := make([]string, 0, len(p.schemes))
	for _, s := range sortedKeys(p.schemes) {
		names = append(names, p.schemes[s].name)
	}
	return names
}

func schemeTable(schemes ...*pbes2Scheme) map[string]*pbes2Scheme {
	t := make(map[string]*pbes2Scheme, len(schemes))
	for _, s := range schemes {
		t[strings.ToUpper(s.name)] = s
	}
	return t
}

func newGoProvider() *tableProvider {
	prfs := []struct {
		name string
		prf  func() hash.Hash
	}{
		{"SHA1", sha1.New},
		{"SHA224", sha256.New224},
		{"SHA256", sha256.New},
		{"SHA384", sha512.New384},
		{"SHA512", sha512.New},
	}

	var schemes []*pbes2Scheme
	for _, p := range prfs {
		for _, bits := range []int{128, 256} {
			schemes = append(schemes, &pbes2Scheme{
				name:     fmt.Sprintf("PBEWithHMAC%sAndAES_%d", p.name, bits),
				prf:      p.prf,
				kind:     kindAESCBC,
				keyLen:   bits / 8,
				saltSize: pbeSaltSize,
			})
		}
	}
	schemes = append(schemes,
		&pbes2Scheme{name: "PBEWithHMACSHA256AndAES_256_GCM", prf: sha256.New, kind: kindAESGCM, keyLen: 32, saltSize: pbeSaltSize},
		&pbes2Scheme{name: "PBEWithHMACSHA512AndAES_256_GCM", prf: sha512.New, kind: kindAESGCM, keyLen: 32, saltSize: pbeSaltSize},
	)

	return &tableProvider{
		name: ProviderGo,
		digests: map[string]func() hash.Hash{
			"MD5":         md5.New,
			"SHA":         sha1.New,
			"SHA1":        sha1.New,
			"SHA-1":       sha1.New,
			"SHA-224":     sha256.New224,
			"SHA-256":     sha256.New,
			"SHA-384":     sha512.New384,
			"SHA-512":     sha512.New,
			"SHA-512/224": sha512.New512_224,
			"SHA-512/256": sha512.New512_256,
		},
		schemes: schemeTable(schemes...),
	}
}

func newXCryptoProvider() *tableProvider {
	return &tableProvider{
		name: ProviderXCrypto,
		digests: map[string]func() hash.Hash{
			"SHA3-224":    sha3.New224,
			"SHA3-256":    sha3.New256,
			"SHA3-384":    sha3.New384,
			"SHA3-512":    sha3.New512,
			"BLAKE2B-256": mustKeyless(blake2b.New256),
			"BLAKE2B-384": mustKeyless(blake2b.New384),
			"BLAKE2B-512": mustKeyless(blake2b.New512),
			"BLAKE2S-256": mustKeyless(blake2s.New256),
		},
		schemes: schemeTable(
			&pbes2Scheme{name: "PBEWithHMACSHA3_256AndAES_256", prf: sha3.New256, kind: kindAESCBC, keyLen: 32, saltSize: pbeSaltSize},
			&pbes2Scheme{name: "PBEWithHMACSHA256AndCHACHA20_POLY1305", prf: sha256.New, kind: kindChaCha20Poly1305, keyLen: 32, saltSize: pbeSaltSize},
			&pbes2Scheme{name: "PBEWithHMACSHA512AndXCHACHA20_POLY1305", prf: sha512.New, kind: kindXChaCha20Poly1305, keyLen: 32, saltSize: pbeSaltSize},
		),
	}
}

// mustKeyless adapts the keyed BLAKE2 constructors; they only fail on oversized keys.
func mustKeyless(newKeyed func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := newKeyed(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
