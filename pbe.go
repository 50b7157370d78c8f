// pbe.go: Password-based encryption schemes built on PBKDF2.
//
// Every scheme derives, per message, the cipher key and the IV (or AEAD nonce) from
// the password, the message salt and the iteration count with PBKDF2, so the salt
// alone is enough to rebuild the cipher state when decrypting. CBC schemes also
// derive an HMAC key and append a tag over the ciphertext, so every scheme rejects
// a wrong password.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/subtle"
	"errors"
	"hash"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// CipherMode selects the direction a PBECipher is initialized for.
type CipherMode int

const (
	EncryptMode CipherMode = iota + 1
	DecryptMode
)

// PBEScheme is a provider's password-based encryption algorithm.
type PBEScheme interface {
	// Algorithm returns the canonical algorithm name.
	Algorithm() string

	// SaltSize is the salt length, in bytes, the algorithm requires.
	SaltSize() int

	// NewKey turns a password into the key object cached by an encryptor.
	NewKey(password []byte) (PBEKey, error)

	// NewCipher returns a cipher handle. Handles are not safe for concurrent use.
	NewCipher() PBECipher
}

// PBEKey is an opaque password key produced by a PBEScheme.
type PBEKey interface {
	Algorithm() string
	// Destroy wipes the key material.
	Destroy()
}

// PBECipher is a reusable, non-reentrant cipher handle. Init must be called before
// every DoFinal.
type PBECipher interface {
	Init(mode CipherMode, key PBEKey, salt []byte, iterations int) error
	DoFinal(input []byte) ([]byte, error)
}

var (
	errCipherNotInitialized = errors.New("cipher not initialized")
	errBadPadding           = errors.New("bad padding")
	errBadBlockSize         = errors.New("input not a multiple of the block size")
	errBadMAC               = errors.New("message authentication failed")
)

// cipherKind identifies the symmetric construction behind a scheme.
type cipherKind int

const (
	kindAESCBC cipherKind = iota
	kindAESGCM
	kindChaCha20Poly1305
	kindXChaCha20Poly1305
)

// pbes2Scheme pairs a PBKDF2 PRF with a symmetric cipher.
type pbes2Scheme struct {
	name     string
	prf      func() hash.Hash
	kind     cipherKind
	keyLen   int
	saltSize int
}

// ivLen is the amount of derived material used as IV or nonce.
func (s *pbes2Scheme) ivLen() int {
	switch s.kind {
	case kindAESCBC:
		return aes.BlockSize
	case kindAESGCM, kindChaCha20Poly1305:
		return chacha20poly1305.NonceSize // 12 bytes, the GCM standard nonce size as well
	default:
		return chacha20poly1305.NonceSizeX
	}
}

func (s *pbes2Scheme) Algorithm() string { return s.name }

func (s *pbes2Scheme) SaltSize() int { return s.saltSize }

func (s *pbes2Scheme) NewKey(password []byte) (PBEKey, error) {
	if len(password) == 0 {
		return nil, goerrors.New(ErrCodeMissingParameter, "password cannot be empty")
	}
	return &passwordKey{
		algorithm: s.name,
		password:  norm.NFC.Bytes(append([]byte(nil), password...)),
	}, nil
}

func (s *pbes2Scheme) NewCipher() PBECipher {
	return &pbes2Cipher{scheme: s}
}

// passwordKey holds the NFC-normalized password bytes.
type passwordKey struct {
	algorithm string
	password  []byte
}

func (k *passwordKey) Algorithm() string { return k.algorithm }

func (k *passwordKey) Destroy() { Zeroize(k.password) }

// macKeyLen is the HMAC key length derived for CBC schemes.
const macKeyLen = 32

// macLen is the amount of derived material used as HMAC key.
func (s *pbes2Scheme) macLen() int {
	if s.kind == kindAESCBC {
		return macKeyLen
	}
	return 0
}

// pbes2Cipher holds the per-message cipher state produced by Init.
type pbes2Cipher struct {
	scheme *pbes2Scheme
	mode   CipherMode
	block  cipher.Block
	aead   cipher.AEAD
	iv     []byte
	macKey []byte
	ready  bool
}

func (c *pbes2Cipher) Init(mode CipherMode, key PBEKey, salt []byte, iterations int) error {
	c.reset()

	pk, ok := key.(*passwordKey)
	if !ok || pk.algorithm != c.scheme.name {
		return goerrors.New(ErrCodeInitialization, "key was not produced by this scheme")
	}
	if mode != EncryptMode && mode != DecryptMode {
		return goerrors.New(ErrCodeInitialization, "unknown cipher mode")
	}
	if iterations <= 0 {
		return goerrors.New(ErrCodeInvalidParameter, "iterations must be positive")
	}

	ivLen := c.scheme.ivLen()
	derived := pbkdf2.Key(pk.password, salt, iterations, c.scheme.keyLen+ivLen+c.scheme.macLen(), c.scheme.prf)
	defer Zeroize(derived)

	aesKey := derived[:c.scheme.keyLen]
	c.iv = append(c.iv[:0], derived[c.scheme.keyLen:c.scheme.keyLen+ivLen]...)
	c.macKey = append(c.macKey[:0], derived[c.scheme.keyLen+ivLen:]...)

	var err error
	switch c.scheme.kind {
	case kindAESCBC:
		c.block, err = aes.NewCipher(aesKey)
	case kindAESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(aesKey); err == nil {
			c.aead, err = cipher.NewGCM(block)
		}
	case kindChaCha20Poly1305:
		c.aead, err = chacha20poly1305.New(aesKey)
	case kindXChaCha20Poly1305:
		c.aead, err = chacha20poly1305.NewX(aesKey)
	}
	if err != nil {
		c.reset()
		return goerrors.Wrap(err, ErrCodeInitialization, "failed to create cipher")
	}

	c.mode = mode
	c.ready = true
	return nil
}

func (c *pbes2Cipher) DoFinal(input []byte) ([]byte, error) {
	if !c.ready {
		return nil, errCipherNotInitialized
	}
	defer c.reset()

	if c.aead != nil {
		if c.mode == EncryptMode {
			return c.aead.Seal(nil, c.iv, input, nil), nil
		}
		return c.aead.Open(nil, c.iv, input, nil)
	}

	mac := hmac.New(c.scheme.prf, c.macKey)
	tagLen := mac.Size()

	if c.mode == EncryptMode {
		padded := pkcs7Pad(input, aes.BlockSize)
		cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(padded, padded)
		mac.Write(padded)
		return mac.Sum(padded), nil
	}

	// ciphertext || tag
	body := len(input) - tagLen
	if body < aes.BlockSize || body%aes.BlockSize != 0 {
		return nil, errBadBlockSize
	}
	ct, tag := input[:body], input[body:]
	mac.Write(ct)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, errBadMAC
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, ct)
	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		Zeroize(out)
		return nil, err
	}
	return plain, nil
}

// reset drops the per-message state so a handle is never reused without Init.
func (c *pbes2Cipher) reset() {
	Zeroize(c.iv)
	c.iv = c.iv[:0]
	Zeroize(c.macKey)
	c.macKey = c.macKey[:0]
	c.block = nil
	c.aead = nil
	c.mode = 0
	c.ready = false
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

// pkcs7Unpad checks the padding without branching on the padding bytes.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	valid := subtle.ConstantTimeLessOrEq(1, n) & subtle.ConstantTimeLessOrEq(n, blockSize)
	tail := data[len(data)-blockSize:]
	for i := range tail {
		inPad := subtle.ConstantTimeLessOrEq(blockSize-n, i)
		same := subtle.ConstantTimeByteEq(tail[i], byte(n))
		// bytes inside the padding must all equal n
		valid &= subtle.ConstantTimeSelect(inPad, same, 1)
	}
	if valid != 1 {
		return nil, errBadPadding
	}
	return data[:len(data)-n], nil
}
