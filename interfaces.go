// interfaces.go: Consumer-facing engine interfaces.
//
// Code that only digests or encrypts should depend on these interfaces, so a
// standard engine and a pooled engine are interchangeable.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

// ByteDigester digests byte messages and checks digests.
type ByteDigester interface {
	Digest(message []byte) ([]byte, error)
	Matches(message, digest []byte) (bool, error)
}

// StringDigester digests strings and checks encoded digests.
type StringDigester interface {
	Digest(message string) (string, error)
	Matches(message, digest string) (bool, error)
}

// PBEByteEncryptor encrypts and decrypts byte messages.
type PBEByteEncryptor interface {
	Encrypt(message []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// PBEStringEncryptor encrypts and decrypts strings.
type PBEStringEncryptor interface {
	Encrypt(message string) (string, error)
	Decrypt(encrypted string) (string, error)
}

var (
	_ ByteDigester       = (*StandardByteDigester)(nil)
	_ ByteDigester       = (*PooledByteDigester)(nil)
	_ StringDigester     = (*StandardStringDigester)(nil)
	_ StringDigester     = (*PooledStringDigester)(nil)
	_ PBEByteEncryptor   = (*StandardPBEByteEncryptor)(nil)
	_ PBEByteEncryptor   = (*PooledPBEByteEncryptor)(nil)
	_ PBEStringEncryptor = (*StandardPBEStringEncryptor)(nil)
	_ PBEStringEncryptor = (*PooledPBEStringEncryptor)(nil)
)
