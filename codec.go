// codec.go: Binary-to-text output encodings and secure wiping of sensitive bytes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// OutputEncoding selects how string digesters and string encryptors render bytes.
type OutputEncoding string

const (
	// Base64Encoding renders bytes as standard, padded base64. It is the default.
	Base64Encoding OutputEncoding = "base64"

	// HexEncoding renders bytes as uppercase hexadecimal. Decoding accepts either case.
	HexEncoding OutputEncoding = "hexadecimal"
)

// ParseOutputEncoding accepts "base64" and "hexadecimal", case-insensitively.
func ParseOutputEncoding(s string) (OutputEncoding, error) {
	if err := validateOutputEncoding(s); err != nil {
		return "", err
	}
	return OutputEncoding(strings.ToLower(s)), nil
}

// textCodec is the frozen string-layer transform: encoding plus prefix and suffix.
type textCodec struct {
	encoding OutputEncoding
	prefix   string
	suffix   string
}

// encode renders b as prefix + text(b) + suffix.
func (c textCodec) encode(b []byte) string {
	var body string
	switch c.encoding {
	case HexEncoding:
		body = strings.ToUpper(hex.EncodeToString(b))
	default:
		body = base64.StdEncoding.EncodeToString(b)
	}
	return c.prefix + body + c.suffix
}

// decode strips prefix and suffix and decodes the body. Any mismatch reports
// ErrOperationNotPossible.
func (c textCodec) decode(s string) ([]byte, error) {
	if !strings.HasPrefix(s, c.prefix) {
		return nil, ErrOperationNotPossible
	}
	s = s[len(c.prefix):]
	if !strings.HasSuffix(s, c.suffix) {
		return nil, ErrOperationNotPossible
	}
	s = s[:len(s)-len(c.suffix)]

	var (
		b   []byte
		err error
	)
	switch c.encoding {
	case HexEncoding:
		b, err = hex.DecodeString(s)
	default:
		b, err = base64.StdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, notPossible(err)
	}
	return b, nil
}

// Zeroize overwrites b with zeros. Used on derived key material, password copies
// and pooled scratch buffers.
func Zeroize(b []byte) {
	if len(b) <= 64 {
		for i := range b {
			b[i] = 0
		}
		return
	}

	// Unrolled on 8 bytes for larger buffers
	i := 0
	for i < len(b)-7 {
		b[i] = 0
		b[i+1] = 0
		b[i+2] = 0
		b[i+3] = 0
		b[i+4] = 0
		b[i+5] = 0
		b[i+6] = 0
		b[i+7] = 0
		i += 8
	}
	for i < len(b) {
		b[i] = 0
		i++
	}
}
