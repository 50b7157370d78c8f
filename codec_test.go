// codec_test.go: Tests for the text codec and Zeroize.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputEncoding
		wantErr bool
	}{
		{"base64", Base64Encoding, false},
		{"BASE64", Base64Encoding, false},
		{"hexadecimal", HexEncoding, false},
		{"HexaDecimal", HexEncoding, false},
		{"hex", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputEncoding(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextCodec(t *testing.T) {
	data := []byte{0x00, 0xFF, 0x10, 0xAB}

	tests := []struct {
		name  string
		codec textCodec
		want  string
	}{
		{"base64", textCodec{encoding: Base64Encoding}, "AP8Qqw=="},
		{"hex", textCodec{encoding: HexEncoding}, "00FF10AB"},
		{"prefix and suffix", textCodec{encoding: HexEncoding, prefix: "ENC(", suffix: ")"}, "ENC(00FF10AB)"},
		{"zero value is base64", textCodec{}, "AP8Qqw=="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.codec.encode(data)
			assert.Equal(t, tt.want, s)

			back, err := tt.codec.decode(s)
			require.NoError(t, err)
			assert.Equal(t, data, back)
		})
	}
}

func TestTextCodec_DecodeFailures(t *testing.T) {
	c := textCodec{encoding: HexEncoding, prefix: "ENC(", suffix: ")"}

	for _, in := range []string{"00FF", "ENC(00FF", "ENC(0G)", "ENC(0)", ")"} {
		_, err := c.decode(in)
		assert.Equal(t, ErrOperationNotPossible, err, in)
	}

	back, err := c.decode("ENC(00ff)")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xFF}, back)
}

func TestZeroize(t *testing.T) {
	for _, n := range []int{0, 1, 64, 65, 100, 1027} {
		b := make([]byte, n)
		for i := range b {
			b[i] = 0x5A
		}
		Zeroize(b)
		assert.Equal(t, make([]byte, n), b, "size %d", n)
	}
	Zeroize(nil)
}
