// config_test.go: Tests for the config sources.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleConfig_EmptyReportsNothing(t *testing.T) {
	cfg := NewSimpleConfig()

	_, ok := cfg.Algorithm()
	assert.False(t, ok)
	_, ok = cfg.Password()
	assert.False(t, ok)
	_, ok = cfg.Iterations()
	assert.False(t, ok)
	_, ok = cfg.SaltGenerator()
	assert.False(t, ok)
	_, ok = cfg.UseLenientSaltSizeCheck()
	assert.False(t, ok)
}

func TestSimpleConfig_SetFromText(t *testing.T) {
	cfg := NewSimpleConfig()
	err := cfg.SetAll(map[string]string{
		KeyAlgorithm:                   "SHA-256",
		KeyPassword:                    "secret",
		KeyIterations:                  " 2000 ",
		KeySaltSizeBytes:               "16",
		KeySaltGenerator:               SaltGeneratorZero,
		KeyProviderName:                ProviderGo,
		KeyPoolSize:                    "4",
		KeyStringOutputType:            "Hexadecimal",
		KeyPrefix:                      "{",
		KeySuffix:                      "}",
		KeyInvertSaltInMessage:         "true",
		KeyInvertPlainSaltInResults:    "1",
		KeyUseLenientSaltSizeCheck:     "false",
		KeyUnicodeNormalizationIgnored: "TRUE",
	})
	require.NoError(t, err)

	alg, _ := cfg.Algorithm()
	assert.Equal(t, "SHA-256", alg)
	pw, _ := cfg.Password()
	assert.Equal(t, "secret", pw)
	it, _ := cfg.Iterations()
	assert.Equal(t, 2000, it)
	size, _ := cfg.SaltSizeBytes()
	assert.Equal(t, 16, size)
	gen, ok := cfg.SaltGenerator()
	require.True(t, ok)
	assert.IsType(t, &ZeroSaltGenerator{}, gen)
	name, _ := cfg.ProviderName()
	assert.Equal(t, ProviderGo, name)
	pool, _ := cfg.PoolSize()
	assert.Equal(t, 4, pool)
	enc, _ := cfg.StringOutputType()
	assert.Equal(t, HexEncoding, enc)
	prefix, _ := cfg.Prefix()
	assert.Equal(t, "{", prefix)
	suffix, _ := cfg.Suffix()
	assert.Equal(t, "}", suffix)
	inv, ok := cfg.InvertPositionOfSaltInMessageBeforeDigesting()
	assert.True(t, ok)
	assert.True(t, inv)
	invPlain, _ := cfg.InvertPositionOfPlainSaltInEncryptionResults()
	assert.True(t, invPlain)
	lenient, ok := cfg.UseLenientSaltSizeCheck()
	assert.True(t, ok, "false is still a value")
	assert.False(t, lenient)
	ignore, _ := cfg.UnicodeNormalizationIgnored()
	assert.True(t, ignore)
}

func TestSimpleConfig_InvalidText(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeyIterations, "many"},
		{KeyIterations, "0"},
		{KeySaltSizeBytes, "-1"},
		{KeyPoolSize, "0"},
		{KeyAlgorithm, ""},
		{KeyPassword, ""},
		{KeySaltGenerator, "no-such-generator"},
		{KeyStringOutputType, "base32"},
		{KeyUseLenientSaltSizeCheck, "maybe"},
		{"notAKey", "value"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			assert.ErrorIs(t, NewSimpleConfig().Set(tt.key, tt.value), ErrInvalidParameter)
		})
	}
}

func TestSimpleConfig_DrivesDigester(t *testing.T) {
	cfg := NewSimpleConfig()
	require.NoError(t, cfg.Set(KeyAlgorithm, "SHA-512"))
	require.NoError(t, cfg.Set(KeyIterations, "3"))
	require.NoError(t, cfg.Set(KeySaltGenerator, SaltGeneratorZero))

	d := NewStandardByteDigester()
	require.NoError(t, d.SetConfig(cfg))

	a, err := d.Digest([]byte("m"))
	require.NoError(t, err)
	b, err := d.Digest([]byte("m"))
	require.NoError(t, err)
	assert.Equal(t, a, b, "zero salt generator from text config makes digests reproducible")
	assert.Len(t, a, 64)
}

func TestEnvironmentConfig_EnvBindings(t *testing.T) {
	t.Setenv("PBECRYPT_TEST_PASSWORD", "env-secret")
	t.Setenv("PBECRYPT_TEST_ITERATIONS", "321")
	t.Setenv("PBECRYPT_TEST_ALGORITHM", aeadAlgorithm)

	cfg := NewEnvironmentConfig()
	require.NoError(t, cfg.SetPasswordEnvName("PBECRYPT_TEST_PASSWORD"))
	require.NoError(t, cfg.SetIterationsEnvName("PBECRYPT_TEST_ITERATIONS"))
	require.NoError(t, cfg.SetAlgorithmEnvName("PBECRYPT_TEST_ALGORITHM"))

	pw, ok := cfg.Password()
	require.True(t, ok)
	assert.Equal(t, "env-secret", pw)

	assert.Equal(t, map[string]string{
		KeyPassword:   "env:PBECRYPT_TEST_PASSWORD",
		KeyIterations: "env:PBECRYPT_TEST_ITERATIONS",
		KeyAlgorithm:  "env:PBECRYPT_TEST_ALGORITHM",
	}, cfg.Bindings())

	e := NewStandardPBEStringEncryptor()
	require.NoError(t, e.SetConfig(cfg))
	require.NoError(t, e.Initialize())
	info, _ := e.Info()
	assert.Equal(t, 321, info.Iterations)
	assert.Equal(t, aeadAlgorithm, info.Algorithm)
}

func TestEnvironmentConfig_ReadsAtBindTime(t *testing.T) {
	t.Setenv("PBECRYPT_TEST_SALT", "4")

	cfg := NewEnvironmentConfig()
	require.NoError(t, cfg.SetSaltSizeBytesEnvName("PBECRYPT_TEST_SALT"))

	t.Setenv("PBECRYPT_TEST_SALT", "12")
	size, _ := cfg.SaltSizeBytes()
	assert.Equal(t, 4, size)
}

func TestEnvironmentConfig_AbsentVariableUnsets(t *testing.T) {
	cfg := NewEnvironmentConfig()
	require.NoError(t, cfg.SetAlgorithm("SHA-1"))
	require.NoError(t, cfg.SetAlgorithmEnvName("PBECRYPT_TEST_DEFINITELY_UNSET"))

	_, ok := cfg.Algorithm()
	assert.False(t, ok)
}

func TestEnvironmentConfig_InvalidValue(t *testing.T) {
	t.Setenv("PBECRYPT_TEST_POOL", "zero")

	cfg := NewEnvironmentConfig()
	assert.ErrorIs(t, cfg.SetPoolSizeEnvName("PBECRYPT_TEST_POOL"), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.BindEnv(KeyPoolSize, ""), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.BindEnv("notAKey", "PBECRYPT_TEST_POOL"), ErrInvalidParameter)
}

func TestEnvironmentConfig_Properties(t *testing.T) {
	cfg := NewEnvironmentConfig(WithProperties(map[string]string{
		"app.encryption.password":  "prop-secret",
		"app.encryption.algorithm": "PBEWithHMACSHA256AndAES_256_GCM",
	}))
	require.NoError(t, cfg.SetPasswordPropertyName("app.encryption.password"))
	require.NoError(t, cfg.SetAlgorithmPropertyName("app.encryption.algorithm"))

	pw, _ := cfg.Password()
	assert.Equal(t, "prop-secret", pw)
	alg, _ := cfg.Algorithm()
	assert.Equal(t, "PBEWithHMACSHA256AndAES_256_GCM", alg)
	assert.Equal(t, "property:app.encryption.password", cfg.Bindings()[KeyPassword])
}

func TestEnvironmentConfig_LoadPropertiesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "encryption.env")
	content := "# encryption settings\nENC_PASSWORD=file-secret\nENC_ITERATIONS=250\nENC_OUTPUT=hexadecimal\nENC_POOL=2\nENC_PROVIDER=XCrypto\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := NewEnvironmentConfig()
	require.NoError(t, cfg.LoadPropertiesFile(path))
	require.NoError(t, cfg.SetPasswordPropertyName("ENC_PASSWORD"))
	require.NoError(t, cfg.SetIterationsPropertyName("ENC_ITERATIONS"))
	require.NoError(t, cfg.SetStringOutputTypePropertyName("ENC_OUTPUT"))
	require.NoError(t, cfg.SetPoolSizePropertyName("ENC_POOL"))
	require.NoError(t, cfg.SetProviderNamePropertyName("ENC_PROVIDER"))
	require.NoError(t, cfg.SetAlgorithm("PBEWithHMACSHA3_256AndAES_256"))

	pool := NewPooledPBEStringEncryptor()
	require.NoError(t, pool.SetConfig(cfg))

	ct, err := pool.Encrypt("from a dotenv file")
	require.NoError(t, err)
	plain, err := pool.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "from a dotenv file", plain)

	info, _ := pool.Info()
	assert.Equal(t, 2, info.PoolSize)
	assert.Equal(t, 250, info.Iterations)
	assert.Equal(t, ProviderXCrypto, info.Provider)

	assert.ErrorIs(t, cfg.LoadPropertiesFile(filepath.Join(dir, "missing.env")), ErrInvalidParameter)
}

func TestDeferredConfig_PasswordSuppliedLater(t *testing.T) {
	cfg, err := NewDeferredConfig("billing")
	require.NoError(t, err)
	cfg.SetValidationWord("open sesame")
	require.NoError(t, cfg.SetAlgorithm(aeadAlgorithm))
	require.NoError(t, cfg.SetIterations(100))

	registry := NewDeferredConfigRegistry()
	require.NoError(t, registry.Register(cfg))
	assert.ErrorIs(t, registry.Register(cfg), ErrInvalidParameter, "names are unique")

	e := NewStandardPBEStringEncryptor()
	require.NoError(t, e.SetConfig(cfg))

	_, err = e.Encrypt("invoice")
	assert.ErrorIs(t, err, ErrMissingRequiredParameter)
	assert.Equal(t, []string{"billing"}, registry.Pending())
	assert.False(t, registry.AllComplete())

	assert.ErrorIs(t, registry.SupplyPassword("billing", "wrong word", "pw"), ErrInvalidParameter)
	assert.ErrorIs(t, registry.SupplyPassword("unknown", "open sesame", "pw"), ErrInvalidParameter)
	require.NoError(t, registry.SupplyPassword("billing", "open sesame", "late-secret"))

	assert.True(t, cfg.IsComplete())
	assert.Empty(t, registry.Pending())
	assert.True(t, registry.AllComplete())

	ct, err := e.Encrypt("invoice")
	require.NoError(t, err)
	plain, err := e.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "invoice", plain)

	got, ok := registry.Lookup("billing")
	require.True(t, ok)
	assert.Same(t, cfg, got)
	assert.Equal(t, "billing", got.Name())
}

func TestDeferredConfig_Validation(t *testing.T) {
	_, err := NewDeferredConfig("")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	assert.ErrorIs(t, NewDeferredConfigRegistry().Register(nil), ErrInvalidParameter)

	cfg, err := NewDeferredConfig("no-word")
	require.NoError(t, err)
	registry := NewDeferredConfigRegistry()
	require.NoError(t, registry.Register(cfg))
	require.NoError(t, registry.SupplyPassword("no-word", "", "pw"), "no validation word configured")
	assert.ErrorIs(t, registry.SupplyPassword("no-word", "", ""), ErrInvalidParameter)
}
