// pooled_test.go: Tests for round-robin dispatch and the pooled engines.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"errors"
	"hash"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rationedProvider hands out a fixed number of hash handles, then fails.
type rationedProvider struct {
	*recordingProvider
	allowed atomic.Int64
}

func (p *rationedProvider) NewDigest(algorithm string) (hash.Hash, error) {
	if p.allowed.Add(-1) < 0 {
		return nil, assert.AnError
	}
	return p.recordingProvider.NewDigest(algorithm)
}

// countingEncryptor is a pool member stub recording how often it was selected.
type countingEncryptor struct {
	calls atomic.Int64
}

func (c *countingEncryptor) Encrypt(message []byte) ([]byte, error) {
	c.calls.Add(1)
	return append([]byte(nil), message...), nil
}

func (c *countingEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	c.calls.Add(1)
	return append([]byte(nil), ciphertext...), nil
}

func TestRoundRobin_Fairness(t *testing.T) {
	members := make([]PBEByteEncryptor, 4)
	stubs := make([]*countingEncryptor, 4)
	for i := range members {
		stubs[i] = &countingEncryptor{}
		members[i] = stubs[i]
	}
	rr := newRoundRobin(members)

	for i := 0; i < 400; i++ {
		_, err := rr.pick().Encrypt([]byte("hello"))
		require.NoError(t, err)
	}
	for i, s := range stubs {
		assert.Equal(t, int64(100), s.calls.Load(), "member %d", i)
	}
}

func TestRoundRobin_ConcurrentFairness(t *testing.T) {
	stubs := []*countingEncryptor{{}, {}, {}, {}}
	rr := newRoundRobin(stubs)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = rr.pick().Decrypt([]byte("x"))
			}
		}()
	}
	wg.Wait()

	for i, s := range stubs {
		assert.Equal(t, int64(100), s.calls.Load(), "member %d", i)
	}
}

func TestBuildMembers(t *testing.T) {
	var initialized atomic.Int64
	next := 0
	clone := func() *int {
		next++
		v := next
		return &v
	}
	seed := 0

	members, err := buildMembers(&seed, 4, clone, func(*int) error {
		initialized.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, members, 4)
	assert.Same(t, &seed, members[0])
	assert.Equal(t, int64(3), initialized.Load(), "the seed is not initialized again")

	_, err = buildMembers(&seed, 3, clone, func(*int) error {
		return errors.New("member failed")
	})
	assert.EqualError(t, err, "member failed")
}

func TestPooledPBEStringEncryptor_FourMembers(t *testing.T) {
	pool := NewPooledPBEStringEncryptor()
	require.NoError(t, pool.SetPoolSize(4))
	require.NoError(t, pool.SetPassword("secret"))
	require.NoError(t, pool.SetKeyObtentionIterations(100))
	require.NoError(t, pool.Initialize())

	require.Equal(t, 4, pool.rr.size())
	seen := make(map[*StandardPBEStringEncryptor]bool)
	for _, m := range pool.rr.members {
		assert.True(t, m.IsInitialized())
		assert.False(t, seen[m], "members are distinct")
		seen[m] = true
	}

	for i, m := range pool.rr.members {
		ct, err := m.Encrypt("hello")
		require.NoError(t, err, "member %d", i)

		// any member decrypts any other member's output
		plain, err := pool.rr.members[(i+1)%4].Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, "hello", plain)
	}

	before := pool.rr.next.Load()
	for i := 0; i < 400; i++ {
		_, err := pool.Encrypt("hello")
		require.NoError(t, err)
	}
	assert.Equal(t, before+400, pool.rr.next.Load())

	info, ok := pool.Info()
	require.True(t, ok)
	assert.Equal(t, 4, info.PoolSize)
	assert.Equal(t, DefaultPBEAlgorithm, info.Algorithm)
}

func TestPooledPBEByteEncryptor_MembersOwnTheirHandles(t *testing.T) {
	pool := NewPooledPBEByteEncryptor()
	require.NoError(t, pool.SetPoolSize(3))
	require.NoError(t, pool.SetPassword("secret"))
	require.NoError(t, pool.SetAlgorithm(aeadAlgorithm))
	require.NoError(t, pool.SetKeyObtentionIterations(100))

	ct, err := pool.Encrypt([]byte("payload"))
	require.NoError(t, err)

	members := pool.rr.members
	require.Len(t, members, 3)
	for i := 1; i < len(members); i++ {
		assert.NotSame(t, members[0].enc, members[i].enc)
		assert.NotSame(t, members[0].dec, members[i].dec)
		assert.Equal(t, members[0].state.key, members[i].state.key, "the password key is shared")
	}

	for i := 0; i < 6; i++ {
		plain, err := pool.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), plain)
	}

	plain, err := pool.Decrypt(nil)
	require.NoError(t, err)
	assert.Nil(t, plain)
}

func TestPooledPBEByteEncryptor_ConcurrentRoundTrips(t *testing.T) {
	pool := NewPooledPBEByteEncryptor()
	require.NoError(t, pool.SetPoolSize(4))
	require.NoError(t, pool.SetPassword("secret"))
	require.NoError(t, pool.SetAlgorithm(aeadAlgorithm))
	require.NoError(t, pool.SetKeyObtentionIterations(50))

	var wg sync.WaitGroup
	var failures atomic.Int64
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				msg := []byte{byte(g), byte(i)}
				ct, err := pool.Encrypt(msg)
				if err != nil {
					failures.Add(1)
					continue
				}
				plain, err := pool.Decrypt(ct)
				if err != nil || string(plain) != string(msg) {
					failures.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, failures.Load())
}

func TestPooledEngines_PoolSizeRequired(t *testing.T) {
	t.Run("byte digester", func(t *testing.T) {
		_, err := NewPooledByteDigester().Digest([]byte("x"))
		assert.ErrorIs(t, err, ErrMissingRequiredParameter)
	})
	t.Run("string digester", func(t *testing.T) {
		_, err := NewPooledStringDigester().Digest("x")
		assert.ErrorIs(t, err, ErrMissingRequiredParameter)
	})
	t.Run("byte encryptor", func(t *testing.T) {
		p := NewPooledPBEByteEncryptor()
		require.NoError(t, p.SetPassword("secret"))
		_, err := p.Encrypt([]byte("x"))
		assert.ErrorIs(t, err, ErrMissingRequiredParameter)
	})
	t.Run("string encryptor", func(t *testing.T) {
		p := NewPooledPBEStringEncryptor()
		require.NoError(t, p.SetPassword("secret"))
		_, err := p.Encrypt("x")
		assert.ErrorIs(t, err, ErrMissingRequiredParameter)
	})
	t.Run("invalid size", func(t *testing.T) {
		assert.ErrorIs(t, NewPooledByteDigester().SetPoolSize(0), ErrInvalidParameter)
		assert.ErrorIs(t, NewPooledPBEStringEncryptor().SetPoolSize(-2), ErrInvalidParameter)
	})
}

func TestPooledEngines_PoolSizeFromConfig(t *testing.T) {
	cfg := NewSimpleConfig()
	require.NoError(t, cfg.SetPoolSize(3))
	require.NoError(t, cfg.SetPassword("secret"))
	require.NoError(t, cfg.SetIterations(10))

	enc := NewPooledPBEStringEncryptor()
	require.NoError(t, enc.SetConfig(cfg))
	require.NoError(t, enc.Initialize())
	info, _ := enc.Info()
	assert.Equal(t, 3, info.PoolSize)
	assert.Equal(t, 10, info.Iterations)

	dig := NewPooledStringDigester()
	require.NoError(t, dig.SetConfig(cfg))
	require.NoError(t, dig.SetPoolSize(2), "explicit pool size wins over the config")
	require.NoError(t, dig.Initialize())
	info, _ = dig.Info()
	assert.Equal(t, 2, info.PoolSize)
}

func TestPooledEngines_SetterAfterInitialization(t *testing.T) {
	p := NewPooledByteDigester()
	require.NoError(t, p.SetPoolSize(2))
	require.NoError(t, p.SetIterations(5))
	require.NoError(t, p.Initialize())

	assert.ErrorIs(t, p.SetPoolSize(4), ErrAlreadyInitialized)
	assert.ErrorIs(t, p.SetIterations(6), ErrAlreadyInitialized)
	assert.ErrorIs(t, p.SetAlgorithm("SHA-256"), ErrAlreadyInitialized)
	assert.ErrorIs(t, p.SetConfig(nil), ErrAlreadyInitialized)

	e := NewPooledPBEStringEncryptor()
	require.NoError(t, e.SetPoolSize(2))
	require.NoError(t, e.SetPassword("secret"))
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.SetPoolSize(3), ErrAlreadyInitialized)
	assert.ErrorIs(t, e.SetPassword("other"), ErrAlreadyInitialized)
	assert.ErrorIs(t, e.SetPrefix("p"), ErrAlreadyInitialized)
}

func TestPooledByteDigester_MembersAgree(t *testing.T) {
	p := NewPooledByteDigester()
	require.NoError(t, p.SetPoolSize(4))
	require.NoError(t, p.SetAlgorithm("SHA3-256"))
	require.NoError(t, p.SetIterations(20))

	digest, err := p.Digest([]byte("payload"))
	require.NoError(t, err)

	for i, m := range p.rr.members {
		ok, err := m.Matches([]byte("payload"), digest)
		require.NoError(t, err)
		assert.True(t, ok, "member %d", i)
		assert.Equal(t, ProviderXCrypto, m.resolved.Name())
		for j := i + 1; j < len(p.rr.members); j++ {
			assert.NotSame(t, m.h, p.rr.members[j].h, "members %d and %d", i, j)
		}
	}

	ok, err := p.Matches(nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := p.Digest(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestPooledStringDigester_RoundTrip(t *testing.T) {
	p := NewPooledStringDigester()
	require.NoError(t, p.SetPoolSize(3))
	require.NoError(t, p.SetStringOutputType("hexadecimal"))
	require.NoError(t, p.SetPrefix("$"))
	require.NoError(t, p.SetIterations(5))

	for i := 0; i < 9; i++ {
		digest, err := p.Digest("password")
		require.NoError(t, err)

		ok, err := p.Matches("password", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	info, ok := p.Info()
	require.True(t, ok)
	assert.Equal(t, 3, info.PoolSize)
}

func TestPooledEngines_InfoBeforeInitialization(t *testing.T) {
	_, ok := NewPooledByteDigester().Info()
	assert.False(t, ok)
	_, ok = NewPooledPBEByteEncryptor().Info()
	assert.False(t, ok)
}

func TestPooledByteDigester_MemberFailureLeavesPoolConfigurable(t *testing.T) {
	rationed := &rationedProvider{recordingProvider: &recordingProvider{name: "rationed"}}
	rationed.allowed.Store(2)

	p := NewPooledByteDigester()
	require.NoError(t, p.SetPoolSize(4))
	require.NoError(t, p.SetAlgorithm("CUSTOM-SHA256"))
	require.NoError(t, p.SetIterations(3))
	require.NoError(t, p.SetProvider(rationed))

	require.ErrorIs(t, p.Initialize(), ErrInitializationFailed)
	assert.False(t, p.IsInitialized())
	_, ok := p.Info()
	assert.False(t, ok)

	require.NoError(t, p.SetIterations(4), "the seed accepts setters after a failed build")
	rationed.allowed.Store(4)
	require.NoError(t, p.Initialize())

	info, ok := p.Info()
	require.True(t, ok)
	assert.Equal(t, 4, info.Iterations)
	assert.Equal(t, 4, info.PoolSize)
	assert.Equal(t, "rationed", info.Provider)
	assert.ErrorIs(t, p.SetIterations(5), ErrAlreadyInitialized)
}

func TestPooledStringDigester_MemberFailureLeavesPoolConfigurable(t *testing.T) {
	rationed := &rationedProvider{recordingProvider: &recordingProvider{name: "rationed"}}
	rationed.allowed.Store(1)

	p := NewPooledStringDigester()
	require.NoError(t, p.SetPoolSize(3))
	require.NoError(t, p.SetAlgorithm("CUSTOM-SHA256"))
	require.NoError(t, p.SetIterations(2))
	require.NoError(t, p.SetProvider(rationed))

	require.ErrorIs(t, p.Initialize(), ErrInitializationFailed)
	assert.False(t, p.IsInitialized())
	require.NoError(t, p.SetPrefix("{x}"), "both seed layers are configurable again")

	rationed.allowed.Store(3)
	digest, err := p.Digest("password")
	require.NoError(t, err)
	assert.Contains(t, digest, "{x}")

	ok, err := p.Matches("password", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}
