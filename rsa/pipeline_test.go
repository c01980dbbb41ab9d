package rsa

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsars/rsa/keys"
)

func TestGroupSize(t *testing.T) {
	cases := []struct {
		bits int
		want int
	}{
		{29, 2},  // 4-byte modulus
		{32, 2},  // 4-byte modulus
		{33, 4},  // 5-byte modulus
		{48, 4},  // 6-byte modulus
		{512, 32},
		{1024, 64},
	}
	for _, c := range cases {
		m := new(big.Int).Lsh(big.NewInt(1), uint(c.bits-1))
		assert.Equal(t, c.want, GroupSize(m), "modulus of %d bits", c.bits)
	}
}

func generateTestSet(t *testing.T) keys.KeySet {
	t.Helper()
	set, err := testOptions().GenerateKey()
	require.NoError(t, err)
	return set
}

func encodeDecode(t *testing.T, set keys.KeySet, plain []byte, encThreads, decThreads int) []byte {
	t.Helper()
	var cipher bytes.Buffer
	err := Process(bytes.NewReader(plain), &cipher, ModeEncode, set.Public, encThreads, true)
	require.NoError(t, err)

	var back bytes.Buffer
	err = Process(bytes.NewReader(cipher.Bytes()), &back, ModeDecode, set.Private, decThreads, true)
	require.NoError(t, err)
	return back.Bytes()
}

func TestProcessRoundTrip(t *testing.T) {
	set := generateTestSet(t)
	plain := []byte("114514")

	var cipher bytes.Buffer
	err := Process(bytes.NewReader(plain), &cipher, ModeEncode, set.Public, 1, true)
	require.NoError(t, err)

	// 8-byte little-endian plaintext length prefix
	require.Greater(t, cipher.Len(), 8)
	assert.Equal(t, []byte{0x06, 0, 0, 0, 0, 0, 0, 0}, cipher.Bytes()[:8])

	var back bytes.Buffer
	err = Process(bytes.NewReader(cipher.Bytes()), &back, ModeDecode, set.Private, 1, true)
	require.NoError(t, err)
	assert.Equal(t, plain, back.Bytes())
}

func TestProcessEmptyInput(t *testing.T) {
	set := generateTestSet(t)

	var cipher bytes.Buffer
	err := Process(bytes.NewReader(nil), &cipher, ModeEncode, set.Public, 2, true)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), cipher.Bytes())

	var back bytes.Buffer
	err = Process(bytes.NewReader(cipher.Bytes()), &back, ModeDecode, set.Private, 2, true)
	require.NoError(t, err)
	assert.Empty(t, back.Bytes())
}

func TestProcessUnalignedLength(t *testing.T) {
	set := generateTestSet(t)

	plain := make([]byte, 1000)
	_, err := rand.Read(plain)
	require.NoError(t, err)

	back := encodeDecode(t, set, plain, 4, 3)
	assert.Len(t, back, 1000)
	assert.Equal(t, plain, back)
}

func TestProcessPreservesTrailingZeros(t *testing.T) {
	set := generateTestSet(t)

	b := GroupSize(set.Public.M)
	plain := append(bytes.Repeat([]byte{0xab}, b), 0, 0, 0)

	back := encodeDecode(t, set, plain, 2, 2)
	assert.Equal(t, plain, back, "trailing zero bytes must survive the round trip")
}

func TestProcessAllZeroInput(t *testing.T) {
	set := generateTestSet(t)

	plain := make([]byte, 37)
	back := encodeDecode(t, set, plain, 3, 3)
	assert.Equal(t, plain, back)
}

// output must not depend on worker scheduling
func TestProcessOrderingIndependentOfThreads(t *testing.T) {
	set := generateTestSet(t)

	plain := make([]byte, 512)
	_, err := rand.Read(plain)
	require.NoError(t, err)

	var single bytes.Buffer
	err = Process(bytes.NewReader(plain), &single, ModeEncode, set.Public, 1, true)
	require.NoError(t, err)

	for _, threads := range []int{2, 4, 8} {
		var parallel bytes.Buffer
		err = Process(bytes.NewReader(plain), &parallel, ModeEncode, set.Public, threads, true)
		require.NoError(t, err)
		assert.Equal(t, single.Bytes(), parallel.Bytes(), "threads=%d", threads)
	}
}

func TestProcessDecodeRejectsShortInput(t *testing.T) {
	set := generateTestSet(t)

	var out bytes.Buffer
	err := Process(bytes.NewReader([]byte{1, 2, 3}), &out, ModeDecode, set.Private, 1, true)
	assert.Error(t, err)
}

func TestProcessRejectsGenerateMode(t *testing.T) {
	set := generateTestSet(t)

	var out bytes.Buffer
	err := Process(bytes.NewReader(nil), &out, ModeGenerate, set.Public, 1, true)
	assert.Error(t, err)
}
