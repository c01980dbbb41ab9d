package rsa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGenerate(t *testing.T, stem string, binary bool) {
	t.Helper()
	o := testOptions()
	o.Mode = "generate"
	o.Key = stem
	o.Binary = binary
	require.NoError(t, o.Run())
}

func TestRunGenerateEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "key")
	input := filepath.Join(dir, "plain")
	cipher := filepath.Join(dir, "cipher")
	output := filepath.Join(dir, "out")

	payload := []byte("the quick brown fox jumps over the lazy dog, 114514 times")
	require.NoError(t, os.WriteFile(input, payload, 0o644))

	runGenerate(t, stem, false)
	for _, p := range []string{stem, stem + ".pub"} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected key file %s: %v", p, err)
		}
	}

	enc := testOptions()
	enc.Mode = "encode"
	enc.Key = stem
	enc.Input = input
	enc.Output = cipher
	require.NoError(t, enc.Run())

	dec := testOptions()
	dec.Mode = "decode"
	dec.Key = stem
	dec.Input = cipher
	dec.Output = output
	require.NoError(t, dec.Run())

	back, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, payload, back)
}

func TestRunBinaryKeyFiles(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "key")
	input := filepath.Join(dir, "plain")
	cipher := filepath.Join(dir, "cipher")
	output := filepath.Join(dir, "out")

	payload := []byte{0, 1, 2, 0, 0, 0xff, 0}
	require.NoError(t, os.WriteFile(input, payload, 0o644))

	runGenerate(t, stem, true)

	enc := testOptions()
	enc.Mode = "encode"
	enc.Key = stem
	enc.Input = input
	enc.Output = cipher
	require.NoError(t, enc.Run())

	dec := testOptions()
	dec.Mode = "decode"
	dec.Key = stem
	dec.Input = cipher
	dec.Output = output
	require.NoError(t, dec.Run())

	back, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, payload, back)
}

func TestRunTestMode(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "key")
	input := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(input, []byte("self test input data, long enough for several blocks"), 0o644))

	runGenerate(t, stem, false)

	o := testOptions()
	o.Mode = "test"
	o.Key = stem
	o.Input = input
	require.NoError(t, o.Run())
}

func TestRunTestModeSingleSide(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "key")

	runGenerate(t, stem, false)
	require.NoError(t, os.Remove(stem))

	o := testOptions()
	o.Mode = "test"
	o.Key = stem
	require.NoError(t, o.Run())
}

func TestRunEncodeWithoutKeyFails(t *testing.T) {
	dir := t.TempDir()

	o := testOptions()
	o.Mode = "encode"
	o.Key = filepath.Join(dir, "nope")
	o.Input = "stdin"
	o.Output = filepath.Join(dir, "out")
	assert.Error(t, o.Run())
}

func TestRunUnknownModeFails(t *testing.T) {
	o := testOptions()
	o.Mode = "frobnicate"
	assert.Error(t, o.Run())
}
