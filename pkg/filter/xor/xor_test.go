package xor

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXorFilterBasics(t *testing.T) {
	// Create a set of random keys
	numKeys := 10000
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("key-%d", rand.Intn(1000000))
	}

	f, err := Create(keys)
	require.NoError(t, err)
	require.NotZero(t, f.Size())

	// All inserted keys should be found (no false negatives)
	for _, key := range keys {
		require.True(t, f.Contains(key), "Key should be in filter: %s", key)
	}

	// Keys not in the set should mostly return false (with few false positives)
	falsePositives := 0
	testCount := 10000
	for i := 0; i < testCount; i++ {
		if f.Contains(fmt.Sprintf("other-key-%d", rand.Intn(1000000))) {
			falsePositives++
		}
	}

	falsePositiveRate := float64(falsePositives) / float64(testCount)
	t.Logf("False positive rate: %.4f (%d out of %d)", falsePositiveRate, falsePositives, testCount)

	// binary fuse filters with 8-bit fingerprints are around 0.4%
	require.Less(t, falsePositiveRate, 0.01, "False positive rate should be reasonable")
}

func TestXorFilterSmall(t *testing.T) {
	f, err := Create([]string{"a", "b", "b"})
	require.NoError(t, err)
	require.True(t, f.Contains("a"))
	require.True(t, f.Contains("b"))
}

func TestXorFilterEmpty(t *testing.T) {
	_, err := Create([]string{})
	require.Error(t, err)

	_, err = Create(nil)
	require.Error(t, err)
}
