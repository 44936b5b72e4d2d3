package tasks

import (
	"testing"

	"github.com/cexline/spreadscan/testutil/assert"
	"github.com/cexline/spreadscan/testutil/require"
)

func TestScanSignature(t *testing.T) {
	sig := scanSignature([]int64{1, 2, 3})
	assert.Equal(t, TaskScanReady, sig.Name)
	require.Equal(t, 1, len(sig.Args))
	assert.Equal(t, "[]int64", sig.Args[0].Type)
	assert.DeepEqual(t, []int64{1, 2, 3}, sig.Args[0].Value)
}

func TestComputeSignatures(t *testing.T) {
	sigs := computeSignatures([]int64{7, 9})
	require.Equal(t, 2, len(sigs))
	for i, want := range []int64{7, 9} {
		assert.Equal(t, TaskComputePair, sigs[i].Name)
		require.Equal(t, 1, len(sigs[i].Args))
		assert.Equal(t, "int64", sigs[i].Args[0].Type)
		assert.Equal(t, want, sigs[i].Args[0].Value)
	}
}

func TestComputeSignatures_Empty(t *testing.T) {
	assert.Equal(t, 0, len(computeSignatures(nil)))
}
