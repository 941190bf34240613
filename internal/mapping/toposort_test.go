package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSort_Order(t *testing.T) {
	// 0 depends on 2, 1 has no deps, 2 depends on 1.
	deps := map[int][]int{0: {2}, 2: {1}}

	order, stuck, err := topoSort(3, func(i int) []int { return deps[i] })
	require.NoError(t, err)
	assert.Empty(t, stuck)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestTopoSort_KeepsDeclarationOrder(t *testing.T) {
	order, _, err := topoSort(4, func(int) []int { return nil })
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestTopoSort_Cycle(t *testing.T) {
	// 0 is free; 1 <-> 2 form a cycle; 3 depends on the cycle.
	deps := map[int][]int{1: {2}, 2: {1}, 3: {1}}

	order, stuck, err := topoSort(4, func(i int) []int { return deps[i] })
	require.ErrorIs(t, err, errCycle)
	assert.Equal(t, []int{0}, order)
	assert.Equal(t, []int{1, 2, 3}, stuck)
}

func TestTopoSort_OutOfRange(t *testing.T) {
	_, _, err := topoSort(1, func(int) []int { return []int{5} })
	assert.Error(t, err)
}

func TestTopoSort_Empty(t *testing.T) {
	order, stuck, err := topoSort(0, nil)
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Nil(t, stuck)
}
