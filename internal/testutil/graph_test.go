package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/prism/internal/graph"
)

func TestRing(t *testing.T) {
	adj := Ring("a", "b", "c")
	require.Equal(t, graph.Adjacency{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}, adj)
}

func TestChain(t *testing.T) {
	adj := Chain("a", "b", "c")
	require.Equal(t, []string{"b"}, adj["a"])
	require.Equal(t, []string{"c"}, adj["b"])
	require.Empty(t, adj["c"])
}

func TestMerge_ConcatenatesSuccessors(t *testing.T) {
	merged := Merge(Ring("a", "b"), Chain("a", "c"))
	require.Equal(t, []string{"b", "c"}, merged["a"])
	require.Equal(t, []string{"a"}, merged["b"])
}
