package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/prism/internal/graph"
	"github.com/zjrosen/prism/internal/testutil"
)

func TestFindCycles_EmptyGraph(t *testing.T) {
	result := graph.FindCycles(graph.Adjacency{})
	require.Empty(t, result.Cycles)
	require.Zero(t, result.Count)
}

func TestFindCycles_NoEdges(t *testing.T) {
	result := graph.FindCycles(graph.Adjacency{"a": nil, "b": nil})
	require.Zero(t, result.Count)
}

func TestFindCycles_AcyclicChain(t *testing.T) {
	result := graph.FindCycles(testutil.Chain("a", "b", "c", "d"))
	require.Zero(t, result.Count)
}

func TestFindCycles_SelfLoop(t *testing.T) {
	result := graph.FindCycles(graph.Adjacency{"n": {"n"}})

	require.Equal(t, 1, result.Count)
	require.Equal(t, graph.Cycle{"n", "n"}, result.Cycles[0])
}

func TestFindCycles_TriangleFoundOnce(t *testing.T) {
	// A 3-node ring is one cycle no matter which node the scan starts
	// from; canonicalization collapses the three discoveries.
	result := graph.FindCycles(testutil.Ring("a", "b", "c"))

	require.Equal(t, 1, result.Count)
	require.Equal(t, graph.Cycle{"a", "b", "c", "a"}, result.Cycles[0])
}

func TestFindCycles_CanonicalRotation(t *testing.T) {
	// Same ring declared starting from "c": output is still rotated so
	// the smallest member leads.
	result := graph.FindCycles(testutil.Ring("c", "a", "b"))

	require.Equal(t, 1, result.Count)
	require.Equal(t, graph.Cycle{"a", "b", "c", "a"}, result.Cycles[0])
}

func TestFindCycles_DisjointComponents(t *testing.T) {
	adj := testutil.Merge(testutil.Ring("a", "b"), testutil.Ring("x", "y", "z"))

	result := graph.FindCycles(adj)

	require.Equal(t, 2, result.Count)
	require.Contains(t, result.Cycles, graph.Cycle{"a", "b", "a"})
	require.Contains(t, result.Cycles, graph.Cycle{"x", "y", "z", "x"})
}

func TestFindCycles_DuplicateEdges(t *testing.T) {
	adj := graph.Adjacency{
		"a": {"b", "b"},
		"b": {"a"},
	}

	result := graph.FindCycles(adj)
	require.Equal(t, 1, result.Count)
	require.Equal(t, graph.Cycle{"a", "b", "a"}, result.Cycles[0])
}

func TestFindCycles_TwoCyclesSharingANode(t *testing.T) {
	// b participates in a<->b and b<->c
	adj := graph.Adjacency{
		"a": {"b"},
		"b": {"a", "c"},
		"c": {"b"},
	}

	result := graph.FindCycles(adj)
	require.Equal(t, 2, result.Count)
	require.Contains(t, result.Cycles, graph.Cycle{"a", "b", "a"})
	require.Contains(t, result.Cycles, graph.Cycle{"b", "c", "b"})
}

func TestFindCycles_CycleWithAcyclicTail(t *testing.T) {
	adj := testutil.Merge(testutil.Chain("t1", "t2", "a"), testutil.Ring("a", "b", "c"))

	result := graph.FindCycles(adj)
	require.Equal(t, 1, result.Count)
	require.Equal(t, graph.Cycle{"a", "b", "c", "a"}, result.Cycles[0])
}

func TestFindCycles_SuccessorWithoutOwnEntry(t *testing.T) {
	// "b" never appears as a key; the walk must treat it as a leaf.
	result := graph.FindCycles(graph.Adjacency{"a": {"b"}})
	require.Zero(t, result.Count)
}

func TestFindCycles_DeepChainDoesNotOverflow(t *testing.T) {
	// A path long enough to blow a recursive walk; the explicit stack
	// must handle it, and closing the loop yields exactly one cycle.
	const n = 200_000
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = nodeID(i)
	}
	adj := testutil.Ring(nodes...)

	result := graph.FindCycles(adj)
	require.Equal(t, 1, result.Count)
	require.Len(t, result.Cycles[0], n+1)
}

func nodeID(i int) string {
	// Fixed-width ids keep lexicographic and numeric order aligned.
	const digits = "0123456789"
	buf := []byte("n0000000")
	for pos := len(buf) - 1; i > 0 && pos > 0; pos-- {
		buf[pos] = digits[i%10]
		i /= 10
	}
	return string(buf)
}

func TestFindCycles_Deterministic(t *testing.T) {
	adj := testutil.Merge(
		testutil.Ring("a", "b", "c"),
		testutil.Ring("b", "d"),
		testutil.Chain("e", "a"),
	)

	first := graph.FindCycles(adj)
	second := graph.FindCycles(adj)
	require.Equal(t, first, second)
}

func TestFindCycles_PropertyDeterministicAndCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodeGen := rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f"})

		adj := graph.Adjacency{}
		numEdges := rapid.IntRange(0, 15).Draw(t, "numEdges")
		for i := 0; i < numEdges; i++ {
			from := nodeGen.Draw(t, "from")
			to := nodeGen.Draw(t, "to")
			adj[from] = append(adj[from], to)
		}

		first := graph.FindCycles(adj)
		second := graph.FindCycles(adj)
		require.Equal(t, first, second, "same input must give same output")

		seen := map[string]bool{}
		for _, cycle := range first.Cycles {
			require.GreaterOrEqual(t, len(cycle), 2)
			require.Equal(t, cycle[0], cycle[len(cycle)-1], "cycle must close")

			smallest := cycle[0]
			for _, node := range cycle[:len(cycle)-1] {
				require.LessOrEqual(t, smallest, node, "smallest member must lead")
			}

			key := ""
			for _, node := range cycle {
				key += node + "|"
			}
			require.False(t, seen[key], "cycles must be deduplicated")
			seen[key] = true
		}
	})
}
