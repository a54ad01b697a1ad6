// Package graph provides cycle enumeration over arbitrary directed
// graphs. It backs the "cycles" projection but has no dependency on the
// projection engine; the input is a plain adjacency mapping.
package graph

import (
	"sort"
	"strings"
)

// Adjacency maps a node id to its ordered list of successor ids.
// Duplicate edges, self-loops, and disconnected components are all
// legal inputs.
type Adjacency map[string][]string

// Cycle is a simple cycle as an ordered path of node ids whose first
// and last elements are equal.
type Cycle []string

// Result holds every simple cycle discovered in a graph, canonicalized
// and deduplicated, plus the total count.
type Result struct {
	Cycles []Cycle
	Count  int
}

// frame is one level of the explicit depth-first stack: a node and the
// index of its next untried successor.
type frame struct {
	node string
	next int
}

// FindCycles enumerates the simple cycles of adj.
//
// The traversal is an iterative depth-first walk with an explicit frame
// stack, so arbitrarily deep graphs cannot exhaust the goroutine stack.
// Three state sets drive it: visited (nodes ever started), finished
// (nodes fully explored, never re-entered from any later root), and an
// on-path set whose membership mirrors the current path exactly, which
// is what makes back-edge detection O(1). A node moves unvisited →
// on-path → finished and never regresses.
//
// Each discovered cycle is rotated so its smallest member comes first,
// re-closed, and recorded once; the same ring reached from different
// roots therefore appears exactly once in the result. Roots are scanned
// in sorted order and successors in declared order, so identical inputs
// produce identical output.
//
// The number of simple cycles can be exponential in dense graphs and
// there is no internal cap; callers bound their input.
func FindCycles(adj Adjacency) Result {
	roots := make([]string, 0, len(adj))
	for node := range adj {
		roots = append(roots, node)
	}
	sort.Strings(roots)

	visited := make(map[string]bool, len(adj))
	finished := make(map[string]bool, len(adj))
	recorded := make(map[string]bool)

	var cycles []Cycle

	for _, root := range roots {
		// Anything finished by an earlier walk can never contribute a
		// new cycle. A visited-but-unfinished node cannot exist between
		// walks, so this is the only root guard needed.
		if finished[root] {
			continue
		}

		stack := []frame{{node: root}}
		path := []string{root}
		onPath := map[string]int{root: 0}
		visited[root] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := adj[top.node]

			if top.next < len(succs) {
				succ := succs[top.next]
				top.next++

				if start, ok := onPath[succ]; ok {
					// Back edge: the cycle is the path slice from the
					// successor's position through the current node,
					// closed by appending the successor again.
					cycle := make(Cycle, 0, len(path)-start+1)
					cycle = append(cycle, path[start:]...)
					cycle = append(cycle, succ)

					canonical := canonicalize(cycle)
					key := strings.Join(canonical, "\x1f")
					if !recorded[key] {
						recorded[key] = true
						cycles = append(cycles, canonical)
					}
					continue
				}

				if !visited[succ] {
					visited[succ] = true
					stack = append(stack, frame{node: succ})
					onPath[succ] = len(path)
					path = append(path, succ)
				}
				// Already visited but not on-path: finished, skip.
				continue
			}

			// Successors exhausted: retire the node.
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			delete(onPath, top.node)
			finished[top.node] = true
		}
	}

	return Result{Cycles: cycles, Count: len(cycles)}
}

// canonicalize rotates a closed cycle so its smallest member comes
// first, then re-closes it. ["B","C","A","B"] becomes ["A","B","C","A"].
func canonicalize(cycle Cycle) Cycle {
	members := cycle[:len(cycle)-1]

	smallest := 0
	for i, node := range members {
		if node < members[smallest] {
			smallest = i
		}
	}

	canonical := make(Cycle, 0, len(cycle))
	for i := 0; i < len(members); i++ {
		canonical = append(canonical, members[(smallest+i)%len(members)])
	}
	canonical = append(canonical, canonical[0])
	return canonical
}
