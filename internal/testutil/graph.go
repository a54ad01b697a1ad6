// Package testutil provides shared fixtures for prism tests.
package testutil

import (
	"github.com/zjrosen/prism/internal/graph"
)

// Ring builds a directed cycle through the given nodes in order, with
// the last node pointing back at the first.
func Ring(nodes ...string) graph.Adjacency {
	adj := make(graph.Adjacency, len(nodes))
	for i, node := range nodes {
		adj[node] = []string{nodes[(i+1)%len(nodes)]}
	}
	return adj
}

// Chain builds a simple path through the given nodes in order, with no
// edge out of the last node.
func Chain(nodes ...string) graph.Adjacency {
	adj := make(graph.Adjacency, len(nodes))
	for i, node := range nodes {
		if i+1 < len(nodes) {
			adj[node] = []string{nodes[i+1]}
		} else {
			adj[node] = nil
		}
	}
	return adj
}

// Merge combines adjacency maps into one graph. Successor lists for a
// node appearing in several inputs are concatenated in argument order.
func Merge(graphs ...graph.Adjacency) graph.Adjacency {
	merged := make(graph.Adjacency)
	for _, g := range graphs {
		for node, succs := range g {
			merged[node] = append(merged[node], succs...)
		}
	}
	return merged
}
