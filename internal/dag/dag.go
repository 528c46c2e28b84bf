// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological sorting
// and cycle detection. The analysis pipeline uses it to order workspace modules
// so that every module is processed after all of its dependencies.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle is a closed path through the graph: the first and last elements
		// are the same node (e.g. [A, B, A]).
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Edges represent "must run before" relationships:
	// an edge from A to B means A must complete before B starts.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// position maps a node to its insertion index.
		position map[string]int
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		position:  make(map[string]int),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.position[name]; ok {
		return
	}
	g.position[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must run before "to".
// Both nodes are implicitly added if they don't exist. Repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.adjacency[from], to) {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Levels groups the nodes by topological depth using Kahn's algorithm.
// Level 0 holds the nodes without predecessors; every node appears one level
// after its deepest predecessor. Nodes within a level keep insertion order, so
// the result is deterministic. Returns CycleError if the graph contains a cycle.
func (g *Graph) Levels() ([][]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	var frontier []string
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			frontier = append(frontier, node)
		}
	}

	var levels [][]string
	visited := 0
	for len(frontier) > 0 {
		levels = append(levels, frontier)
		visited += len(frontier)

		var next []string
		for _, node := range frontier {
			for _, neighbor := range g.adjacency[node] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					next = append(next, neighbor)
				}
			}
		}
		slices.SortFunc(next, func(a, b string) int {
			return g.position[a] - g.position[b]
		})
		frontier = next
	}

	if visited != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle(inDegree)}
	}

	return levels, nil
}

// TopologicalSort returns a valid execution order: the concatenation of Levels.
// Returns CycleError if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	if levels == nil {
		return nil, nil
	}

	result := make([]string, 0, len(g.nodes))
	for _, level := range levels {
		result = append(result, level...)
	}
	return result, nil
}

// findCycle walks the nodes left unsorted by Kahn's algorithm and returns one
// closed path. Every unsorted node has an unsorted predecessor, so following
// edges restricted to unsorted nodes must revisit a node.
func (g *Graph) findCycle(inDegree map[string]int) []string {
	const (
		unvisited = iota
		onStack
		done
	)

	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		state[node] = onStack
		stack = append(stack, node)
		for _, next := range g.adjacency[node] {
			if inDegree[next] == 0 {
				continue
			}
			switch state[next] {
			case onStack:
				start := slices.Index(stack, next)
				cycle = append(slices.Clone(stack[start:]), next)
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = done
		return false
	}

	for _, node := range g.nodes {
		if inDegree[node] > 0 && state[node] == unvisited {
			if visit(node) {
				return cycle
			}
		}
	}
	return nil
}
