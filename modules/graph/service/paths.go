package service

import "github.com/davidkwan/orggraph/modules/graph/model"

// bfsShortestPath finds an unweighted shortest path between source and
// target over adj (an undirected adjacency list). Returns nil, false if no
// path exists.
func bfsShortestPath(adj map[model.NodeID]map[model.NodeID]struct{}, source, target model.NodeID) ([]model.NodeID, bool) {
	if source == target {
		return []model.NodeID{source}, true
	}

	visited := map[model.NodeID]bool{source: true}
	parent := map[model.NodeID]model.NodeID{}
	queue := []model.NodeID{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for neighbor := range adj[current] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			parent[neighbor] = current
			if neighbor == target {
				return reconstructPath(parent, source, target), true
			}
			queue = append(queue, neighbor)
		}
	}
	return nil, false
}

func reconstructPath(parent map[model.NodeID]model.NodeID, source, target model.NodeID) []model.NodeID {
	path := []model.NodeID{target}
	for path[len(path)-1] != source {
		path = append(path, parent[path[len(path)-1]])
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// bestShortestPath tries every (source, target) pair in the given sets and
// keeps the overall shortest path found, mirroring the reference
// implementation's nested-pair search rather than a multi-source BFS.
func bestShortestPath(adj map[model.NodeID]map[model.NodeID]struct{}, sources, targets []model.NodeID) ([]model.NodeID, bool) {
	var best []model.NodeID
	for _, s := range sources {
		for _, t := range targets {
			path, ok := bfsShortestPath(adj, s, t)
			if !ok {
				continue
			}
			if best == nil || len(path) < len(best) {
				best = path
			}
		}
	}
	return best, best != nil
}

func filterValidNodes(candidates []model.NodeID, has func(model.NodeID) bool) []model.NodeID {
	var valid []model.NodeID
	for _, c := range candidates {
		if has(c) {
			valid = append(valid, c)
		}
	}
	return valid
}
