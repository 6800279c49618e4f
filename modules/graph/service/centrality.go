package service

import (
	"context"

	"github.com/davidkwan/orggraph/modules/graph/model"
)

// CalculateCentralityMetrics computes betweenness, degree, and closeness
// centrality over a person-projection graph, where two people are joined
// iff they are connected by any path in the full history graph (employment
// and organizational hierarchy edges alike).
//
// The projection graph, by construction, is a disjoint union of cliques --
// one per connected component of the full graph that contains people. That
// closed form lets every metric be derived directly from component sizes
// instead of materializing the projection and running generic centrality
// algorithms on it:
//   - betweenness is always zero, because every pair within a clique is
//     joined by a direct edge -- no third node ever lies on a shortest path.
//   - degree_centrality(v) = (componentPeople(v) - 1) / (totalPeople - 1)
//   - closeness_centrality(v) follows the same identity, since every
//     distance inside a clique is 1.
func (s *GraphService) CalculateCentralityMetrics(ctx context.Context) (model.CentralityMetrics, error) {
	g, err := s.getFullGraph(ctx)
	if err != nil {
		return model.CentralityMetrics{}, err
	}

	components := connectedPersonComponents(g)
	totalPeople := 0
	for _, comp := range components {
		totalPeople += len(comp)
	}

	metrics := model.CentralityMetrics{
		Betweenness: make(map[int64]float64, totalPeople),
		Degree:      make(map[int64]float64, totalPeople),
		Closeness:   make(map[int64]float64, totalPeople),
	}

	anyEdge := false
	for _, comp := range components {
		if len(comp) > 1 {
			anyEdge = true
		}
		for _, personID := range comp {
			metrics.Betweenness[personID] = 0
			if totalPeople > 1 {
				metrics.Degree[personID] = float64(len(comp)-1) / float64(totalPeople-1)
				metrics.Closeness[personID] = float64(len(comp)-1) / float64(totalPeople-1)
			}
		}
	}

	if !anyEdge {
		return model.CentralityMetrics{}, nil
	}
	return metrics, nil
}

// connectedPersonComponents partitions every person node in g by the
// connected component of the undirected full graph it falls in (traversing
// through organization nodes too), and returns each component's person ids.
func connectedPersonComponents(g *fullGraph) [][]int64 {
	visited := make(map[model.NodeID]bool, len(g.nodes))
	var components [][]int64

	for id := range g.nodes {
		if visited[id] {
			continue
		}

		var personIDs []int64
		queue := []model.NodeID{id}
		visited[id] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if a := g.nodes[current]; a.kind == model.PersonNode {
				personIDs = append(personIDs, a.id)
			}
			for neighbor := range g.adj[current] {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		if len(personIDs) > 0 {
			components = append(components, personIDs)
		}
	}

	return components
}
