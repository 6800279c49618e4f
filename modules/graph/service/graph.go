// Package service builds and queries the two in-memory organizational
// graphs: the full employment/hierarchy history, and the narrower
// people-only colleague graph.
package service

import (
	"fmt"
	"time"

	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	"github.com/davidkwan/orggraph/modules/graph/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
)

// intervalsOverlap is the classic inclusive interval-overlap check: a starts
// before b ends, and b starts before a ends.
func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

func personNodeID(id int64) model.NodeID {
	return model.NodeID(fmt.Sprintf("person_%d", id))
}

func orgNodeID(id int64) model.NodeID {
	return model.NodeID(fmt.Sprintf("org_%d", id))
}

type nodeAttrs struct {
	kind model.NodeKind
	id   int64
	name string
}

// fullGraph holds the employed_at and subunit_of links as an undirected
// adjacency set: every query against it (shortest path, connectivity) treats
// direction as irrelevant. Edges carry no type and no employment attributes
// (rank, dates), and repeated links between the same two nodes collapse into
// one.
type fullGraph struct {
	nodes map[model.NodeID]nodeAttrs
	adj   map[model.NodeID]map[model.NodeID]struct{}
}

func newFullGraph() *fullGraph {
	return &fullGraph{
		nodes: make(map[model.NodeID]nodeAttrs),
		adj:   make(map[model.NodeID]map[model.NodeID]struct{}),
	}
}

func (g *fullGraph) addNode(id model.NodeID, attrs nodeAttrs) {
	g.nodes[id] = attrs
}

func (g *fullGraph) addEdge(a, b model.NodeID) {
	if g.adj[a] == nil {
		g.adj[a] = make(map[model.NodeID]struct{})
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[model.NodeID]struct{})
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

func (g *fullGraph) has(id model.NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// buildFullGraph mirrors build_full_history_graph: a node per person and
// per organization, an employed_at edge per employment row, and a
// subunit_of edge per parent link.
func buildFullGraph(employment []employmentmodel.Enriched, hierarchy []orgmodel.HierarchyNode) *fullGraph {
	g := newFullGraph()

	for _, e := range employment {
		g.addNode(personNodeID(e.PersonID), nodeAttrs{kind: model.PersonNode, id: e.PersonID, name: e.PersonName})
		g.addNode(orgNodeID(e.OrgID), nodeAttrs{kind: model.OrgNode, id: e.OrgID, name: e.OrgName})
		g.addEdge(personNodeID(e.PersonID), orgNodeID(e.OrgID))
	}

	for _, org := range hierarchy {
		g.addNode(orgNodeID(org.ID), nodeAttrs{kind: model.OrgNode, id: org.ID, name: org.Name})
	}
	for _, org := range hierarchy {
		if org.ParentOrgID != nil {
			g.addEdge(orgNodeID(org.ID), orgNodeID(*org.ParentOrgID))
		}
	}

	return g
}

// colleagueGraph is the undirected, people-only graph: an edge means two
// people's employment at a shared organization overlapped in time.
type colleagueGraph struct {
	names map[model.NodeID]string
	adj   map[model.NodeID]map[model.NodeID]struct{}
	// sharedOrgs records, per unordered pair, the organization ids the pair
	// overlapped at, in the order first discovered.
	sharedOrgs map[[2]model.NodeID][]int64
}

func newColleagueGraph() *colleagueGraph {
	return &colleagueGraph{
		names:      make(map[model.NodeID]string),
		adj:        make(map[model.NodeID]map[model.NodeID]struct{}),
		sharedOrgs: make(map[[2]model.NodeID][]int64),
	}
}

func (g *colleagueGraph) addNode(id model.NodeID, name string) {
	if _, ok := g.names[id]; !ok {
		g.names[id] = name
	}
}

func pairKey(a, b model.NodeID) [2]model.NodeID {
	if a < b {
		return [2]model.NodeID{a, b}
	}
	return [2]model.NodeID{b, a}
}

func (g *colleagueGraph) addOverlap(a, b model.NodeID, orgID int64) {
	if g.adj[a] == nil {
		g.adj[a] = make(map[model.NodeID]struct{})
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[model.NodeID]struct{})
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}

	key := pairKey(a, b)
	g.sharedOrgs[key] = append(g.sharedOrgs[key], orgID)
}

func (g *colleagueGraph) firstSharedOrg(a, b model.NodeID) (int64, bool) {
	orgs := g.sharedOrgs[pairKey(a, b)]
	if len(orgs) == 0 {
		return 0, false
	}
	return orgs[0], true
}

func (g *colleagueGraph) has(id model.NodeID) bool {
	_, ok := g.names[id]
	return ok
}

// buildColleagueGraph mirrors _build_colleague_graph: group employments by
// organization, then for every pair of employments at the same
// organization whose intervals overlap, add a colleague edge tagged with
// that organization.
func buildColleagueGraph(employment []employmentmodel.Enriched) *colleagueGraph {
	g := newColleagueGraph()

	byOrg := make(map[int64][]employmentmodel.Enriched)
	for _, e := range employment {
		g.addNode(personNodeID(e.PersonID), e.PersonName)
		byOrg[e.OrgID] = append(byOrg[e.OrgID], e)
	}

	for orgID, employees := range byOrg {
		for i := 0; i < len(employees); i++ {
			for j := i + 1; j < len(employees); j++ {
				p1, p2 := employees[i], employees[j]
				if intervalsOverlap(p1.StartDate, p1.EndDate, p2.StartDate, p2.EndDate) {
					g.addOverlap(personNodeID(p1.PersonID), personNodeID(p2.PersonID), orgID)
				}
			}
		}
	}

	return g
}
