package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	"github.com/davidkwan/orggraph/modules/graph/model"
	"github.com/davidkwan/orggraph/modules/graph/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// InvalidationPublisher broadcasts a cache-drop so other processes sharing
// the store discard their local graph snapshots too.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, channel, reason string) error
}

// InvalidationSubscriber hands back a channel-scoped subscription whose
// Channel() yields one message per broadcast invalidation.
type InvalidationSubscriber interface {
	SubscribeInvalidation(ctx context.Context, channel string) *redis.PubSub
}

// GraphService builds, caches, and queries the full-history and colleague
// graphs. Both graphs are rebuilt wholesale on a cache miss and retained as
// immutable snapshots until Invalidate drops them.
type GraphService struct {
	employment ports.EmploymentSource
	orgs       ports.OrgHierarchySource
	log        *logger.Logger

	publisher          InvalidationPublisher
	invalidationChannel string

	mu              sync.Mutex
	full            *fullGraph
	colleague       *colleagueGraph
	rebuildGroup    singleflight.Group
}

func NewGraphService(employment ports.EmploymentSource, orgs ports.OrgHierarchySource, log *logger.Logger, publisher InvalidationPublisher, invalidationChannel string) *GraphService {
	return &GraphService{
		employment:          employment,
		orgs:                orgs,
		log:                 log,
		publisher:           publisher,
		invalidationChannel: invalidationChannel,
	}
}

// Invalidate drops both cached graphs, forcing the next reader to rebuild,
// and broadcasts the drop to any other process sharing the store.
func (s *GraphService) Invalidate(ctx context.Context, reason string) {
	s.mu.Lock()
	s.full = nil
	s.colleague = nil
	s.mu.Unlock()

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishInvalidation(ctx, s.invalidationChannel, reason); err != nil {
		s.log.Warn("failed to broadcast graph cache invalidation", zap.Error(err))
	}
}

// InvalidateLocal drops only this process's cached graphs, without
// re-broadcasting -- used by the pub/sub subscriber loop that reacts to a
// peer's invalidation.
func (s *GraphService) InvalidateLocal() {
	s.mu.Lock()
	s.full = nil
	s.colleague = nil
	s.mu.Unlock()
}

// WatchInvalidations subscribes to channel on sub and drops this process's
// local graph snapshots on every message received, until ctx is canceled.
// Run it in its own goroutine once at startup so that every process sharing
// the store converges on the same graph after any one of them mutates it.
func (s *GraphService) WatchInvalidations(ctx context.Context, sub InvalidationSubscriber, channel string) {
	pubsub := sub.SubscribeInvalidation(ctx, channel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			s.log.Info("dropping local graph cache on peer invalidation", zap.String("reason", msg.Payload))
			s.InvalidateLocal()
		}
	}
}

func (s *GraphService) getFullGraph(ctx context.Context) (*fullGraph, error) {
	s.mu.Lock()
	cached := s.full
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.rebuildGroup.Do("full", func() (interface{}, error) {
		employment, err := s.employment.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		hierarchy, err := s.orgs.Hierarchy(ctx)
		if err != nil {
			return nil, err
		}
		g := buildFullGraph(employment, hierarchy)

		s.mu.Lock()
		s.full = g
		s.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*fullGraph), nil
}

func (s *GraphService) getColleagueGraph(ctx context.Context) (*colleagueGraph, error) {
	s.mu.Lock()
	cached := s.colleague
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.rebuildGroup.Do("colleague", func() (interface{}, error) {
		employment, err := s.employment.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		g := buildColleagueGraph(employment)

		s.mu.Lock()
		s.colleague = g
		s.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*colleagueGraph), nil
}

// FindShortestPath finds the shortest time-agnostic path between any of
// sourceIDs and any of targetIDs over the full history graph. When
// peopleOnly is set, organization "stepping stones" are dropped from the
// returned path, matching the reference tool's filter rather than
// re-deriving a people-only sub-path.
func (s *GraphService) FindShortestPath(ctx context.Context, sourceIDs, targetIDs []int64, peopleOnly bool) ([]model.PathStep, error) {
	g, err := s.getFullGraph(ctx)
	if err != nil {
		return nil, err
	}

	sources := filterValidNodes(toPersonNodeIDs(sourceIDs), g.has)
	targets := filterValidNodes(toPersonNodeIDs(targetIDs), g.has)
	if len(sources) == 0 || len(targets) == 0 {
		s.log.Warn("no valid source or target ids found in full graph",
			zap.Int64s("source_ids", sourceIDs), zap.Int64s("target_ids", targetIDs))
		return nil, nil
	}

	pathIDs, ok := bestShortestPath(g.adj, sources, targets)
	if !ok {
		return nil, nil
	}

	steps := make([]model.PathStep, 0, len(pathIDs))
	for _, id := range pathIDs {
		attrs := g.nodes[id]
		if peopleOnly && attrs.kind != model.PersonNode {
			continue
		}
		steps = append(steps, model.PathStep{Kind: attrs.kind, ID: attrs.id, Name: attrs.name})
	}
	return steps, nil
}

// FindShortestTemporalPath finds the shortest path of verified colleagues
// (overlapping employment) between the given person id sets, over the
// colleague graph, and weaves in the connecting organization between every
// consecutive pair of people.
func (s *GraphService) FindShortestTemporalPath(ctx context.Context, sourceIDs, targetIDs []int64) ([]model.PathStep, error) {
	colleagueG, err := s.getColleagueGraph(ctx)
	if err != nil {
		return nil, err
	}
	fullG, err := s.getFullGraph(ctx)
	if err != nil {
		return nil, err
	}

	sources := filterValidNodes(toPersonNodeIDs(sourceIDs), colleagueG.has)
	targets := filterValidNodes(toPersonNodeIDs(targetIDs), colleagueG.has)
	if len(sources) == 0 || len(targets) == 0 {
		s.log.Warn("no valid source or target ids found in colleague graph",
			zap.Int64s("source_ids", sourceIDs), zap.Int64s("target_ids", targetIDs))
		return nil, nil
	}

	personPath, ok := bestShortestPath(colleagueG.adj, sources, targets)
	if !ok {
		return nil, nil
	}

	steps := make([]model.PathStep, 0, len(personPath)*2-1)
	steps = append(steps, model.PathStep{
		Kind: model.PersonNode,
		ID:   personIDFromNode(personPath[0]),
		Name: colleagueG.names[personPath[0]],
	})

	for i := 0; i < len(personPath)-1; i++ {
		p1, p2 := personPath[i], personPath[i+1]
		orgID, ok := colleagueG.firstSharedOrg(p1, p2)
		if ok {
			orgNode := orgNodeID(orgID)
			steps = append(steps, model.PathStep{Kind: model.OrgNode, ID: orgID, Name: fullG.nodes[orgNode].name})
		}
		steps = append(steps, model.PathStep{
			Kind: model.PersonNode,
			ID:   personIDFromNode(p2),
			Name: colleagueG.names[p2],
		})
	}

	return steps, nil
}

func toPersonNodeIDs(ids []int64) []model.NodeID {
	nodes := make([]model.NodeID, len(ids))
	for i, id := range ids {
		nodes[i] = personNodeID(id)
	}
	return nodes
}

// personIDFromNode recovers the numeric id this package encoded into a
// "person_<id>" NodeID.
func personIDFromNode(id model.NodeID) int64 {
	n, _ := strconv.ParseInt(strings.TrimPrefix(string(id), "person_"), 10, 64)
	return n
}
