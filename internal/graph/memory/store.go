// Package memory implements graph.Store in process memory. It backs tests and
// dry runs.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
)

// Node is a stored node. Nodes are keyed by label and identifier, matching a
// MERGE on (:Label {UUID: id}).
type Node struct {
	Label      string
	ID         string
	Properties map[string]any
}

// Edge is a stored relationship.
type Edge struct {
	Source string
	Target string
	Type   string
}

type nodeKey struct {
	label string
	id    string
}

// Store is a concurrency-safe in-memory graph.
type Store struct {
	mu     sync.Mutex
	nodes  map[nodeKey]*Node
	order  []nodeKey
	edges  map[Edge]struct{}
	eorder []Edge
	writes int
	closed bool
}

var _ graph.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		nodes: make(map[nodeKey]*Node),
		edges: make(map[Edge]struct{}),
	}
}

// NodeExistsByProperty implements graph.Store.
func (s *Store) NodeExistsByProperty(_ context.Context, label, property string, value any) (bool, error) {
	if err := graph.ValidateLabel(label); err != nil {
		return false, err
	}
	if err := graph.ValidateProperty(property); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	for key, n := range s.nodes {
		if key.label != label {
			continue
		}
		if v, ok := n.Properties[property]; ok && reflect.DeepEqual(v, value) {
			return true, nil
		}
	}
	return false, nil
}

// NodeExistsByIdentifier implements graph.Store.
func (s *Store) NodeExistsByIdentifier(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	return s.hasID(id), nil
}

// UpsertNode implements graph.Store.
func (s *Store) UpsertNode(_ context.Context, label, id string, properties map[string]any) error {
	if err := graph.ValidateLabel(label); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.writes++
	key := nodeKey{label: label, id: id}
	n, ok := s.nodes[key]
	if !ok {
		n = &Node{Label: label, ID: id, Properties: make(map[string]any, len(properties))}
		s.nodes[key] = n
		s.order = append(s.order, key)
	}
	for k, v := range properties {
		n.Properties[k] = v
	}
	return nil
}

// UpsertRelationship implements graph.Store.
func (s *Store) UpsertRelationship(_ context.Context, sourceID, targetID, relType string) error {
	if err := graph.ValidateRelationship(relType); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.writes++
	if !s.hasID(sourceID) || !s.hasID(targetID) {
		return nil
	}
	e := Edge{Source: sourceID, Target: targetID, Type: relType}
	if _, ok := s.edges[e]; !ok {
		s.edges[e] = struct{}{}
		s.eorder = append(s.eorder, e)
	}
	return nil
}

// Close implements graph.Store.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Writes returns how many write calls the store has received.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Node returns a copy of the node with label and id.
func (s *Store) Node(label, id string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[nodeKey{label: label, id: id}]
	if !ok {
		return Node{}, false
	}
	return copyNode(n), true
}

// Nodes returns copies of every node labelled label, in creation order.
func (s *Store) Nodes(label string) []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Node
	for _, key := range s.order {
		if key.label == label {
			out = append(out, copyNode(s.nodes[key]))
		}
	}
	return out
}

// Edges returns every relationship in creation order.
func (s *Store) Edges() []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Edge(nil), s.eorder...)
}

// EdgesOfType returns relationships of relType sorted by source then target.
func (s *Store) EdgesOfType(relType string) []Edge {
	var out []Edge
	for _, e := range s.Edges() {
		if e.Type == relType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

func (s *Store) hasID(id string) bool {
	for key := range s.nodes {
		if key.id == id {
			return true
		}
	}
	return false
}

func (s *Store) checkOpen() error {
	if s.closed {
		return fmt.Errorf("memory store closed")
	}
	return nil
}

func copyNode(n *Node) Node {
	props := make(map[string]any, len(n.Properties))
	for k, v := range n.Properties {
		props[k] = v
	}
	return Node{Label: n.Label, ID: n.ID, Properties: props}
}
