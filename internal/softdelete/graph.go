package softdelete

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// RelationKind declares how a hard delete of an owner treats its dependents.
type RelationKind string

const (
	// Cascade hard-deletes dependents together with their owner.
	Cascade RelationKind = "cascade"
	// Protect rejects the hard delete while any dependent row still exists,
	// tombstoned or not.
	Protect RelationKind = "protect"
)

// Edge is one owner→dependent relationship in the static ownership graph.
// ForeignKey is the dependent's column referencing the owner's primary key.
type Edge struct {
	Owner      interface{}
	Dependent  interface{}
	ForeignKey string
	Kind       RelationKind
}

var (
	graphMu sync.RWMutex
	graph   = map[reflect.Type][]Edge{}
)

// Register adds edges to the ownership graph. It is called once, from the
// models package init, so the graph is fixed before any lifecycle operation
// runs.
func Register(edges ...Edge) {
	graphMu.Lock()
	defer graphMu.Unlock()
	for _, e := range edges {
		if e.ForeignKey == "" {
			panic(fmt.Sprintf("softdelete: edge %T -> %T has no foreign key", e.Owner, e.Dependent))
		}
		t := indirectType(e.Owner)
		graph[t] = append(graph[t], e)
	}
}

func edgesFor(model interface{}) []Edge {
	graphMu.RLock()
	defer graphMu.RUnlock()
	return graph[indirectType(model)]
}

func indirectType(model interface{}) reflect.Type {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// ErrProtected is returned (wrapped) when a hard delete hits a protect edge
// with surviving dependents. The transaction is rolled back in full.
var ErrProtected = errors.New("hard delete blocked by protected dependents")

// ProtectedError carries which relationship blocked the hard delete.
type ProtectedError struct {
	Owner     string
	Dependent string
	Count     int64
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s has %d dependent %s row(s): %v", e.Owner, e.Count, e.Dependent, ErrProtected)
}

// Unwrap lets callers test with errors.Is(err, ErrProtected).
func (e *ProtectedError) Unwrap() error {
	return ErrProtected
}
