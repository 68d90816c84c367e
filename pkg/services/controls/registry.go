package controls

import (
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
)

// Env carries everything a group of checks reads from.
type Env struct {
	Clients   *awsclient.Clients
	AccountID string
	Region    string

	DailyCostThreshold float64
	RequiredTags       []string
	MonthlyBudgetName  string

	// DetailConcurrency bounds per-resource detail fetches inside one check.
	DetailConcurrency int

	Now func() time.Time
}

func (e Env) Clock() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now()
}

// GroupFactory builds the ordered checks of one group.
type GroupFactory func(env Env) []*check.Check

// Registry keeps the group factories in registration order.
type Registry interface {
	Register(group string, factory GroupFactory) error
	Create(group string, env Env) ([]*check.Check, error)
	ListGroups() []string
}

type registry struct {
	mu        sync.RWMutex
	order     []string
	factories map[string]GroupFactory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]GroupFactory),
	}
}

func (r *registry) Register(group string, factory GroupFactory) error {
	if group == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[group]; exists {
		return fmt.Errorf("group %q is already registered", group)
	}

	r.factories[group] = factory
	r.order = append(r.order, group)
	return nil
}

func (r *registry) Create(group string, env Env) ([]*check.Check, error) {
	r.mu.RLock()
	factory, exists := r.factories[group]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("group %q is not registered", group)
	}

	return factory(env), nil
}

func (r *registry) ListGroups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]string, len(r.order))
	copy(groups, r.order)
	return groups
}
