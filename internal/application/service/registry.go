package service

import (
	"context"
	"sort"
	"sync"

	"shopqa/internal/domain/entity"
)

// StepHandler performs one step against the system under test.
type StepHandler func(ctx context.Context, step entity.Step) error

// StepRegistry maps step actions to handlers. It is safe for concurrent use.
type StepRegistry struct {
	mu       sync.RWMutex
	handlers map[entity.StepAction]StepHandler
}

func NewStepRegistry() *StepRegistry {
	return &StepRegistry{
		handlers: make(map[entity.StepAction]StepHandler),
	}
}

// Register replaces any handler already bound to action.
func (r *StepRegistry) Register(action entity.StepAction, handler StepHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = handler
}

func (r *StepRegistry) Get(action entity.StepAction) (StepHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[action]
	return h, ok
}

func (r *StepRegistry) Actions() []entity.StepAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]entity.StepAction, 0, len(r.handlers))
	for action := range r.handlers {
		result = append(result, action)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Execute runs the handler for step. It reports false without error when no
// handler is registered for the action.
func (r *StepRegistry) Execute(ctx context.Context, step entity.Step) (bool, error) {
	h, ok := r.Get(step.Action)
	if !ok {
		return false, nil
	}
	return true, h(ctx, step)
}
