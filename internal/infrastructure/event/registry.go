package event

import (
	"sort"
	"sync"

	"github.com/propcore/backend/internal/domain/shared"
)

// HandlerRegistry maps fan-out task names to the handler performing them.
// Each task has exactly one handler; registering a task again replaces it.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]shared.EventHandler)}
}

// Register adds handlers under the task each one reports
func (r *HandlerRegistry) Register(handlers ...shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range handlers {
		r.handlers[h.Task()] = h
	}
}

// Handler returns the handler for task
func (r *HandlerRegistry) Handler(task string) (shared.EventHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[task]
	return h, ok
}

// Tasks returns the registered task names in sorted order
func (r *HandlerRegistry) Tasks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		tasks = append(tasks, t)
	}
	sort.Strings(tasks)
	return tasks
}
