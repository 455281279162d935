package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// MockEventHandler is a mock implementation of shared.EventHandler for testing.
type MockEventHandler struct {
	mu      sync.Mutex
	task    string
	handled []shared.DomainEvent
	err     error
	fails   int
}

// NewMockEventHandler creates a mock handler performing task.
func NewMockEventHandler(task string) *MockEventHandler {
	return &MockEventHandler{task: task}
}

// Task returns the fan-out task of the handler.
func (h *MockEventHandler) Task() string {
	return h.task
}

// Handle records the event. It returns the configured error, for the configured
// number of calls when FailTimes was used.
func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.fails > 0 {
		h.fails--
		return h.err
	}
	if h.fails < 0 {
		return h.err
	}
	return nil
}

// Handled returns all handled events.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

// HandledCount returns the number of handle calls.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes every call fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
	h.fails = -1
}

// FailTimes makes the next n calls fail with err.
func (h *MockEventHandler) FailTimes(n int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
	h.fails = n
}

// TestEvent is a simple domain event for testing.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

// NewTestEvent creates a new test event.
func NewTestEvent(eventType string, orgID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), orgID),
		Data:            "test-data",
	}
}
