package telemetry

import "github.com/bsidebar/insights/pkg/concurrent"

// Stack buffers events until the next flush. Producers only ever append;
// Drain hands the current contents to exactly one batch.
type Stack struct {
	events *concurrent.Slice[Event]
}

func NewStack() *Stack {
	return &Stack{events: concurrent.NewSlice[Event]()}
}

func (s *Stack) Push(event Event) {
	s.events.Append(event)
}

// Drain atomically empties the stack and returns what it held. Events
// pushed concurrently land in the next batch.
func (s *Stack) Drain() []Event {
	return s.events.Drain()
}

func (s *Stack) Len() int {
	return s.events.Length()
}
