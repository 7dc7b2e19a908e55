package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func validEvent(stage Stage) Event {
	return Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now().UTC(),
		Stage: stage,
	}
}

func TestHubDeliversEvents(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)

	hub.Emit(validEvent(StageCrawlStart))
	hub.Emit(validEvent(StageHeartbeat))

	require.NoError(t, hub.Close(context.Background()))

	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, StageCrawlStart, events[0].Stage)
	assert.Equal(t, StageHeartbeat, events[1].Stage)
	assert.True(t, sink.closed)
}

func TestHubDropsInvalidEvents(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(Event{}) // missing run id and timestamp
	hub.Emit(validEvent(Stage("BOGUS")))

	require.NoError(t, hub.Close(context.Background()))
	assert.Empty(t, sink.snapshot())
}

func TestHubEmitAfterCloseIsNoop(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(StageHeartbeat))
	assert.Empty(t, sink.snapshot())
}

func TestHubCloseDrainsPending(t *testing.T) {
	sink := &captureSink{}
	// Long batch wait: flush must come from the close-time drain.
	hub := NewHub(Config{MaxBatchWait: time.Minute}, sink)

	for i := 0; i < 10; i++ {
		hub.Emit(validEvent(StagePageSaved))
	}
	// PAGE_SAVED requires a URL, so the events above were discarded;
	// emit valid ones instead.
	assert.Empty(t, sink.snapshot())

	for i := 0; i < 10; i++ {
		evt := validEvent(StagePageSaved)
		evt.URL = "https://example.wiki/wiki/A_(V5)"
		hub.Emit(evt)
	}
	require.NoError(t, hub.Close(context.Background()))
	assert.Len(t, sink.snapshot(), 10)
}

func TestEventValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Event)
		wantErr bool
	}{
		{"valid heartbeat", func(*Event) {}, false},
		{"missing run id", func(e *Event) { e.RunID = [16]byte{} }, true},
		{"missing timestamp", func(e *Event) { e.TS = time.Time{} }, true},
		{"unknown stage", func(e *Event) { e.Stage = "NOPE" }, true},
		{"page saved without url", func(e *Event) { e.Stage = StagePageSaved }, true},
		{"page error with url", func(e *Event) {
			e.Stage = StagePageError
			e.URL = "https://example.wiki/wiki/A"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evt := validEvent(StageHeartbeat)
			tc.mutate(&evt)
			err := evt.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
