package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, rust, covering, damage float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type setCall struct {
	id   primitive.ObjectID
	text string
}

type recordingUpdater struct {
	mu    sync.Mutex
	err   error
	calls []setCall
}

func (r *recordingUpdater) SetAIReport(ctx context.Context, id primitive.ObjectID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, setCall{id: id, text: text})
	return r.err
}

func (r *recordingUpdater) snapshot() []setCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]setCall(nil), r.calls...)
}

func TestEnricherWritesSummaryBack(t *testing.T) {
	ai := &stubAnalyzer{text: "X"}
	updater := &recordingUpdater{}
	e := NewEnricher(ai, updater, 1, time.Second)

	id := primitive.NewObjectID()
	e.Enqueue(id, 0.4, 0.2, 0.1)
	e.Close()

	calls := updater.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, id, calls[0].id)
	assert.Equal(t, "X", calls[0].text)
}

func TestEnricherDropsJobOnAnalysisFailure(t *testing.T) {
	ai := &stubAnalyzer{err: fmt.Errorf("%w: connection refused", ErrUnavailable)}
	updater := &recordingUpdater{}
	e := NewEnricher(ai, updater, 1, time.Second)

	e.Enqueue(primitive.NewObjectID(), 0.9, 0.9, 0.9)
	e.Close()

	assert.Empty(t, updater.snapshot())
}

func TestEnricherSwallowsNotFound(t *testing.T) {
	// report deleted while enrichment was in flight: logged, no retry, no panic
	ai := &stubAnalyzer{text: "summary"}
	updater := &recordingUpdater{err: ErrNotFound}
	e := NewEnricher(ai, updater, 1, time.Second)

	e.Enqueue(primitive.NewObjectID(), 0.1, 0.1, 0.1)
	e.Close()

	require.Len(t, updater.snapshot(), 1)
}

func TestEnricherSwallowsStorageErrors(t *testing.T) {
	ai := &stubAnalyzer{text: "summary"}
	updater := &recordingUpdater{err: errors.New("write concern failed")}
	e := NewEnricher(ai, updater, 1, time.Second)

	e.Enqueue(primitive.NewObjectID(), 0.1, 0.1, 0.1)
	e.Close()

	require.Len(t, updater.snapshot(), 1)
}

type blockedAnalyzer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockedAnalyzer) Analyze(ctx context.Context, rust, covering, damage float64) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return "ok", nil
}

func TestEnqueueNeverBlocksWithQueueFull(t *testing.T) {
	ai := &blockedAnalyzer{started: make(chan struct{}), release: make(chan struct{})}
	updater := &recordingUpdater{}
	e := NewEnricher(ai, updater, 1, 10*time.Second)

	// pin the single worker, then fill the buffer behind it
	e.Enqueue(primitive.NewObjectID(), 0.5, 0.5, 0.5)
	<-ai.started
	for i := 0; i < 64; i++ {
		e.Enqueue(primitive.NewObjectID(), 0.5, 0.5, 0.5)
	}

	done := make(chan struct{})
	go func() {
		e.Enqueue(primitive.NewObjectID(), 0.5, 0.5, 0.5)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked the calling goroutine with the queue full")
	}

	close(ai.release)
	e.Close()

	// the overflow job was dropped, everything accepted was processed
	assert.Len(t, updater.snapshot(), 65)
}

func TestEnricherProcessesEveryJobAcrossWorkers(t *testing.T) {
	ai := &stubAnalyzer{text: "ok"}
	updater := &recordingUpdater{}
	e := NewEnricher(ai, updater, 4, time.Second)

	const n = 50
	ids := make(map[primitive.ObjectID]bool, n)
	for i := 0; i < n; i++ {
		id := primitive.NewObjectID()
		ids[id] = true
		e.Enqueue(id, 0.5, 0.5, 0.5)
	}
	e.Close()

	calls := updater.snapshot()
	require.Len(t, calls, n)
	seen := make(map[primitive.ObjectID]bool, n)
	for _, call := range calls {
		assert.True(t, ids[call.id])
		assert.False(t, seen[call.id], "report enriched twice")
		seen[call.id] = true
	}
}
