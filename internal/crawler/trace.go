package crawler

// TraceEvent labels the state transitions a traced URL moves through.
type TraceEvent string

// Trace events emitted by the engine.
const (
	TraceEnqueued TraceEvent = "enqueued"
	TraceRejected TraceEvent = "rejected"
	TraceFetched  TraceEvent = "fetched"
	TraceSaved    TraceEvent = "saved"
	TraceFailed   TraceEvent = "failed"
)

// Tracer is an optional debugging hook: Observe fires for every URL that
// Match accepts, once per state transition. A nil Tracer (or nil fields)
// disables tracing entirely.
type Tracer struct {
	Match   func(rawURL string) bool
	Observe func(rawURL string, event TraceEvent)
}

func (t *Tracer) emit(rawURL string, event TraceEvent) {
	if t == nil || t.Match == nil || t.Observe == nil {
		return
	}
	if t.Match(rawURL) {
		t.Observe(rawURL, event)
	}
}
