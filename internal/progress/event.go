// Package progress defines the event structures emitted by the crawl loop.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageCrawlStart Stage = "CRAWL_START"
	StageHeartbeat  Stage = "HEARTBEAT"
	StagePageSaved  Stage = "PAGE_SAVED"
	StagePageError  Stage = "PAGE_ERROR"
	StageCheckpoint Stage = "CHECKPOINT"
	StageCrawlDone  Stage = "CRAWL_DONE"
)

// Event captures a single milestone of crawler progress.
type Event struct {
	// RunID uniquely identifies a crawl run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// URL is the optional page URL for per-page stages.
	URL string
	// Bytes carries the stored page size for PAGE_SAVED events.
	Bytes int64
	// Processed/Saved/QueueLen mirror the crawl counters at emit time.
	Processed int64
	Saved     int64
	QueueLen  int64
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageCrawlStart, StageHeartbeat, StageCheckpoint, StageCrawlDone:
	case StagePageSaved, StagePageError:
		if e.URL == "" {
			return fmt.Errorf("%s requires a url", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for display.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
