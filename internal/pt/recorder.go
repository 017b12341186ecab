package pt

import "time"

// Recorder receives counters and timings from the service. The metrics
// package provides the Prometheus implementation.
type Recorder interface {
	Ingested(duplicate bool)
	Promoted(tier Tier)
	Deleted(permanent bool)
	ThumbnailRendered(d time.Duration)
	TaskDropped()
	Failed(op string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Ingested(bool)                   {}
func (NopRecorder) Promoted(Tier)                   {}
func (NopRecorder) Deleted(bool)                    {}
func (NopRecorder) ThumbnailRendered(time.Duration) {}
func (NopRecorder) TaskDropped()                    {}
func (NopRecorder) Failed(string)                   {}
