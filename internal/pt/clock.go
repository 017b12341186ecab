package pt

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so catalog timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the current UTC time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator abstracts photo ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDv4 photo IDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
