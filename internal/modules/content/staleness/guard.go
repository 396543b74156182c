// Package staleness implements the read-before-write guard shared by every
// content kind. A writer must have observed the latest tracked modification;
// every accepted write clears the read mark so the next write needs a new read.
package staleness

import (
	"fmt"
	"time"
)

// Stamps is the per-record read/modify pair. Nil ModifiedAt means no tracked
// write yet; nil ReadAt means not read since the last tracked write.
type Stamps struct {
	ModifiedAt *time.Time `json:"content_modified_at"`
	ReadAt     *time.Time `json:"content_read_at"`
}

// Verdict is the outcome of CheckWrite. A rejection is an ordinary value so
// the caller can hand it back to an agent.
type Verdict struct {
	Allowed bool
	Reason  string
}

type Guard struct {
	now func() time.Time
}

func New() Guard {
	return Guard{now: time.Now}
}

// WithClock returns a guard reading time from now.
func WithClock(now func() time.Time) Guard {
	if now == nil {
		now = time.Now
	}
	return Guard{now: now}
}

// Now is the guard's clock, normalised to UTC microseconds so it survives a
// round trip through Postgres unchanged.
func (g Guard) Now() time.Time {
	clock := g.now
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Microsecond)
}

func (g Guard) RecordRead(s Stamps) Stamps {
	at := g.Now()
	return Stamps{ModifiedAt: s.ModifiedAt, ReadAt: &at}
}

func (g Guard) CheckWrite(s Stamps) Verdict {
	if s.ModifiedAt == nil {
		return Verdict{Allowed: true}
	}
	if s.ReadAt != nil && !s.ModifiedAt.After(*s.ReadAt) {
		return Verdict{Allowed: true}
	}
	return Verdict{Allowed: false, Reason: staleReason(s)}
}

func (g Guard) AfterWrite(Stamps) Stamps {
	at := g.Now()
	return Stamps{ModifiedAt: &at, ReadAt: nil}
}

// Reset drops both marks; used when the conversation that observed the
// record is cleared.
func (Guard) Reset() Stamps {
	return Stamps{}
}

func staleReason(s Stamps) string {
	read := "never"
	if s.ReadAt != nil {
		read = s.ReadAt.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf(
		"content was modified at %s but last read at %s; call get_content to re-read the current content before writing again",
		s.ModifiedAt.Format(time.RFC3339Nano),
		read,
	)
}
