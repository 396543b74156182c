package staleness

import (
	"strings"
	"testing"
	"time"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestCheckWriteNeverModifiedAllows(t *testing.T) {
	g := New()
	if v := g.CheckWrite(Stamps{}); !v.Allowed {
		t.Fatalf("expected allow for untracked record, got %+v", v)
	}
	read := time.Now()
	if v := g.CheckWrite(Stamps{ReadAt: &read}); !v.Allowed {
		t.Fatalf("expected allow, got %+v", v)
	}
}

func TestCheckWrite(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	before := base.Add(-time.Minute)
	after := base.Add(time.Minute)

	cases := []struct {
		name    string
		stamps  Stamps
		allowed bool
	}{
		{name: "read after modify", stamps: Stamps{ModifiedAt: &base, ReadAt: &after}, allowed: true},
		{name: "read equals modify", stamps: Stamps{ModifiedAt: &base, ReadAt: &base}, allowed: true},
		{name: "read before modify", stamps: Stamps{ModifiedAt: &base, ReadAt: &before}, allowed: false},
		{name: "never read", stamps: Stamps{ModifiedAt: &base}, allowed: false},
	}
	g := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := g.CheckWrite(tc.stamps)
			if v.Allowed != tc.allowed {
				t.Fatalf("allowed=%v want %v (reason=%q)", v.Allowed, tc.allowed, v.Reason)
			}
			if !tc.allowed && !strings.Contains(v.Reason, "get_content") {
				t.Fatalf("reason should tell the caller to re-read: %q", v.Reason)
			}
		})
	}
}

func TestNoTwoWritesWithoutRead(t *testing.T) {
	clk := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := WithClock(clk.now)

	s := g.RecordRead(Stamps{})
	if v := g.CheckWrite(s); !v.Allowed {
		t.Fatalf("first write rejected: %s", v.Reason)
	}
	s = g.AfterWrite(s)
	if s.ReadAt != nil || s.ModifiedAt == nil {
		t.Fatalf("AfterWrite stamps = %+v", s)
	}
	if v := g.CheckWrite(s); v.Allowed {
		t.Fatalf("second write without read must be rejected")
	}
	s = g.RecordRead(s)
	if v := g.CheckWrite(s); !v.Allowed {
		t.Fatalf("write after re-read rejected: %s", v.Reason)
	}
}

func TestRejectReasonCarriesBothTimestamps(t *testing.T) {
	mod := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	read := mod.Add(-time.Hour)
	v := New().CheckWrite(Stamps{ModifiedAt: &mod, ReadAt: &read})
	if v.Allowed {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(v.Reason, mod.Format(time.RFC3339Nano)) || !strings.Contains(v.Reason, read.Format(time.RFC3339Nano)) {
		t.Fatalf("reason missing timestamps: %q", v.Reason)
	}
}

func TestResetAndNowPrecision(t *testing.T) {
	g := WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 123456789, time.FixedZone("x", 3600)) })
	now := g.Now()
	if now.Location() != time.UTC || now.Nanosecond() != 123456000 {
		t.Fatalf("Now() = %v, want UTC truncated to microseconds", now)
	}
	if s := g.Reset(); s.ModifiedAt != nil || s.ReadAt != nil {
		t.Fatalf("Reset() = %+v", s)
	}
}
