package tracker

import (
	"context"
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestBarWidth(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, MinBarWidth},
		{1, 30},
		{3, 90},
		{6, 180},
		{7, 200},
		{50, 200},
	}
	for _, tc := range tests {
		if got := BarWidth(tc.count); got != tc.want {
			t.Errorf("BarWidth(%d) = %d, want %d", tc.count, got, tc.want)
		}
	}
}

func TestLastDays(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)
	want := []string{"2026-03-02", "2026-03-01", "2026-02-28", "2026-02-27"}
	if got := LastDays(now, 4); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLastDays_UsesUTC(t *testing.T) {
	// 09:00 on the 19th at UTC+14 is still the 18th in UTC.
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.FixedZone("UTC+14", 14*60*60))
	want := []string{"2026-10-18", "2026-10-17"}
	if got := LastDays(now, 2); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	f, c := authed()
	h := NewHistoryAggregator(f, c.Session())
	ctx := context.Background()

	f.on(http.MethodGet, "/history", 200, `{"2026-10-17":2,"2026-10-18":1}`)
	if ok, err := h.Refresh(ctx); !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	f.on(http.MethodGet, "/history", 200, `{"2026-10-18":3}`)
	h.Refresh(ctx)

	want := HistoryMap{"2026-10-18": 3}
	if got := h.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRefresh_DiscardsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[1,2]`},
		{"null", `null`},
		{"negative count", `{"2026-10-18":-1}`},
		{"fractional count", `{"2026-10-18":1.5}`},
		{"bad key", `{"yesterday":1}`},
		{"partially bad", `{"2026-10-18":4,"2026-10-17":"x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, c := authed()
			h := NewHistoryAggregator(f, c.Session())
			f.on(http.MethodGet, "/history", 200, `{"2026-10-18":2}`)
			h.Refresh(context.Background())

			f.on(http.MethodGet, "/history", 200, tc.body)
			if ok, _ := h.Refresh(context.Background()); ok {
				t.Fatal("expected discard")
			}
			if got := h.Snapshot(); !reflect.DeepEqual(got, HistoryMap{"2026-10-18": 2}) {
				t.Fatalf("snapshot changed: %v", got)
			}
		})
	}
}

func TestBars(t *testing.T) {
	f, c := authed()
	h := NewHistoryAggregator(f, c.Session())
	h.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	f.on(http.MethodGet, "/history", 200, `{"2026-10-18":3,"2026-10-16":10,"2026-10-01":5}`)
	h.Refresh(context.Background())

	bars := h.Bars()
	if len(bars) != HistoryDays {
		t.Fatalf("expected %d bars, got %d", HistoryDays, len(bars))
	}
	if bars[0].Day != "2026-10-18" || bars[6].Day != "2026-10-12" {
		t.Fatalf("unexpected range %s..%s", bars[0].Day, bars[6].Day)
	}
	if b := bars[0]; b.Count != 3 || b.Width != 90 || b.Label != "3" {
		t.Fatalf("today bar = %+v", b)
	}
	if b := bars[1]; b.Count != 0 || b.Width != MinBarWidth || b.Label != "" {
		t.Fatalf("empty bar = %+v", b)
	}
	if b := bars[2]; b.Width != MaxBarWidth || b.Label != "10" {
		t.Fatalf("capped bar = %+v", b)
	}
}
