package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	// DayLayout formats history keys.
	DayLayout = "2006-01-02"
	// HistoryDays is the number of days rendered as bars.
	HistoryDays = 7
	// MaxBarWidth caps a bar; MinBarWidth marks a day without completions.
	MaxBarWidth = 200
	MinBarWidth = 4

	barUnit = 30
)

// HistoryMap maps a day to the number of completions recorded on it.
type HistoryMap map[string]int

// Bar is one rendered history day.
type Bar struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
	Width int    `json:"width"`
	// Label is empty for a day without completions.
	Label string `json:"label,omitempty"`
}

// BarWidth scales a count to a bar magnitude. Days without completions get
// a minimal marker.
func BarWidth(count int) int {
	if count <= 0 {
		return MinBarWidth
	}
	return min(count*barUnit, MaxBarWidth)
}

// HistoryAggregator holds the latest history snapshot.
type HistoryAggregator struct {
	remote  Remote
	session *Session
	now     func() time.Time

	mu      sync.RWMutex
	history HistoryMap
}

// NewHistoryAggregator returns an aggregator with an empty snapshot.
func NewHistoryAggregator(r Remote, session *Session) *HistoryAggregator {
	return &HistoryAggregator{remote: r, session: session, now: time.Now, history: HistoryMap{}}
}

// Refresh fetches the history and replaces the snapshot wholesale. A
// response that is not a day→count object is discarded.
func (h *HistoryAggregator) Refresh(ctx context.Context) (bool, error) {
	if !h.session.Active() {
		return false, ErrNotAuthenticated
	}
	res := h.remote.Request(ctx, http.MethodGet, "/history", nil)
	if res.Failed() {
		return false, nil
	}
	m, ok := decodeHistory(res.Body)
	if !ok {
		return false, nil
	}

	h.mu.Lock()
	h.history = m
	h.mu.Unlock()
	return true, nil
}

// Snapshot returns a copy of the current map.
func (h *HistoryAggregator) Snapshot() HistoryMap {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(HistoryMap, len(h.history))
	for k, v := range h.history {
		out[k] = v
	}
	return out
}

// Bars renders the last HistoryDays days, today first.
func (h *HistoryAggregator) Bars() []Bar {
	snap := h.Snapshot()
	days := LastDays(h.now(), HistoryDays)
	bars := make([]Bar, 0, len(days))
	for _, d := range days {
		c := snap[d]
		b := Bar{Day: d, Count: c, Width: BarWidth(c)}
		if c > 0 {
			b.Label = strconv.Itoa(c)
		}
		bars = append(bars, b)
	}
	return bars
}

func (h *HistoryAggregator) clear() {
	h.mu.Lock()
	h.history = HistoryMap{}
	h.mu.Unlock()
}

// LastDays returns n UTC calendar days ending at now, most recent first.
func LastDays(now time.Time, n int) []string {
	y, m, d := now.UTC().Date()
	days := make([]string, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, time.Date(y, m, d-i, 0, 0, 0, 0, time.UTC).Format(DayLayout))
	}
	return days
}

func decodeHistory(body []byte) (HistoryMap, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, false
	}
	m := make(HistoryMap, len(raw))
	for day, v := range raw {
		if _, err := time.Parse(DayLayout, day); err != nil {
			return nil, false
		}
		var c int
		if err := json.Unmarshal(v, &c); err != nil || c < 0 {
			return nil, false
		}
		m[day] = c
	}
	return m, true
}
