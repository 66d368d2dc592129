package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsSnapshot is the JSON body of GET /api/stats. Counters are process
// lifetime totals.
type StatsSnapshot struct {
	ScrapesTotal      uint64            `json:"scrapes_total"`
	AIFallbacks       uint64            `json:"ai_fallbacks"`
	AICalls           uint64            `json:"ai_calls"`
	ChatReplies       uint64            `json:"chat_replies"`
	Applications      uint64            `json:"applications"`
	ErrorsTotal       uint64            `json:"errors_total"`
	ScrapeSecondsAvg  float64           `json:"scrape_seconds_avg"`
	StrategyWins      map[string]uint64 `json:"strategy_wins,omitempty"`
	AICallsByOp       map[string]uint64 `json:"ai_calls_by_op,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

// labeled counts events per label. An empty label counts as "unknown".
type labeled struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func (l *labeled) inc(label string) {
	if label == "" {
		label = "unknown"
	}
	l.mu.Lock()
	if l.counts == nil {
		l.counts = make(map[string]uint64)
	}
	l.counts[label]++
	l.mu.Unlock()
}

func (l *labeled) snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// mean tracks a running average of durations.
type mean struct {
	n     atomic.Uint64
	total atomic.Int64
}

func (m *mean) observe(d time.Duration) {
	m.n.Add(1)
	m.total.Add(int64(d))
}

func (m *mean) seconds() float64 {
	n := m.n.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.total.Load()).Seconds() / float64(n)
}

var (
	scrapes      atomic.Uint64
	aiFallbacks  atomic.Uint64
	aiCalls      atomic.Uint64
	chatReplies  atomic.Uint64
	applications atomic.Uint64
	errorsTotal  atomic.Uint64

	scrapeTime mean

	strategyWins      labeled
	aiCallsByOp       labeled
	errorsByType      labeled
	errorsByComponent labeled
)

func IncScrape() { scrapes.Add(1) }
func IncAIFallback() { aiFallbacks.Add(1) }
func IncChatReply() { chatReplies.Add(1) }
func IncApplication() { applications.Add(1) }

// IncStrategyWin records the method that produced an accepted job.
func IncStrategyWin(method string) {
	strategyWins.inc(method)
}

func IncAICall(op string) {
	aiCalls.Add(1)
	aiCallsByOp.inc(op)
}

// ObserveScrapeDuration ignores non-positive samples.
func ObserveScrapeDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	scrapeTime.observe(time.Duration(seconds * float64(time.Second)))
}

func IncError(errType, component string) {
	errorsTotal.Add(1)
	errorsByType.inc(errType)
	errorsByComponent.inc(component)
}

func Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ScrapesTotal:      scrapes.Load(),
		AIFallbacks:       aiFallbacks.Load(),
		AICalls:           aiCalls.Load(),
		ChatReplies:       chatReplies.Load(),
		Applications:      applications.Load(),
		ErrorsTotal:       errorsTotal.Load(),
		ScrapeSecondsAvg:  scrapeTime.seconds(),
		StrategyWins:      strategyWins.snapshot(),
		AICallsByOp:       aiCallsByOp.snapshot(),
		ErrorsByType:      errorsByType.snapshot(),
		ErrorsByComponent: errorsByComponent.snapshot(),
	}
}
