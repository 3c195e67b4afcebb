package infra

import (
	"context"
	"sync"

	"ip-enricher/enrich/domain"
)

type Counters struct {
	OK       int64 `json:"ok"`
	Skipped  int64 `json:"skipped"`
	Overflow int64 `json:"overflow"`
	Error    int64 `json:"error"`
}

func (c *Counters) add(o domain.Outcome) {
	switch o {
	case domain.OutcomeOK:
		c.OK++
	case domain.OutcomeSkipped:
		c.Skipped++
	case domain.OutcomeOverflow:
		c.Overflow++
	case domain.OutcomeError:
		c.Error++
	}
}

// Total soma todos os desfechos.
func (c Counters) Total() int64 { return c.OK + c.Skipped + c.Overflow + c.Error }

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes, desenvolvimento e para o endpoint /v1/stats.
//
// Não faz expiração.
type MemoryStatsStore struct {
	mu    sync.Mutex
	total Counters
	byKey map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byKey: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Outcome)
	if s.trackKeys && ev.Key != "" {
		k := s.byKey[ev.Key]
		k.add(ev.Outcome)
		s.byKey[ev.Key] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
