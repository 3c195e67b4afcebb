package domain

import (
	"context"
	"time"
)

// Outcome classifica o resultado de uma entidade dentro de um lote.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeOverflow Outcome = "overflow"
	OutcomeError    Outcome = "error"
)

// StatsEvent representa o desfecho de uma entidade.
//
// Key é o fingerprint da credencial, nunca a chave em si.
type StatsEvent struct {
	Key     string
	Outcome Outcome
	At      time.Time
}

// StatsStore é a estratégia de persistência das estatísticas.
// O dispatcher trata erro como best-effort (não derruba o lote).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
