package infra

import (
	"context"
	"sync"

	"ip-enricher/enrich/domain"

	"golang.org/x/time/rate"
)

const (
	DefaultMaxConcurrent = 1
	DefaultQueueCapacity = 15
)

// OverflowPool roda no máximo maxConcurrent tarefas ao mesmo tempo e mantém até
// queueCapacity tarefas esperando. Uma submissão além disso recebe Overflowed na
// hora, sem esperar.
type OverflowPool struct {
	sem chan struct{}

	mu            sync.Mutex
	queued        int
	queueCapacity int

	pacer *rate.Limiter
}

type PoolOption func(*OverflowPool)

// WithPacer espaça as chamadas admitidas com um token bucket (x/time/rate).
// rps <= 0 desliga o pacing.
func WithPacer(rps float64, burst int) PoolOption {
	return func(p *OverflowPool) {
		if rps <= 0 {
			p.pacer = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		p.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewOverflowPool(maxConcurrent, queueCapacity int, opts ...PoolOption) *OverflowPool {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if queueCapacity < 0 {
		queueCapacity = 0
	}
	p := &OverflowPool{
		sem:           make(chan struct{}, maxConcurrent),
		queueCapacity: queueCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OverflowPool) MaxConcurrent() int { return cap(p.sem) }
func (p *OverflowPool) QueueCapacity() int { return p.queueCapacity }
func (p *OverflowPool) Running() int       { return len(p.sem) }

func (p *OverflowPool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queued
}

// Reserve implementa domain.Limiter. Não bloqueia: pega a vaga livre (se ninguém
// estiver esperando), entra na fila ou devolve Overflowed.
func (p *OverflowPool) Reserve() (domain.Ticket, domain.Admission) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queued == 0 {
		select {
		case p.sem <- struct{}{}:
			return &poolTicket{pool: p, holding: true}, domain.Admitted
		default:
		}
	}
	if p.queued >= p.queueCapacity {
		return nil, domain.Overflowed
	}
	p.queued++
	return &poolTicket{pool: p}, domain.Admitted
}

// Submit reserva e roda na mesma chamada.
func (p *OverflowPool) Submit(ctx context.Context, task func(ctx context.Context) error) (domain.Admission, error) {
	t, adm := p.Reserve()
	if adm == domain.Overflowed {
		return adm, nil
	}
	return adm, t.Run(ctx, task)
}

// poolTicket já segura a vaga (holding) ou ocupa um lugar na fila.
type poolTicket struct {
	pool    *OverflowPool
	holding bool
}

// Run espera a vaga quando o ticket veio da fila. Com o ctx encerrado antes
// disso, o lugar na fila é devolvido e a tarefa não roda.
func (t *poolTicket) Run(ctx context.Context, task func(ctx context.Context) error) error {
	p := t.pool
	if !t.holding {
		select {
		case p.sem <- struct{}{}:
			p.dequeue()
		case <-ctx.Done():
			p.dequeue()
			return ctx.Err()
		}
		t.holding = true
	}
	defer p.release()

	if p.pacer != nil {
		if err := p.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return task(ctx)
}

func (p *OverflowPool) dequeue() {
	p.mu.Lock()
	p.queued--
	p.mu.Unlock()
}

func (p *OverflowPool) release() { <-p.sem }
