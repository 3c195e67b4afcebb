package infra

import (
	"sync"

	"ip-enricher/enrich/domain"

	"github.com/zeebo/xxh3"
)

// Registry mantém um limiter por credencial durante toda a vida do processo.
//
// A criação acontece sob o lock do shard, então duas primeiras chamadas
// simultâneas para a mesma credencial recebem o mesmo limiter. Não há expiração:
// a cardinalidade é limitada pela configuração dos operadores.
type Registry struct {
	shards []registryShard

	maxConcurrent int
	queueCapacity int
	poolOpts      []PoolOption
	factory       func(domain.Credential) domain.Limiter
}

type registryShard struct {
	mu      sync.Mutex
	entries map[domain.Credential]domain.Limiter
}

type RegistryOption func(*Registry)

func WithShards(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.shards = make([]registryShard, n)
		}
	}
}

// WithPacing aplica WithPacer a cada limiter criado pelo registry.
func WithPacing(rps float64, burst int) RegistryOption {
	return func(r *Registry) { r.poolOpts = append(r.poolOpts, WithPacer(rps, burst)) }
}

// WithFactory substitui a construção padrão (OverflowPool).
func WithFactory(f func(domain.Credential) domain.Limiter) RegistryOption {
	return func(r *Registry) { r.factory = f }
}

func NewRegistry(maxConcurrent, queueCapacity int, opts ...RegistryOption) *Registry {
	r := &Registry{
		shards:        make([]registryShard, 16),
		maxConcurrent: maxConcurrent,
		queueCapacity: queueCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	for i := range r.shards {
		r.shards[i].entries = make(map[domain.Credential]domain.Limiter)
	}
	if r.factory == nil {
		r.factory = func(domain.Credential) domain.Limiter {
			return NewOverflowPool(r.maxConcurrent, r.queueCapacity, r.poolOpts...)
		}
	}
	return r
}

func (r *Registry) MaxConcurrent() int { return r.maxConcurrent }
func (r *Registry) QueueCapacity() int { return r.queueCapacity }

// Get implementa domain.LimiterRegistry.
func (r *Registry) Get(cred domain.Credential) domain.Limiter {
	shard := &r.shards[r.shardIndex(cred)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if lim, ok := shard.entries[cred]; ok {
		return lim
	}
	lim := r.factory(cred)
	shard.entries[cred] = lim
	return lim
}

// Len devolve quantas credenciais já têm limiter.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

func (r *Registry) shardIndex(cred domain.Credential) int {
	return int(xxh3.HashString(string(cred)) % uint64(len(r.shards)))
}
