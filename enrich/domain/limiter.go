package domain

import "context"

// Admission é o desfecho da reserva de uma tarefa em um Limiter.
type Admission int

const (
	// Admitted: a tarefa ganhou vaga ou lugar na fila.
	Admitted Admission = iota
	// Overflowed: a fila estava cheia; a tarefa não roda.
	Overflowed
)

func (a Admission) String() string {
	switch a {
	case Admitted:
		return "admitted"
	case Overflowed:
		return "overflowed"
	default:
		return "unknown"
	}
}

// Limiter controla a execução de chamadas remotas de uma credencial.
//
// Reserve decide a admissão na hora, sem bloquear: ou devolve um Ticket (vaga de
// execução ou lugar na fila) ou Overflowed. Quem chama Reserve em sequência
// garante que a ordem de admissão é a ordem das chamadas.
type Limiter interface {
	Reserve() (Ticket, Admission)
}

// Ticket é uma admissão já garantida. Run espera a vez (se estiver na fila) e
// roda a tarefa, devolvendo o erro dela. Deve ser chamado exatamente uma vez.
type Ticket interface {
	Run(ctx context.Context, task func(ctx context.Context) error) error
}

// LimiterRegistry obtém o limiter de uma credencial, criando-o no primeiro uso.
type LimiterRegistry interface {
	Get(Credential) Limiter
}
