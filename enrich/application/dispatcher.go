package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ip-enricher/enrich/domain"
	"ip-enricher/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Dispatcher executa um lote de consultas pelo limiter da credencial.
//
// Ele não sabe nada sobre HTTP; recebe a chamada remota como RemoteCall.
type Dispatcher struct {
	Registry domain.LimiterRegistry
	Stats    domain.StatsStore
	Logger   *slog.Logger
	Now      func() time.Time
}

// Dispatch devolve um LookupResult por entidade, na ordem da entrada.
//
// Entidades não elegíveis e overflow do limiter viram resultados; qualquer outro
// erro aborta o lote inteiro (o primeiro erro vence, sem resultados parciais).
func (d *Dispatcher) Dispatch(ctx context.Context, entities []domain.Entity, cred domain.Credential, call domain.RemoteCall) ([]domain.LookupResult, error) {
	if d.Registry == nil {
		return nil, errors.New("dispatcher: nil limiter registry")
	}
	if call == nil {
		return nil, errors.New("dispatcher: nil remote call")
	}

	log := d.logger().With("credential", cred.Fingerprint())
	log.Debug("lookup batch", "entities", len(entities))

	lim := d.Registry.Get(cred)
	if lim == nil {
		return nil, fmt.Errorf("dispatcher: no limiter for credential %s", cred.Fingerprint())
	}

	results := make([]domain.LookupResult, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	for i, ent := range entities {
		results[i].Entity = ent
		if !IsEligible(ent) {
			d.record(ctx, cred, domain.OutcomeSkipped)
			continue
		}
		// admissão decidida aqui, na ordem da entrada: só a cauda do lote transborda
		ticket, adm := lim.Reserve()
		if adm == domain.Overflowed {
			log.Debug("limiter overflow", "entity", ent.Value)
			results[i].Data = domain.OverflowData()
			d.record(ctx, cred, domain.OutcomeOverflow)
			continue
		}
		g.Go(func() error {
			data, err := d.run(gctx, ticket, ent, cred, call)
			if err != nil {
				// irmãs canceladas pelo primeiro erro não contam como erro próprio
				if !(errors.Is(err, context.Canceled) && gctx.Err() != nil) {
					d.record(ctx, cred, domain.OutcomeError)
				}
				return err
			}
			d.record(ctx, cred, domain.OutcomeOK)
			results[i].Data = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("lookup batch failed", "entities", len(entities), "error", err)
		return nil, err
	}
	return results, nil
}

func (d *Dispatcher) run(ctx context.Context, ticket domain.Ticket, ent domain.Entity, cred domain.Credential, call domain.RemoteCall) (*domain.Data, error) {
	var data *domain.Data
	err := ticket.Run(ctx, func(ctx context.Context) error {
		raw, err := call(ctx, ent, cred)
		if err != nil {
			return err
		}
		data, err = Normalize(raw)
		return err
	})
	return data, err
}

func (d *Dispatcher) record(ctx context.Context, cred domain.Credential, outcome domain.Outcome) {
	if d.Stats == nil {
		return
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	// best-effort: estatística nunca derruba o lote
	err := d.Stats.Record(context.WithoutCancel(ctx), domain.StatsEvent{
		Key:     cred.Fingerprint(),
		Outcome: outcome,
		At:      now(),
	})
	if err != nil {
		d.logger().Warn("stats record failed", "error", err)
	}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Logger()
}
