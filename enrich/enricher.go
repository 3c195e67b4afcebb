package enrich

import (
	"context"
	"errors"

	"ip-enricher/enrich/application"
	"ip-enricher/enrich/domain"
)

// ErrMissingAPIKey: nenhuma credencial foi informada nem configurada.
var ErrMissingAPIKey = errors.New("missing api key")

// Options são as opções por chamada que o host repassa.
type Options struct {
	APIKey string `json:"apiKey"`
}

// Enricher liga o dispatcher à chamada remota concreta.
type Enricher struct {
	Dispatcher *application.Dispatcher
	Call       domain.RemoteCall
}

func (e *Enricher) Lookup(ctx context.Context, entities []domain.Entity, opts Options) ([]domain.LookupResult, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return e.Dispatcher.Dispatch(ctx, entities, domain.Credential(opts.APIKey), e.Call)
}

func (e *Enricher) Retry(ctx context.Context, entity domain.Entity, opts Options) (*domain.Data, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return e.Dispatcher.Retry(ctx, entity, domain.Credential(opts.APIKey), e.Call)
}
