package application

import (
	"context"

	"ip-enricher/enrich/domain"
)

// Retry consulta uma única entidade sob demanda e marca o resultado como retry.
func (d *Dispatcher) Retry(ctx context.Context, entity domain.Entity, cred domain.Credential, call domain.RemoteCall) (*domain.Data, error) {
	results, err := d.Dispatch(ctx, []domain.Entity{entity}, cred, call)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].Data == nil {
		return domain.NoResultsData(), nil
	}
	data := results[0].Data
	data.Details.IsRetry = true
	return data, nil
}
