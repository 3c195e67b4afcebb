// Package enrich expõe o enriquecimento de IPs para o host: a fachada Enricher
// (Lookup/Retry) e adapters HTTP (net/http).
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (filtro, normalização, despacho, retry) sem net/http
//   - infra: implementações concretas (overflow pool, registry por credencial, stats)
//   - criminalip: chamada remota para a API da Criminal IP
//   - enrich (este pacote): fachada + handlers HTTP + extração da credencial
//
// Fluxo de um lote:
//
//  1. Extrai a credencial (header X-Api-Key ou a chave padrão configurada)
//  2. Resolve o limiter da credencial no registry
//  3. Submete uma tarefa por entidade elegível; overflow vira "Search Limit Reached"
//  4. Devolve os resultados na ordem de entrada ou o erro legível do lote
package enrich
