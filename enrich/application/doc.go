// Package application contém os casos de uso do enriquecimento: filtro de
// entidades, normalização da resposta upstream, despacho do lote pelo limiter
// da credencial e o retry de uma única entidade.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Dispatcher.Dispatch(ctx, entities, cred, call) devolve um LookupResult por
// entidade, na mesma ordem da entrada.
package application
