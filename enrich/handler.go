package enrich

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"ip-enricher/enrich/domain"
	"ip-enricher/enrich/infra"
	"ip-enricher/internal/logging"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRequestBytes = 1 << 20

// KeyFunc extrai a credencial da requisição.
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc usa o header configurado e cai para a chave padrão.
func DefaultKeyFunc(keyHeader, defaultKey string) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}
		return defaultKey
	}
}

type HandlerOptions struct {
	Enricher *Enricher
	KeyFn    KeyFunc
	// Stats é opcional; quando presente, GET /v1/stats expõe os contadores.
	Stats  *infra.MemoryStatsStore
	Logger *slog.Logger
}

type lookupRequest struct {
	Entities []domain.Entity `json:"entities"`
}

type retryRequest struct {
	Entity domain.Entity `json:"entity"`
}

type statsResponse struct {
	Total infra.Counters            `json:"total"`
	ByKey map[string]infra.Counters `json:"byKey,omitempty"`
}

// Handler monta as rotas do host:
//
//	POST /v1/lookup  {"entities":[...]} -> []LookupResult
//	POST /v1/retry   {"entity":{...}}   -> {summary, details}
//	GET  /v1/stats                     -> contadores em memória
func Handler(opts HandlerOptions) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc("X-Api-Key", "")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/lookup", func(w http.ResponseWriter, r *http.Request) {
		var req lookupRequest
		if !decodeBody(w, r, &req) {
			return
		}
		results, err := opts.Enricher.Lookup(r.Context(), req.Entities, Options{APIKey: opts.KeyFn(r)})
		if err != nil {
			writeError(w, opts.Logger, "lookup", err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	})
	mux.HandleFunc("POST /v1/retry", func(w http.ResponseWriter, r *http.Request) {
		var req retryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		data, err := opts.Enricher.Retry(r.Context(), req.Entity, Options{APIKey: opts.KeyFn(r)})
		if err != nil {
			writeError(w, opts.Logger, "retry", err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	})
	mux.HandleFunc("GET /v1/stats", func(w http.ResponseWriter, r *http.Request) {
		if opts.Stats == nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{Total: opts.Stats.Total(), ByKey: opts.Stats.ByKey()})
	})
	return mux
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ReadableError{Detail: "failed to read request body"})
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ReadableError{Detail: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, ErrMissingAPIKey) {
		status = http.StatusUnauthorized
	}
	readable := domain.Readable(err)
	log.Error("error in "+op, "error", readable.Detail, "statusCode", readable.StatusCode)
	writeJSON(w, status, readable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
