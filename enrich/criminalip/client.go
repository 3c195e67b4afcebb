// Package criminalip implementa a chamada remota (domain.RemoteCall) contra a
// API de IP data da Criminal IP.
package criminalip

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ip-enricher/enrich/domain"
	"ip-enricher/internal/logging"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
)

const (
	DefaultBaseURL = "https://api.criminalip.io"
	ipDataPath     = "/v1/ip/data"
	apiKeyHeader   = "x-api-key"

	// corpo "full" pode trazer milhares de domínios
	maxBodyBytes = 32 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	hc      httpDoer
	logger  *slog.Logger
}

type Options struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	ProxyURL           string
	Logger             *slog.Logger
}

// NewClient monta o cliente com um http.Client próprio (timeout, TLS, proxy).
func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   4,
	}
	if opts.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opção explícita do operador
	}
	if opts.ProxyURL != "" {
		u, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		tr.Proxy = http.ProxyURL(u)
	}
	return newClient(opts.BaseURL, &http.Client{Timeout: opts.Timeout, Transport: tr}, opts.Logger), nil
}

func newClient(baseURL string, hc httpDoer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.Logger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
		logger:  logger,
	}
}

// Fetch implementa domain.RemoteCall.
//
// A API responde HTTP 200 mesmo em erro; o status lógico fica no corpo e é
// avaliado pelo normalizador. Aqui só viram erro falhas de transporte/decodificação.
func (c *Client) Fetch(ctx context.Context, entity domain.Entity, cred domain.Credential) (*domain.RawResponse, error) {
	qs := url.Values{}
	qs.Set("ip", entity.Value)
	qs.Set("full", "true")
	opts := domain.RequestOptions{
		Method:  http.MethodGet,
		URI:     c.baseURL + ipDataPath,
		Query:   qs,
		Headers: map[string]string{apiKeyHeader: string(cred)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URI+"?"+qs.Encode(), nil)
	if err != nil {
		return nil, &domain.RequestError{Message: "failed to build CriminalIP request", Request: opts, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, string(cred))

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &domain.RequestError{
			Message: fmt.Sprintf("request to CriminalIP API failed: %v", err),
			Request: opts,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.RequestError{
			Message:    fmt.Sprintf("failed to read CriminalIP response: %v", err),
			StatusCode: resp.StatusCode,
			Request:    opts,
			Err:        err,
		}
	}

	c.logger.Debug("lookup response body",
		"entity", entity.Value,
		"httpStatus", resp.StatusCode,
		"size", humanize.Bytes(uint64(len(body))),
	)

	raw := &domain.RawResponse{}
	if err := json.Unmarshal(body, raw); err != nil {
		return nil, &domain.RequestError{
			Message:    fmt.Sprintf("failed to parse CriminalIP response (HTTP %d): %v", resp.StatusCode, err),
			StatusCode: resp.StatusCode,
			Body:       rawBody(body),
			Request:    opts,
			Err:        fmt.Errorf("%w: %v", domain.ErrDataIntegrity, err),
		}
	}
	raw.HTTPStatus = resp.StatusCode
	raw.Body = rawBody(body)
	raw.Request = opts
	if raw.Status == 0 && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		raw.Status = resp.StatusCode
	}
	return raw, nil
}

// rawBody só guarda o corpo se ele for JSON válido (é reemitido como RawMessage).
func rawBody(b []byte) []byte {
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return b
}
