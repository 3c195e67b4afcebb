package criminalip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ip-enricher/enrich/domain"
	"ip-enricher/internal/logging"
)

func init() { logging.DiscardLogging() }

const okBody = `{
  "status": 200,
  "tags": {"is_vpn": false, "is_tor": true},
  "score": {"inbound": 4, "outbound": 2},
  "ip_category": {"count": 2, "data": [
    {"type": "tor", "detect_source": ["torproject"]},
    {"type": "scanner", "detect_source": []}
  ]},
  "domain": {"count": 1, "data": [{"domain": "a.example"}]},
  "port": {"count": 2, "data": [{"open_port_no": 22, "socket": "tcp"}, {"open_port_no": 22, "socket": "udp"}]}
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestFetch_SendsQueryAndKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ip/data" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ip"); got != "8.8.8.8" {
			t.Errorf("expected ip=8.8.8.8, got %q", got)
		}
		if got := r.URL.Query().Get("full"); got != "true" {
			t.Errorf("expected full=true, got %q", got)
		}
		if got := r.Header.Get("x-api-key"); got != "secret" {
			t.Errorf("expected x-api-key header, got %q", got)
		}
		_, _ = w.Write([]byte(okBody))
	})

	raw, err := c.Fetch(context.Background(), domain.Entity{Value: "8.8.8.8"}, "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Status != 200 || raw.HTTPStatus != 200 {
		t.Fatalf("unexpected status %d/%d", raw.Status, raw.HTTPStatus)
	}
	if raw.Score == nil || *raw.Score.Inbound != 4 || *raw.Score.Outbound != 2 {
		t.Fatalf("unexpected score %+v", raw.Score)
	}
	if len(raw.IPCategory.Data) != 2 || !raw.IPCategory.Data[0].HasEvidence() || raw.IPCategory.Data[1].HasEvidence() {
		t.Fatalf("unexpected categories %+v", raw.IPCategory.Data)
	}
	if len(raw.Port.Data) != 2 || *raw.Port.Data[0].OpenPortNo != 22 {
		t.Fatalf("unexpected ports %+v", raw.Port.Data)
	}
	if !strings.Contains(string(raw.Domain), `"a.example"`) {
		t.Fatalf("unexpected domains %s", raw.Domain)
	}
	if raw.Request.Headers["x-api-key"] != "secret" || raw.Request.Query.Get("ip") != "8.8.8.8" {
		t.Fatalf("expected request options to be recorded, got %+v", raw.Request)
	}
	if len(raw.Body) == 0 {
		t.Fatalf("expected raw body to be kept")
	}
}

func TestFetch_DomainDataNotAList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"score":{"inbound":1,"outbound":1},"domain":{"count":0,"data":{}}}`))
	})
	raw, err := c.Fetch(context.Background(), domain.Entity{Value: "1.2.3.4"}, "k")
	if err != nil {
		t.Fatalf("unexpected shape in domain must not fail the decode, got %v", err)
	}
	if string(raw.Domain) != `{"count":0,"data":{}}` {
		t.Fatalf("expected raw domain section, got %s", raw.Domain)
	}
}

func TestFetch_BodyStatusIsPassedThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 400, "message": "invalid ip address"}`))
	})
	raw, err := c.Fetch(context.Background(), domain.Entity{Value: "1.2.3.4"}, "k")
	if err != nil {
		t.Fatalf("transport-level success must not error, got %v", err)
	}
	if raw.Status != 400 || raw.Message != "invalid ip address" {
		t.Fatalf("unexpected raw %+v", raw)
	}
}

func TestFetch_HTTPErrorWithoutBodyStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{}`))
	})
	raw, err := c.Fetch(context.Background(), domain.Entity{Value: "1.2.3.4"}, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected HTTP status promoted into body status, got %d", raw.Status)
	}
}

func TestFetch_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	})
	_, err := c.Fetch(context.Background(), domain.Entity{Value: "1.2.3.4"}, "k")
	var re *domain.RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError, got %T %v", err, err)
	}
	if re.StatusCode != http.StatusOK || re.Request.URI == "" {
		t.Fatalf("expected status and request options, got %+v", re)
	}
	if !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity")
	}
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = c.Fetch(context.Background(), domain.Entity{Value: "1.2.3.4"}, "secret-key")
	var re *domain.RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError, got %T %v", err, err)
	}
	if !strings.Contains(re.Error(), "request to CriminalIP API failed") {
		t.Fatalf("unexpected message %q", re.Error())
	}
	readable := domain.Readable(err)
	if readable.RequestOptions == nil || readable.RequestOptions.Headers["x-api-key"] == "secret-key" {
		t.Fatalf("expected redacted request options, got %+v", readable.RequestOptions)
	}
}

func TestNewClient_InvalidProxy(t *testing.T) {
	if _, err := NewClient(Options{ProxyURL: "://bad"}); err == nil {
		t.Fatalf("expected error for invalid proxy url")
	}
}
