package application

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"ip-enricher/enrich/domain"
)

func TestNormalize_Success(t *testing.T) {
	raw := okRaw(3, 5)
	raw.IPCategory = &domain.CategorySection{Data: []domain.Category{
		{"type": "scanner", "detect_source": []any{}},
		{"type": "tor", "detect_source": []any{"a"}},
	}}
	raw.Port = &domain.PortSection{Data: []domain.PortEntry{
		{OpenPortNo: intp(80)}, {OpenPortNo: intp(80)}, {OpenPortNo: intp(443)},
	}}

	data, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSummary := []string{"Inbound Score: 60%", "Outbound Score: 100%"}
	if !reflect.DeepEqual(data.Summary, wantSummary) {
		t.Fatalf("expected summary %v, got %v", wantSummary, data.Summary)
	}
	if data.Details.InboundScore.Display != "Moderate" || data.Details.OutboundScore.Display != "Critical" {
		t.Fatalf("unexpected scores: %+v %+v", data.Details.InboundScore, data.Details.OutboundScore)
	}
	if string(data.Details.Tags) != `{"is_vpn":false}` {
		t.Fatalf("expected tags passthrough, got %s", data.Details.Tags)
	}
	if len(data.Details.IPCategory) != 1 || data.Details.IPCategory[0]["type"] != "tor" {
		t.Fatalf("unexpected categories: %+v", data.Details.IPCategory)
	}
	if len(data.Details.PortSummary) != 2 {
		t.Fatalf("expected 2 ports, got %v", data.Details.PortSummary)
	}
	if data.Details.APILimitReached || data.Details.IsRetry {
		t.Fatalf("unexpected flags: %+v", data.Details)
	}
}

func TestNormalize_ZeroScoreSummary(t *testing.T) {
	data, err := Normalize(okRaw(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Summary[0] != "Inbound Score: 0%" || data.Summary[1] != "Outbound Score: 20%" {
		t.Fatalf("unexpected summary %v", data.Summary)
	}
}

func TestNormalize_StatusErrorUsesBodyMessage(t *testing.T) {
	raw := &domain.RawResponse{
		Status:  401,
		Message: "Invalid API key",
		Body:    []byte(`{"status":401,"message":"Invalid API key"}`),
		Request: domain.RequestOptions{URI: "https://api.example/v1/ip/data"},
	}
	_, err := Normalize(raw)
	if err == nil || err.Error() != "Invalid API key" {
		t.Fatalf("expected body message, got %v", err)
	}
	var re *domain.RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if re.StatusCode != 401 || string(re.Body) != string(raw.Body) || re.Request.URI == "" {
		t.Fatalf("expected body/status/request on error, got %+v", re)
	}
	if !errors.Is(err, domain.ErrUpstreamStatus) {
		t.Fatalf("expected ErrUpstreamStatus")
	}
}

func TestNormalize_StatusErrorGeneratedMessage(t *testing.T) {
	_, err := Normalize(&domain.RawResponse{Status: 500})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected generated message with status, got %v", err)
	}
}

func TestNormalize_MissingScoreIsDataIntegrity(t *testing.T) {
	_, err := Normalize(&domain.RawResponse{Status: 200})
	if !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestNormalize_OutOfRangeScore(t *testing.T) {
	_, err := Normalize(okRaw(2, 9))
	if !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
	if !strings.Contains(err.Error(), "outbound") {
		t.Fatalf("expected error to name the outbound score, got %v", err)
	}
}

type domainOut struct {
	Count        *int              `json:"count"`
	Data         []json.RawMessage `json:"data"`
	Source       string            `json:"source"`
	TotalResults int               `json:"totalResults"`
	IsTruncated  bool              `json:"isTruncated"`
}

func decodeDomain(t *testing.T, b json.RawMessage) domainOut {
	t.Helper()
	var d domainOut
	if err := json.Unmarshal(b, &d); err != nil {
		t.Fatalf("invalid domain section %s: %v", b, err)
	}
	return d
}

func TestNormalize_DomainTruncation(t *testing.T) {
	raw := okRaw(1, 1)
	raw.Domain = domainSection(`"count":300,"source":"pdns"`, 300)
	before := string(raw.Domain)

	data, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := decodeDomain(t, data.Details.Domain)
	if len(d.Data) != 250 {
		t.Fatalf("expected 250 domains, got %d", len(d.Data))
	}
	if d.TotalResults != 300 || !d.IsTruncated {
		t.Fatalf("expected totalResults=300 isTruncated=true, got %d %v", d.TotalResults, d.IsTruncated)
	}
	if d.Source != "pdns" || d.Count == nil || *d.Count != 300 {
		t.Fatalf("expected other keys to pass through, got %+v", d)
	}
	if string(raw.Domain) != before {
		t.Fatalf("raw payload must not be modified")
	}
}

func TestNormalize_DomainShortList(t *testing.T) {
	raw := okRaw(1, 1)
	raw.Domain = domainSection(`"count":3`, 3)
	data, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := decodeDomain(t, data.Details.Domain)
	if len(d.Data) != 3 || d.TotalResults != 3 || !d.IsTruncated {
		t.Fatalf("unexpected domain section %s", data.Details.Domain)
	}
}

func TestNormalize_DomainWithoutListPassesThrough(t *testing.T) {
	for _, section := range []string{
		`{"count":0}`,
		`{"count":0,"data":{}}`,
		`{"count":1,"data":"a.example"}`,
		`{"count":0,"data":null}`,
		`["a.example"]`,
		`"unexpected"`,
	} {
		raw := okRaw(1, 1)
		raw.Domain = json.RawMessage(section)
		data, err := Normalize(raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", section, err)
		}
		if string(data.Details.Domain) != section {
			t.Fatalf("%s: expected passthrough, got %s", section, data.Details.Domain)
		}
	}
}

func TestNormalize_NoDomainSection(t *testing.T) {
	data, err := Normalize(okRaw(1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Details.Domain != nil {
		t.Fatalf("expected no domain section, got %s", data.Details.Domain)
	}
}

func TestNormalize_SuccessAlwaysListsCategoriesAndPorts(t *testing.T) {
	data, err := Normalize(okRaw(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"ip_category":[]`, `"portSummary":[]`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("expected %s in %s", want, b)
		}
	}
}

func TestUniqueCategories(t *testing.T) {
	raw := &domain.RawResponse{IPCategory: &domain.CategorySection{Data: []domain.Category{
		{"detect_source": []any{}},
		{"detect_source": []any{"a"}},
		{"detect_source": "abuseipdb"},
		{"detect_source": ""},
		{"type": "no-source"},
		{"detect_source": []any{"b"}},
	}}}
	got := UniqueCategories(raw)
	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d: %+v", len(got), got)
	}
	if !reflect.DeepEqual(got[0]["detect_source"], []any{"a"}) || !reflect.DeepEqual(got[2]["detect_source"], []any{"b"}) {
		t.Fatalf("expected original order preserved, got %+v", got)
	}
}

func TestUniqueCategories_Absent(t *testing.T) {
	if got := UniqueCategories(&domain.RawResponse{}); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestUniquePorts(t *testing.T) {
	raw := &domain.RawResponse{Port: &domain.PortSection{Data: []domain.PortEntry{
		{OpenPortNo: intp(80)}, {OpenPortNo: intp(80)}, {OpenPortNo: intp(443)}, {},
	}}}
	got := UniquePorts(raw)
	sort.Ints(got)
	if !reflect.DeepEqual(got, []int{80, 443}) {
		t.Fatalf("expected {80,443}, got %v", got)
	}
	if len(UniquePorts(&domain.RawResponse{})) != 0 {
		t.Fatalf("expected empty ports for absent section")
	}
}
