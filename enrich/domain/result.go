package domain

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	SummarySearchLimitReached = "Search Limit Reached"
	SummaryNoResultsFound     = "No Results Found"
)

// LookupResult é a saída por entidade. Data nil significa entidade não elegível.
type LookupResult struct {
	Entity Entity `json:"entity"`
	Data   *Data  `json:"data"`
}

// Data é o par summary/details entregue à camada de apresentação.
type Data struct {
	Summary []string `json:"summary"`
	Details Details  `json:"details"`
}

// Details cobre as três formas de resultado: sucesso, overflow e retry sem resultado.
type Details struct {
	Tags          json.RawMessage `json:"tags,omitempty"`
	InboundScore  *HumanScore     `json:"inboundScore,omitempty"`
	OutboundScore *HumanScore     `json:"outboundScore,omitempty"`
	IPCategory    []Category      `json:"ip_category,omitempty"`
	Domain        json.RawMessage `json:"domain,omitempty"`
	PortSummary   []int           `json:"portSummary,omitempty"`

	APILimitReached bool `json:"apiLimitReached,omitempty"`
	NoResultsFound  bool `json:"noResultsFound,omitempty"`
	IsRetry         bool `json:"isRetry,omitempty"`
}

// successDetails é a forma de um resultado normalizado: ip_category e
// portSummary saem sempre como lista, mesmo vazia.
type successDetails struct {
	Tags          json.RawMessage `json:"tags,omitempty"`
	InboundScore  *HumanScore     `json:"inboundScore"`
	OutboundScore *HumanScore     `json:"outboundScore"`
	IPCategory    []Category      `json:"ip_category"`
	Domain        json.RawMessage `json:"domain,omitempty"`
	PortSummary   []int           `json:"portSummary"`
	IsRetry       bool            `json:"isRetry,omitempty"`
}

// MarshalJSON mantém overflow e "sem resultado" enxutos e fixa a forma do sucesso.
func (d Details) MarshalJSON() ([]byte, error) {
	type plain Details
	if d.InboundScore == nil && d.OutboundScore == nil {
		return codec.Marshal(plain(d))
	}
	out := successDetails{
		Tags:          d.Tags,
		InboundScore:  d.InboundScore,
		OutboundScore: d.OutboundScore,
		IPCategory:    d.IPCategory,
		Domain:        d.Domain,
		PortSummary:   d.PortSummary,
		IsRetry:       d.IsRetry,
	}
	if out.IPCategory == nil {
		out.IPCategory = []Category{}
	}
	if out.PortSummary == nil {
		out.PortSummary = []int{}
	}
	return codec.Marshal(out)
}

// HumanScore é um score 0..5 convertido em rótulo e percentual.
type HumanScore struct {
	Score   int     `json:"score"`
	Display string  `json:"display"`
	Percent float64 `json:"percent"`
}

// OverflowData é o placeholder devolvido quando o limiter da credencial está cheio.
func OverflowData() *Data {
	return &Data{
		Summary: []string{SummarySearchLimitReached},
		Details: Details{APILimitReached: true},
	}
}

// NoResultsData é devolvido pelo retry quando a entidade não gera consulta.
func NoResultsData() *Data {
	return &Data{
		Summary: []string{SummaryNoResultsFound},
		Details: Details{NoResultsFound: true, IsRetry: true},
	}
}
