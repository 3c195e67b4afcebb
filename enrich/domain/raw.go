package domain

import (
	"context"
	"encoding/json"
	"net/url"
)

// SuccessStatus é o sentinela de sucesso no campo "status" do corpo da resposta.
// O status HTTP é sempre 200 nessa API; o resultado lógico vem no corpo.
const SuccessStatus = 200

// RawResponse é o payload upstream. Todas as seções são opcionais: ausência
// resolve para vazio/nil, nunca para panic.
type RawResponse struct {
	Status     int              `json:"status"`
	Message    string           `json:"message,omitempty"`
	Tags       json.RawMessage  `json:"tags,omitempty"`
	Score      *RawScore        `json:"score,omitempty"`
	IPCategory *CategorySection `json:"ip_category,omitempty"`
	// Domain fica cru: a forma varia e a seção é repassada, só data é inspecionado.
	Domain json.RawMessage `json:"domain,omitempty"`
	Port       *PortSection     `json:"port,omitempty"`

	// Metadados da requisição que gerou o payload (não fazem parte do JSON).
	HTTPStatus int             `json:"-"`
	Body       json.RawMessage `json:"-"`
	Request    RequestOptions  `json:"-"`
}

type RawScore struct {
	Inbound  *int `json:"inbound"`
	Outbound *int `json:"outbound"`
}

type CategorySection struct {
	Count *int       `json:"count,omitempty"`
	Data  []Category `json:"data"`
}

// Category é repassada como veio; só detect_source é inspecionado.
type Category map[string]any

// HasEvidence indica se detect_source é uma lista não vazia (ou string não vazia,
// forma que a API também usa).
func (c Category) HasEvidence() bool {
	switch v := c["detect_source"].(type) {
	case []any:
		return len(v) > 0
	case string:
		return v != ""
	default:
		return false
	}
}

type PortSection struct {
	Count *int        `json:"count,omitempty"`
	Data  []PortEntry `json:"data"`
}

type PortEntry struct {
	OpenPortNo *int   `json:"open_port_no"`
	Socket     string `json:"socket,omitempty"`
	AppName    string `json:"app_name,omitempty"`
}

// RequestOptions descreve a requisição enviada upstream, para diagnóstico.
type RequestOptions struct {
	Method  string            `json:"method"`
	URI     string            `json:"uri"`
	Query   url.Values        `json:"qs,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// RemoteCall executa a consulta remota para uma entidade.
type RemoteCall func(ctx context.Context, entity Entity, cred Credential) (*RawResponse, error)
