package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"ip-enricher/enrich/domain"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxDomains limita quantos domínios seguem para a camada de apresentação.
const MaxDomains = 250

// Normalize transforma o payload upstream no par summary/details.
//
// O sucesso lógico vem no campo status do corpo (200), não no status HTTP.
func Normalize(raw *domain.RawResponse) (*domain.Data, error) {
	if raw == nil {
		return nil, &domain.RequestError{
			Message: "empty response received from CriminalIP API",
			Err:     domain.ErrDataIntegrity,
		}
	}
	if raw.Status != domain.SuccessStatus {
		msg := raw.Message
		if msg == "" {
			msg = fmt.Sprintf("Unexpected status code %d received when making request to CriminalIP API", raw.Status)
		}
		return nil, &domain.RequestError{
			Message:    msg,
			StatusCode: raw.Status,
			Body:       raw.Body,
			Request:    raw.Request,
			Err:        domain.ErrUpstreamStatus,
		}
	}

	inbound, outbound, err := humanizeScores(raw.Score)
	if err != nil {
		return nil, &domain.RequestError{
			Message:    err.Error(),
			StatusCode: raw.Status,
			Body:       raw.Body,
			Request:    raw.Request,
			Err:        err,
		}
	}

	return &domain.Data{
		Summary: []string{
			"Inbound Score: " + formatFloat(inbound.Percent) + "%",
			"Outbound Score: " + formatFloat(outbound.Percent) + "%",
		},
		Details: domain.Details{
			Tags:          raw.Tags,
			InboundScore:  &inbound,
			OutboundScore: &outbound,
			IPCategory:    UniqueCategories(raw),
			Domain:        truncateDomains(raw.Domain),
			PortSummary:   UniquePorts(raw),
		},
	}, nil
}

func humanizeScores(s *domain.RawScore) (domain.HumanScore, domain.HumanScore, error) {
	if s == nil || s.Inbound == nil || s.Outbound == nil {
		return domain.HumanScore{}, domain.HumanScore{}, fmt.Errorf("%w: missing inbound/outbound score", domain.ErrDataIntegrity)
	}
	in, err := HumanizeScore(*s.Inbound)
	if err != nil {
		return domain.HumanScore{}, domain.HumanScore{}, fmt.Errorf("inbound: %w", err)
	}
	out, err := HumanizeScore(*s.Outbound)
	if err != nil {
		return domain.HumanScore{}, domain.HumanScore{}, fmt.Errorf("outbound: %w", err)
	}
	return in, out, nil
}

// truncateDomains corta domain.data em MaxDomains quando data é uma lista e
// anota totalResults/isTruncated. Qualquer outra forma segue como veio. O
// payload original não é alterado.
func truncateDomains(section json.RawMessage) json.RawMessage {
	if len(section) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := codec.Unmarshal(section, &fields); err != nil || fields == nil {
		return section
	}
	list := bytes.TrimSpace(fields["data"])
	if len(list) == 0 || list[0] != '[' {
		return section
	}
	var items []json.RawMessage
	if err := codec.Unmarshal(list, &items); err != nil {
		return section
	}

	total := len(items)
	if total > MaxDomains {
		items = items[:MaxDomains]
	}
	data, err := codec.Marshal(items)
	if err != nil {
		return section
	}
	fields["data"] = data
	fields["totalResults"] = json.RawMessage(strconv.Itoa(total))
	fields["isTruncated"] = json.RawMessage("true")

	out, err := codec.Marshal(fields)
	if err != nil {
		return section
	}
	return out
}

// UniqueCategories mantém apenas categorias com alguma fonte de detecção,
// preservando a ordem original. Não deduplica por identidade.
func UniqueCategories(raw *domain.RawResponse) []domain.Category {
	if raw == nil || raw.IPCategory == nil {
		return []domain.Category{}
	}
	out := make([]domain.Category, 0, len(raw.IPCategory.Data))
	for _, c := range raw.IPCategory.Data {
		if c.HasEvidence() {
			out = append(out, c)
		}
	}
	return out
}

// UniquePorts devolve as portas abertas sem repetição (ordem da primeira aparição).
func UniquePorts(raw *domain.RawResponse) []int {
	if raw == nil || raw.Port == nil {
		return []int{}
	}
	seen := make(map[int]struct{}, len(raw.Port.Data))
	out := make([]int, 0, len(raw.Port.Data))
	for _, p := range raw.Port.Data {
		if p.OpenPortNo == nil {
			continue
		}
		if _, ok := seen[*p.OpenPortNo]; ok {
			continue
		}
		seen[*p.OpenPortNo] = struct{}{}
		out = append(out, *p.OpenPortNo)
	}
	return out
}
