package application

import (
	"encoding/json"
	"fmt"

	"ip-enricher/enrich/domain"
)

func intp(v int) *int { return &v }

func okRaw(inbound, outbound int) *domain.RawResponse {
	return &domain.RawResponse{
		Status: domain.SuccessStatus,
		Tags:   json.RawMessage(`{"is_vpn":false}`),
		Score:  &domain.RawScore{Inbound: intp(inbound), Outbound: intp(outbound)},
	}
}

func domainEntries(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(fmt.Sprintf(`{"domain":"d%d.example"}`, i))
	}
	return out
}

// domainSection monta {<extra>,"data":[n domínios]}.
func domainSection(extra string, n int) json.RawMessage {
	items, _ := json.Marshal(domainEntries(n))
	return json.RawMessage(fmt.Sprintf(`{%s,"data":%s}`, extra, items))
}
