package application

import (
	"strings"

	"ip-enricher/enrich/domain"
)

var ignoredIPs = map[string]struct{}{
	"127.0.0.1":       {},
	"0.0.0.0":         {},
	"255.255.255.255": {},
}

// IsEligible decide se a entidade merece uma consulta remota.
//
// IPs privados, o conjunto fixo de ignorados e qualquer valor em 0.0.0.0/8
// ficam de fora; a API responde 400 para 0.x e isso gastaria uma vaga do limiter.
func IsEligible(e domain.Entity) bool {
	if e.IsPrivateIP {
		return false
	}
	if _, ok := ignoredIPs[e.Value]; ok {
		return false
	}
	return !strings.HasPrefix(e.Value, "0.")
}
