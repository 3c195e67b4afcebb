package application

import (
	"fmt"

	"ip-enricher/enrich/domain"
)

// MaxScore é o maior score da API (escala inteira 0..5).
const MaxScore = 5

var scoreLabels = [MaxScore + 1]string{
	0: "Safe",
	1: "Safe",
	2: "Low",
	3: "Moderate",
	4: "Dangerous",
	5: "Critical",
}

// HumanizeScore converte o score numérico em rótulo e percentual.
// Valores fora de 0..5 são tratados como violação de contrato do upstream.
func HumanizeScore(score int) (domain.HumanScore, error) {
	if score < 0 || score > MaxScore {
		return domain.HumanScore{}, fmt.Errorf("%w: score %d outside 0..%d", domain.ErrDataIntegrity, score, MaxScore)
	}
	return domain.HumanScore{
		Score:   score,
		Display: scoreLabels[score],
		Percent: float64(score) * 100 / MaxScore,
	}, nil
}
