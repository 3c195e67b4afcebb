package domain

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Entity é a unidade de entrada a ser enriquecida (ex: um IP literal).
// O core nunca altera uma Entity recebida do chamador.
type Entity struct {
	Value       string `json:"value"`
	IsPrivateIP bool   `json:"isPrivateIP"`
}

// Credential identifica o bucket de quota do chamador na API upstream (a API key).
type Credential string

// Fingerprint devolve um identificador estável e não reversível da credencial,
// usado em logs e estatísticas no lugar da chave.
func (c Credential) Fingerprint() string {
	if c == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.HashString(string(c)))
}
