package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrUpstreamStatus: o corpo da resposta trouxe status diferente de 200.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	// ErrDataIntegrity: o payload violou o contrato (ex: score fora de 0..5).
	ErrDataIntegrity = errors.New("upstream data integrity violation")
)

// RequestError é o erro tipado de uma requisição upstream. Carrega o corpo,
// o status e as opções da requisição para o renderizador de erros do host.
type RequestError struct {
	Message    string
	StatusCode int
	Body       json.RawMessage
	Request    RequestOptions
	Err        error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request error"
}

func (e *RequestError) Unwrap() error { return e.Err }

// ReadableError é a forma serializável de um erro entregue ao host.
type ReadableError struct {
	Detail         string          `json:"detail"`
	Message        string          `json:"message,omitempty"`
	Body           json.RawMessage `json:"body,omitempty"`
	StatusCode     int             `json:"statusCode,omitempty"`
	RequestOptions *RequestOptions `json:"requestOptions,omitempty"`
}

// Readable converte qualquer erro em ReadableError. A API key nos headers da
// requisição é mascarada.
func Readable(err error) ReadableError {
	if err == nil {
		return ReadableError{}
	}
	out := ReadableError{Detail: err.Error()}
	var re *RequestError
	if errors.As(err, &re) {
		if re.Err != nil && re.Message != "" && re.Err.Error() != re.Message {
			out.Message = re.Err.Error()
		}
		out.Body = re.Body
		out.StatusCode = re.StatusCode
		if re.Request.URI != "" {
			opts := re.Request.redacted()
			out.RequestOptions = &opts
		}
	}
	return out
}

func (o RequestOptions) redacted() RequestOptions {
	if len(o.Headers) == 0 {
		return o
	}
	h := make(map[string]string, len(o.Headers))
	for k, v := range o.Headers {
		if strings.EqualFold(k, "x-api-key") && v != "" {
			v = RedactKey(v)
		}
		h[k] = v
	}
	o.Headers = h
	return o
}

// RedactKey mantém só os 4 primeiros caracteres da chave.
func RedactKey(k string) string {
	if len(k) <= 4 {
		return "***"
	}
	return k[:4] + "***"
}
