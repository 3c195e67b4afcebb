// Servidor falso da API Criminal IP para validar o enricher na mão.
//
// Responde /v1/ip/data com atraso configurável, o que permite saturar o
// limiter de uma credencial e ver o "Search Limit Reached" aparecer:
//
//	go run ./teste-validacao/criminalip-fake -delay 2s
//	CRIMINALIP_BASE_URL=http://localhost:8081 go run ./cmd/enricher
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	addr := flag.String("addr", ":8081", "endereço de escuta")
	delay := flag.Duration("delay", time.Second, "latência simulada por consulta")
	key := flag.String("key", "", "se definido, exige este x-api-key")
	flag.Parse()

	http.HandleFunc("GET /v1/ip/data", func(w http.ResponseWriter, r *http.Request) {
		ip := r.URL.Query().Get("ip")
		fmt.Printf("Log: consulta para %s (key=%t)\n", ip, r.Header.Get("x-api-key") != "")

		select {
		case <-time.After(*delay):
		case <-r.Context().Done():
			return
		}

		w.Header().Set("Content-Type", "application/json")
		// a API real responde HTTP 200 também nos erros; o status vai no corpo
		if *key != "" && r.Header.Get("x-api-key") != *key {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 401, "message": "Invalid API key"})
			return
		}
		_ = json.NewEncoder(w).Encode(fakeData(ip))
	})

	fmt.Printf("Servidor falso da Criminal IP rodando em http://localhost%s\n", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}

// fakeData gera uma resposta estável por IP (mesmo IP, mesmos scores).
func fakeData(ip string) map[string]any {
	h := crc32.ChecksumIEEE([]byte(ip))
	domains := make([]map[string]any, int(h%400))
	for i := range domains {
		domains[i] = map[string]any{"domain": fmt.Sprintf("host%d.example", i)}
	}
	return map[string]any{
		"status": 200,
		"tags":   map[string]any{"is_vpn": h%2 == 0, "is_tor": h%7 == 0},
		"score":  map[string]any{"inbound": int(h % 6), "outbound": int((h >> 8) % 6)},
		"ip_category": map[string]any{
			"count": 2,
			"data": []map[string]any{
				{"type": "scanner", "detect_source": []string{"honeypot"}},
				{"type": "hosting", "detect_source": []string{}},
			},
		},
		"domain": map[string]any{"count": len(domains), "data": domains},
		"port": map[string]any{
			"count": 3,
			"data": []map[string]any{
				{"open_port_no": 80, "socket": "tcp"},
				{"open_port_no": 443, "socket": "tcp"},
				{"open_port_no": 80, "socket": "tcp"},
			},
		},
	}
}
