// Package input lê listas de IPs para o CLI.
package input

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"

	"ip-enricher/enrich/domain"
)

// ReadEntities lê IPs de um arquivo (ou stdin se filename == "") e devolve
// entidades sem repetição, na ordem da primeira aparição.
func ReadEntities(filename string) ([]domain.Entity, error) {
	if filename == "" {
		stat, _ := os.Stdin.Stat()
		if stat != nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, fmt.Errorf("no input provided: supply -file or pipe IPs to stdin")
		}
		return Parse(os.Stdin)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse aceita um IP por linha ou listas separadas por vírgula, ponto e vírgula,
// tab ou espaço. Tokens que não são IP são ignorados.
func Parse(r io.Reader) ([]domain.Entity, error) {
	seen := make(map[string]struct{})
	var out []domain.Entity

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == '\t' || r == ' '
		})
		for _, p := range parts {
			ip := strings.TrimSpace(p)
			if net.ParseIP(ip) == nil {
				continue
			}
			if _, ok := seen[ip]; ok {
				continue
			}
			seen[ip] = struct{}{}
			out = append(out, domain.Entity{Value: ip, IsPrivateIP: IsPrivateIP(ip)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// IsPrivateIP cobre RFC1918, ULA e link-local. Loopback e 0.0.0.0 ficam a cargo
// do filtro de elegibilidade.
func IsPrivateIP(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	return addr.IsPrivate() || addr.IsLinkLocalUnicast()
}
