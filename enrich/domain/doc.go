// Package domain define contratos e tipos de domínio do enriquecimento de IPs.
//
// Este pacote não depende de net/http nem de implementações concretas
// (limiter, stats, cliente HTTP). As camadas application e infra dependem dele,
// nunca o contrário.
package domain
