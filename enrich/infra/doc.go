// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - OverflowPool: semáforo com fila limitada que descarta o excedente (overflow)
//   - Registry: um OverflowPool por credencial, com shards por hash xxh3
//   - MemoryStatsStore / RedisStatsStore: contadores de desfecho por lote
package infra
