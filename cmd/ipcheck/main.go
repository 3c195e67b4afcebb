package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ip-enricher/enrich"
	"ip-enricher/enrich/application"
	"ip-enricher/enrich/criminalip"
	"ip-enricher/enrich/domain"
	"ip-enricher/enrich/infra"
	"ip-enricher/internal/config"
	"ip-enricher/internal/input"
	"ip-enricher/internal/logging"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
)

func main() {
	file := flag.String("file", "", "path to file with IPs (one per line). If empty, reads from stdin")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "error: CRIMINALIP_API_KEY is not set")
		os.Exit(1)
	}
	log := logging.Setup(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	entities, err := input.ReadEntities(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read IPs:", err)
		os.Exit(1)
	}
	if len(entities) == 0 {
		fmt.Fprintln(os.Stderr, "no valid IPs found")
		os.Exit(1)
	}

	client, err := criminalip.NewClient(criminalip.Options{
		BaseURL:            cfg.Upstream.BaseURL,
		Timeout:            cfg.Upstream.Timeout,
		InsecureSkipVerify: cfg.Upstream.InsecureSkipVerify,
		ProxyURL:           cfg.Upstream.ProxyURL,
		Logger:             log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	// o CLI espera a fila inteira: um lote de N entidades nunca deve transbordar
	queue := len(entities)
	if cfg.Limiter.QueueCapacity > queue {
		queue = cfg.Limiter.QueueCapacity
	}
	stats := infra.NewMemoryStatsStore()
	enricher := &enrich.Enricher{
		Dispatcher: &application.Dispatcher{
			Registry: infra.NewRegistry(cfg.Limiter.MaxConcurrent, queue, infra.WithPacing(cfg.Limiter.PacingRPS, cfg.Limiter.PacingBurst)),
			Stats:    stats,
			Logger:   log,
		},
		Call: client.Fetch,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "[*] Processing %s IPs\n", humanize.Comma(int64(len(entities))))
	results, err := enricher.Lookup(ctx, entities, enrich.Options{APIKey: cfg.APIKey})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(results); err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(1)
	}

	t := stats.Total()
	fmt.Fprintf(os.Stderr, "[*] Done: %s enriched, %s skipped, %s limited\n",
		humanize.Comma(t.OK), humanize.Comma(t.Skipped), humanize.Comma(t.Overflow))
}

func printError(err error) {
	b, mErr := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(domain.Readable(err), "", "  ")
	if mErr != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Fprintln(os.Stderr, string(b))
}
