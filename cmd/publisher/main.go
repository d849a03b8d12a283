// Command publisher feeds simulated heart rate samples to the transport heartlive listens on.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lmittmann/tint"

	"github.com/heartlive/models"
	"github.com/heartlive/source"
)

func main() {
	cfg, err := models.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	var (
		kind     = flag.String("source", cfg.Source, "transport: nats, mqtt, kafka or amqp")
		interval = flag.Duration("interval", cfg.SimInterval, "time between samples")
		hr       = flag.Float64("hr", cfg.SimBaseBPM, "resting heart rate bpm")
		count    = flag.Int("n", 0, "samples to send, 0 for unlimited")
	)
	flag.Parse()
	cfg.Source = *kind

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly}))

	pub, err := source.NewPublisher(cfg)
	if err != nil {
		log.Error("failed to connect publisher", "source", cfg.Source, "err", err)
		os.Exit(1)
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := source.NewSimulator(*interval, *hr, uint64(time.Now().UnixNano()))
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("publisher stopping", "sent", sent)
			return
		case now := <-ticker.C:
			s := source.Sample{BPM: sim.Next(), Timestamp: now}
			if err := pub.Publish(ctx, s); err != nil {
				log.Warn("failed to publish sample", "err", err)
				continue
			}
			sent++
			log.Debug("sample published", "bpm", s.BPM)
			if *count > 0 && sent >= *count {
				log.Info("publisher done", "sent", sent)
				return
			}
		}
	}
}
