package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"sellmaster/internal/config"
	"sellmaster/internal/events"
	"sellmaster/internal/logger"
	syncsvc "sellmaster/internal/sync"
)

// runTimeout bounds one sync run end to end.
const runTimeout = 10 * time.Minute

type Worker struct {
	config  *config.Config
	logger  *logger.Logger
	reader  *kafka.Reader
	service *syncsvc.Service
}

func New(cfg *config.Config, logger *logger.Logger, service *syncsvc.Service) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "sellmaster-worker",
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:  cfg,
		logger:  logger,
		reader:  reader,
		service: service,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for sync events...")

	for {
		message, err := w.reader.ReadMessage(context.Background())
		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var event events.SyncEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := w.process(event); err != nil {
			w.logger.Error("Failed to process %s event %s: %v", event.Type, event.ID, err)
			continue
		}

		w.logger.Debug("Event %s processed", event.ID)
	}
}

func (w *Worker) process(event events.SyncEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	switch event.Type {
	case events.TypeFetchEbay:
		listings, err := w.service.FetchListings(ctx, event.SessionID, event.EbayStore, event.Limit)
		if err != nil {
			return err
		}
		w.logger.Info("fetched %d listings for store %s", len(listings), event.EbayStore)
		return nil

	case events.TypeFullSync:
		run, err := w.service.Run(ctx, event.RunID, event.SessionID, event.EbayStore, event.ShopifyStore, event.Limit)
		if err != nil {
			return err
		}
		w.logger.Info("sync run %s completed with status %s", run.ID, run.Status)
		return nil

	default:
		w.logger.Debug("Unhandled event type: %s", event.Type)
		return nil
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
