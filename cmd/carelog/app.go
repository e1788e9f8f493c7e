package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hyperengineering/carelog/internal/artifact"
	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/config"
	"github.com/hyperengineering/carelog/internal/embedding"
	"github.com/hyperengineering/carelog/internal/journal"
	"github.com/hyperengineering/carelog/internal/store"
)

// app holds the long-lived components shared by the server and the
// subcommands.
type app struct {
	store   *store.SQLiteStore
	journal *journal.Service
	// local is set when images are kept on disk and served by the API.
	local *artifact.LocalStorage
}

// loadConfig reads --config when given, otherwise the default locations.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// newApp opens the database and wires the journal to its collaborators.
func newApp(cfg *config.Config) (*app, error) {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	images, err := artifact.New(cfg.Storage)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("image storage: %w", err)
	}

	client := openai.NewClient(option.WithAPIKey(cfg.AI.APIKey))
	ai := assistant.NewOpenAI(client, assistant.Models{
		Chat:          cfg.AI.ChatModel,
		FollowUp:      cfg.AI.FollowUpModel,
		Transcription: cfg.AI.TranscriptionModel,
		Image:         cfg.AI.ImageModel,
		ImageSize:     cfg.AI.ImageSize,
		Speech:        cfg.AI.SpeechModel,
		Voice:         cfg.AI.Voice,
		MaxKeywords:   cfg.AI.MaxKeywords,
	})

	a := &app{
		store: st,
		journal: journal.New(journal.Deps{
			Store:       st,
			Embedder:    embedding.NewOpenAI(client, cfg.AI.EmbeddingModel, cfg.AI.EmbeddingDimensions),
			Writer:      ai,
			Illustrator: ai,
			Transcriber: ai,
			Speaker:     ai,
			Artifacts:   images,
			Timeout:     time.Duration(cfg.AI.Timeout),
			Concurrency: cfg.AI.MaxConcurrency,
			MaxKeywords: cfg.AI.MaxKeywords,
			Logger:      slog.Default(),
		}),
	}
	if local, ok := images.(*artifact.LocalStorage); ok {
		a.local = local
	}
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
