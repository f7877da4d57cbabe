// Package service wires the business services and their eino components.
package service

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/hearthside/hearthside-ai/internal/config"
	"github.com/hearthside/hearthside-ai/internal/repository"
	"github.com/hearthside/hearthside-ai/internal/service/assistant"
	"github.com/hearthside/hearthside-ai/internal/service/project"
	"github.com/hearthside/hearthside-ai/internal/service/search"
)

// Services aggregates the business services.
type Services struct {
	Assistant *assistant.Service
	Project   *project.Service

	Config *config.Config
}

// NewServices creates all services. Model and search construction failures
// degrade the affected features rather than failing startup.
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	ctx := context.Background()

	// nil the interfaces on failure so the downstream nil checks hold even
	// if a constructor ever returns a typed nil alongside its error
	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		log.Printf("Warning: failed to create chat model: %v", err)
		chatModel = nil
	}

	toolModel, err := newToolCallingChatModel(ctx, cfg)
	if err != nil {
		log.Printf("Warning: failed to create tool-calling chat model: %v", err)
		toolModel = nil
	}

	maxResults := cfg.Search.MaxResults
	if maxResults <= 0 || maxResults > search.MaxResults {
		maxResults = search.MaxResults
	}
	// the adapter over-fetches to survive dedup and filtering
	searchProvider := search.NewDuckDuckGoProvider(ctx, maxResults*2)
	searchAdapter := search.NewAdapter(chatModel, searchProvider)

	projectSvc := project.NewService(repo)
	assistantSvc := assistant.NewService(repo.Chat, projectSvc, chatModel, toolModel, searchAdapter, redisClient)

	return &Services{
		Assistant: assistantSvc,
		Project:   projectSvc,
		Config:    cfg,
	}, nil
}
