package usecase

import (
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/service/export"
)

type UseCases struct {
	repo     interfaces.Repository
	sink     *export.Sink
	Topic    *TopicUseCase
	Research *ResearchUseCase
}

type Option func(*UseCases)

// WithResearch enables research runs
func WithResearch(research *ResearchUseCase) Option {
	return func(uc *UseCases) {
		uc.Research = research
	}
}

// WithExportSink replaces the default export destination handler
func WithExportSink(sink *export.Sink) Option {
	return func(uc *UseCases) {
		uc.sink = sink
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Topic = NewTopicUseCase(repo, uc.sink)

	return uc
}
