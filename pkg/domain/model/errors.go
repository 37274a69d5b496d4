package model

import "github.com/m-mizutani/goerr/v2"

// Source errors
var (
	ErrSourceUnavailable = goerr.New("source unavailable")
)

// AI completion errors
var (
	ErrRateLimited       = goerr.New("rate limited")
	ErrAuth              = goerr.New("authentication failed")
	ErrTransient         = goerr.New("transient failure")
	ErrMalformedResponse = goerr.New("malformed AI response")
	ErrEvaluation        = goerr.New("evaluation failed")
)

// Store errors
var (
	ErrNotFound          = goerr.New("not found")
	ErrStorageCorruption = goerr.New("storage corrupted")
	ErrSessionFinalized  = goerr.New("session already finalized")
)

// Configuration and orchestration errors
var (
	ErrInvalidWeights     = goerr.New("invalid scoring weights")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrResearchInProgress = goerr.New("research run already in progress")
	ErrNoChannels         = goerr.New("no channel IDs given")
)

// Context keys for error values
const (
	TopicIDKey    = "topic_id"
	SessionIDKey  = "session_id"
	TitleKey      = "title"
	SourceKey     = "source"
	CollectionKey = "collection"
	PathKey       = "path"
	ChannelIDKey  = "channel_id"
)
