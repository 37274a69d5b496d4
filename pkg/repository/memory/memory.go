package memory

import (
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the other backends
type Repository = Memory

// Memory keeps topics and sessions in process memory. Nothing survives a restart.
type Memory struct {
	topic   *topicRepository
	session *sessionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		topic:   newTopicRepository(),
		session: newSessionRepository(),
	}
}

func (m *Memory) Topic() interfaces.TopicRepository {
	return m.topic
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Close() error {
	return nil
}
