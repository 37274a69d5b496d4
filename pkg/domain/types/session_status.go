package types

import "fmt"

// SessionStatus is the lifecycle state of a research session
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	// SessionDegraded marks a finished run where some sources or candidates failed
	SessionDegraded SessionStatus = "degraded"
	// SessionAborted marks a run stopped by a run-level error
	SessionAborted SessionStatus = "aborted"
)

// IsValid checks if the session status is valid
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionRunning,
		SessionCompleted,
		SessionDegraded,
		SessionAborted:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the session can no longer change
func (s SessionStatus) IsFinal() bool {
	return s.IsValid() && s != SessionRunning
}

func (s SessionStatus) String() string {
	return string(s)
}

// ParseSessionStatus parses a string into a SessionStatus
func ParseSessionStatus(s string) (SessionStatus, error) {
	status := SessionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid session status: %s", s)
	}
	return status, nil
}
