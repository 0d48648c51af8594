package core

import "github.com/google/uuid"

// SessionID tags the log lines of one viewer session.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Short is enough to tell sessions apart in a terminal.
func (id SessionID) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}
