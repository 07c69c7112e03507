// Package model defines the core session and memory data types.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies the author of a session message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is a single role-tagged entry in a session transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Session is a raw conversational session as captured from the platform.
// Immutable once captured; owned by the caller.
type Session struct {
	ID       string            `json:"id"`
	Messages []Message         `json:"messages"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Serialize renders the session as canonical JSON. Redaction and encryption
// always operate on this form so patterns can cross structural boundaries.
func (s *Session) Serialize() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serialize session %s: %w", s.ID, err)
	}
	return b, nil
}

// ParseSession decodes a serialized session.
func ParseSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}
