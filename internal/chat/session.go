package chat

import "github.com/google/uuid"

// Session holds what the user told us during one conversation.
// A new one is created on every reset.
type Session struct {
	ID         uuid.UUID
	RoleQuery  string
	ResumeText string
}

func newSession() *Session {
	return &Session{ID: uuid.New()}
}

func (s *Session) HasRole() bool {
	return s.RoleQuery != ""
}

func (s *Session) HasResume() bool {
	return s.ResumeText != ""
}
