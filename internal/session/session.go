package session

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SeedInstruction opens every new session: reply in Chinese, in detail.
const SeedInstruction = "请在接下来的对话中请使用中文回复，并且内容尽可能详细。"

// Turn is one message of a conversation
type Turn struct {
	Role    string
	Content string
}

// GetSession appends a user turn to the session and returns the full history.
// An unknown or expired id starts a new session seeded with SeedInstruction.
func (s *Store) GetSession(id, message string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.get(id)
	if ok {
		turns = append(cloneTurns(turns), Turn{Role: RoleUser, Content: message})
	} else {
		turns = []Turn{
			{Role: RoleSystem, Content: SeedInstruction},
			{Role: RoleUser, Content: message},
		}
	}
	s.set(id, turns)

	return cloneTurns(turns)
}

// SaveSession records the assistant reply. Unknown ids are ignored.
func (s *Store) SaveSession(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.get(id)
	if !ok {
		return
	}
	turns = append(cloneTurns(turns), Turn{Role: RoleAssistant, Content: message})
	s.set(id, turns)
}

// ClearSession drops the session if present
func (s *Store) ClearSession(id string) {
	s.Delete(id)
}
