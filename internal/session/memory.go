package session

import (
	"sync"
	"time"

	"datasoph/internal/models"
)

// MemoryStore keeps all session context in process memory. Each user entry
// carries its own mutex so same-user register/append races serialize without
// blocking other users.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*userState
	historyCap int
}

type userState struct {
	mu    sync.Mutex
	file  *FileContext
	turns []models.ChatTurn
}

// NewMemoryStore creates a store with the given history cap (DefaultHistoryCap
// when cap <= 0).
func NewMemoryStore(historyCap int) *MemoryStore {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &MemoryStore{
		users:      make(map[string]*userState),
		historyCap: historyCap,
	}
}

func (s *MemoryStore) user(id string) *userState {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if ok {
		return u
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok = s.users[id]; ok {
		return u
	}
	u = &userState{}
	s.users[id] = u
	return u
}

func (s *MemoryStore) Register(userID string, file models.UploadedFile, result models.ExtractionResult) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.file = &FileContext{File: file, Result: result}
}

func (s *MemoryStore) Latest(userID string) *FileContext {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.file == nil {
		return nil
	}
	fc := *u.file
	return &fc
}

func (s *MemoryStore) AppendTurn(userID string, role models.Role, content string) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.turns = append(u.turns, models.ChatTurn{Role: role, Content: content, CreatedAt: time.Now().UTC()})
	if len(u.turns) > s.historyCap {
		u.turns = append([]models.ChatTurn(nil), u.turns[len(u.turns)-s.historyCap:]...)
	}
}

func (s *MemoryStore) RecentTurns(userID string, n int) []models.ChatTurn {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	turns := u.turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return append([]models.ChatTurn(nil), turns...)
}

func (s *MemoryStore) Reset(userID string) (int, int) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	files := 0
	if u.file != nil {
		files = 1
	}
	turns := len(u.turns)
	u.file = nil
	u.turns = nil
	return files, turns
}
