package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"datasoph/internal/models"
	"datasoph/internal/redis"
)

const redisKeyPrefix = "datasoph:session:"

// RedisStore is the distributed backing-store variant of Store: one JSON blob
// per user key. Read-modify-write cycles on the same user are serialized with
// a process-local keyed mutex, which matches the single-process deployment
// this service targets.
type RedisStore struct {
	client     *redis.Client
	historyCap int
	ttl        time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type sessionBlob struct {
	File  *FileContext      `json:"file,omitempty"`
	Turns []models.ChatTurn `json:"turns,omitempty"`
}

// NewRedisStore wraps the shared redis client. A zero ttl keeps sessions until
// reset.
func NewRedisStore(client *redis.Client, historyCap int, ttl time.Duration) *RedisStore {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &RedisStore{
		client:     client,
		historyCap: historyCap,
		ttl:        ttl,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *RedisStore) userLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *RedisStore) load(ctx context.Context, userID string) sessionBlob {
	var blob sessionBlob
	raw, err := s.client.Get(ctx, redisKeyPrefix+userID)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			log.Printf("session load %s: %v", userID, err)
		}
		return blob
	}
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		log.Printf("session decode %s: %v", userID, err)
	}
	return blob
}

func (s *RedisStore) save(ctx context.Context, userID string, blob sessionBlob) {
	data, err := json.Marshal(blob)
	if err != nil {
		log.Printf("session encode %s: %v", userID, err)
		return
	}
	if err := s.client.Set(ctx, redisKeyPrefix+userID, string(data), s.ttl); err != nil {
		log.Printf("session save %s: %v", userID, err)
	}
}

func (s *RedisStore) withBlob(userID string, fn func(*sessionBlob)) sessionBlob {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	blob := s.load(ctx, userID)
	if fn != nil {
		fn(&blob)
		s.save(ctx, userID, blob)
	}
	return blob
}

func (s *RedisStore) Register(userID string, file models.UploadedFile, result models.ExtractionResult) {
	s.withBlob(userID, func(b *sessionBlob) {
		b.File = &FileContext{File: file, Result: result}
	})
}

func (s *RedisStore) Latest(userID string) *FileContext {
	blob := s.withBlob(userID, nil)
	return blob.File
}

func (s *RedisStore) AppendTurn(userID string, role models.Role, content string) {
	s.withBlob(userID, func(b *sessionBlob) {
		b.Turns = append(b.Turns, models.ChatTurn{Role: role, Content: content, CreatedAt: time.Now().UTC()})
		if len(b.Turns) > s.historyCap {
			b.Turns = b.Turns[len(b.Turns)-s.historyCap:]
		}
	})
}

func (s *RedisStore) RecentTurns(userID string, n int) []models.ChatTurn {
	blob := s.withBlob(userID, nil)
	turns := blob.Turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns
}

func (s *RedisStore) Reset(userID string) (int, int) {
	var files, turns int
	s.withBlob(userID, func(b *sessionBlob) {
		if b.File != nil {
			files = 1
		}
		turns = len(b.Turns)
		b.File = nil
		b.Turns = nil
	})
	return files, turns
}
