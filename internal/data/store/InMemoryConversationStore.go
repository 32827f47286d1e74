package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

type InMemoryConversationStore struct {
	mutex *sync.RWMutex
	seqs  map[string]int64
	turns map[string][]docmodel.ConversationTurn
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		mutex: new(sync.RWMutex),
		seqs:  make(map[string]int64),
		turns: make(map[string][]docmodel.ConversationTurn),
	}
}

func (store *InMemoryConversationStore) NextSeq(ctx context.Context, scope string) (int64, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.seqs[scope]++
	return store.seqs[scope], nil
}

func (store *InMemoryConversationStore) AppendTurn(ctx context.Context, turn docmodel.ConversationTurn) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.turns[turn.Scope] = append(store.turns[turn.Scope], turn)
	return nil
}

func (store *InMemoryConversationStore) LastTurns(ctx context.Context, scope string, n int) ([]docmodel.ConversationTurn, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	all := store.turns[scope]
	start := len(all) - n
	if start < 0 {
		start = 0
	}
	out := make([]docmodel.ConversationTurn, len(all)-start)
	copy(out, all[start:])
	return out, nil
}

func (store *InMemoryConversationStore) History(ctx context.Context, scope string, limit int, cursor string) ([]docmodel.ConversationTurn, string, error) {
	if limit <= 0 || limit > config.ChatHistoryPageLimit {
		limit = config.ChatHistoryPageLimit
	}
	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", docmodel.ErrValidation
		}
		offset = parsed
	}

	store.mutex.RLock()
	defer store.mutex.RUnlock()
	all := store.turns[scope]
	if offset >= len(all) {
		return []docmodel.ConversationTurn{}, "", nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]docmodel.ConversationTurn, end-offset)
	copy(out, all[offset:end])

	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return out, next, nil
}
