package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/data/redisStore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisChatStore)
	if inner == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  inner,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func turnsKey(scope string) string { return "turns:" + scope }
func seqKey(scope string) string   { return "turnseq:" + scope }

func (s *RedisConversationStore) NextSeq(ctx context.Context, scope string) (int64, error) {
	return s.store.Incr(ctx, seqKey(scope))
}

func (s *RedisConversationStore) AppendTurn(ctx context.Context, turn docmodel.ConversationTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	return s.store.ListPush(ctx, turnsKey(turn.Scope), data)
}

func (s *RedisConversationStore) LastTurns(ctx context.Context, scope string, n int) ([]docmodel.ConversationTurn, error) {
	raw, err := s.store.ListTail(ctx, turnsKey(scope), int64(n))
	if err != nil {
		return nil, err
	}
	return s.decode(raw), nil
}

func (s *RedisConversationStore) History(ctx context.Context, scope string, limit int, cursor string) ([]docmodel.ConversationTurn, string, error) {
	if limit <= 0 || limit > config.ChatHistoryPageLimit {
		limit = config.ChatHistoryPageLimit
	}
	offset := int64(0)
	if cursor != "" {
		parsed, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil || parsed < 0 {
			return nil, "", docmodel.ErrValidation
		}
		offset = parsed
	}

	raw, err := s.store.ListRange(ctx, turnsKey(scope), offset, offset+int64(limit)-1)
	if err != nil {
		return nil, "", err
	}
	turns := s.decode(raw)

	next := ""
	total, err := s.store.ListLen(ctx, turnsKey(scope))
	if err == nil && offset+int64(len(turns)) < total {
		next = strconv.FormatInt(offset+int64(len(turns)), 10)
	}
	return turns, next, nil
}

func (s *RedisConversationStore) decode(raw []string) []docmodel.ConversationTurn {
	turns := make([]docmodel.ConversationTurn, 0, len(raw))
	for _, entry := range raw {
		var turn docmodel.ConversationTurn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			s.logger.Error("Corrupt conversation turn, skipping", "error", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
