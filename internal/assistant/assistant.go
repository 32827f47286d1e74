package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/ai"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/retry"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/search"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

type stage string

const (
	stageIdle               stage = "Idle"
	stageAwaitingRetrieval  stage = "AwaitingRetrieval"
	stageAwaitingGeneration stage = "AwaitingGeneration"
)

// Assistant answers questions about a scope's documents. Turns within one
// scope are strictly serialized so sequence numbers reflect actual order.
type Assistant struct {
	provider  ai.Provider
	turns     docmodel.ConversationStore
	index     search.Index
	retryOpts retry.Options
	logger    *logger_i.Logger

	scopeMutex sync.Mutex
	scopeLocks map[string]*sync.Mutex
}

func New(provider ai.Provider, turns docmodel.ConversationStore, index search.Index) *Assistant {
	return &Assistant{
		provider:   provider,
		turns:      turns,
		index:      index,
		retryOpts:  retry.DefaultOptions(),
		logger:     logger_i.NewLogger("Assistant"),
		scopeLocks: make(map[string]*sync.Mutex),
	}
}

func (a *Assistant) lockScope(scope string) *sync.Mutex {
	a.scopeMutex.Lock()
	defer a.scopeMutex.Unlock()
	m, ok := a.scopeLocks[scope]
	if !ok {
		m = new(sync.Mutex)
		a.scopeLocks[scope] = m
	}
	return m
}

// Ask records the user's turn, grounds an answer in the scope's indexed
// documents and records the assistant's turn. Generation failures still
// produce a recorded fallback turn so the transcript never dangles on a
// user message.
func (a *Assistant) Ask(ctx context.Context, scope string, question string) (docmodel.ConversationTurn, error) {
	if strings.TrimSpace(question) == "" {
		return docmodel.ConversationTurn{}, fmt.Errorf("%w: empty question", docmodel.ErrValidation)
	}
	if scope == "" {
		return docmodel.ConversationTurn{}, fmt.Errorf("%w: missing scope", docmodel.ErrValidation)
	}

	lock := a.lockScope(scope)
	lock.Lock()
	defer lock.Unlock()

	log := a.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "scope", scope)
	log.Debug("Ask", "stage", stageIdle)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("assistant_turn", time.Since(start)) }()

	userSeq, err := a.turns.NextSeq(ctx, scope)
	if err != nil {
		return docmodel.ConversationTurn{}, err
	}
	userTurn := docmodel.ConversationTurn{
		Scope:     scope,
		Seq:       userSeq,
		Role:      docmodel.RoleUser,
		Content:   question,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.turns.AppendTurn(ctx, userTurn); err != nil {
		return docmodel.ConversationTurn{}, err
	}

	log.Debug("Ask", "stage", stageAwaitingRetrieval)
	history, err := a.turns.LastTurns(ctx, scope, config.ChatHistoryWindow)
	if err != nil {
		log.Error("Failed to load history window, continuing without it", "error", err)
		history = nil
	}

	grounding, contextDocIds := a.retrieve(ctx, log, scope, question)

	log.Debug("Ask", "stage", stageAwaitingGeneration)
	answer, err := a.generate(ctx, grounding, history, userSeq, question)
	if err != nil {
		log.Error("Generation failed, recording fallback turn", "error", err)
		answer = config.AssistantFallbackText
		contextDocIds = []string{}
	}

	assistantSeq, err := a.turns.NextSeq(ctx, scope)
	if err != nil {
		return docmodel.ConversationTurn{}, err
	}
	assistantTurn := docmodel.ConversationTurn{
		Scope:         scope,
		Seq:           assistantSeq,
		Role:          docmodel.RoleAssistant,
		Content:       answer,
		ContextDocIds: contextDocIds,
		CreatedAt:     time.Now().UTC(),
	}
	if err := a.turns.AppendTurn(ctx, assistantTurn); err != nil {
		return docmodel.ConversationTurn{}, err
	}

	log.Debug("Ask", "stage", stageIdle)
	return assistantTurn, nil
}

// History pages the scope's transcript in append order.
func (a *Assistant) History(ctx context.Context, scope string, limit int, cursor string) ([]docmodel.ConversationTurn, string, error) {
	if scope == "" {
		return nil, "", fmt.Errorf("%w: missing scope", docmodel.ErrValidation)
	}
	return a.turns.History(ctx, scope, limit, cursor)
}

// retrieve is best effort. A broken index degrades the answer, it does not
// fail the turn.
func (a *Assistant) retrieve(ctx context.Context, log *logger_i.Logger, scope, question string) ([]search.Result, []string) {
	if a.index == nil {
		return nil, []string{}
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("assistant_retrieval", time.Since(start)) }()

	results, err := a.index.Search(ctx, scope, question, config.ChatGroundingLimit)
	if err != nil {
		log.Error("Retrieval failed, answering without grounding", "error", err)
		return nil, []string{}
	}

	docIds := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if !seen[r.DocumentId] {
			seen[r.DocumentId] = true
			docIds = append(docIds, r.DocumentId)
		}
	}
	return results, docIds
}

func (a *Assistant) generate(ctx context.Context, grounding []search.Result, history []docmodel.ConversationTurn, userSeq int64, question string) (string, error) {
	messages := make([]ai.Message, 0, len(history)+1)
	for _, turn := range history {
		// The just-appended user turn closes the window; the question
		// goes in as the final message below.
		if turn.Seq == userSeq {
			continue
		}
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.Message{Role: docmodel.RoleUser, Content: buildPrompt(grounding, question)})

	completion, err := retry.Do(ctx, "assistant_generation", a.retryOpts, func(ctx context.Context) (ai.Completion, error) {
		return a.provider.Complete(ctx, config.AssistantInstruction, messages)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(completion.Text), nil
}

func buildPrompt(grounding []search.Result, question string) string {
	if len(grounding) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString("Context from the engagement's documents:\n")
	for _, r := range grounding {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", r.Name, r.Snippet)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
