package signals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/ai"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/retry"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

const derivePrompt = "You are an audit analyst. Using ONLY the document content, tables and key-value pairs provided, produce exactly these three sections:\n" +
	"SUMMARY:\n<one short paragraph>\n" +
	"RED FLAGS:\n<one finding per line prefixed with '- ', or the single line 'none'>\n" +
	"HIGHLIGHTS:\n<one item per line prefixed with '- ', or the single line 'none'>\n" +
	"If the provided content is insufficient to judge, write 'insufficient information' as the summary and 'none' in both lists. Never invent figures that are not in the content."

const insufficientMarker = "insufficient information"

// missing required profile fields cost a fixed penalty each
const missingFieldPenalty = 0.15

// Engine turns a canonical extraction into an analysis result: a grounded
// generated summary with red flags and highlights, plus a locally computed
// confidence score.
type Engine struct {
	provider  ai.Provider
	retryOpts retry.Options
	logger    *logger_i.Logger
}

func NewEngine(provider ai.Provider, retryOpts retry.Options) *Engine {
	return &Engine{
		provider:  provider,
		retryOpts: retryOpts,
		logger:    logger_i.NewLogger("SignalEngine"),
	}
}

func (e *Engine) Derive(ctx context.Context, extraction docmodel.CanonicalExtraction) (docmodel.AnalysisResult, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", extraction.DocumentId)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("signal_derivation", time.Since(start)) }()

	deriveCtx, cancel := context.WithTimeout(ctx, config.SignalsCallTimeout)
	defer cancel()

	grounding := buildGrounding(extraction)
	completion, err := retry.Do(deriveCtx, "signal_derivation", e.retryOpts, func(ctx context.Context) (ai.Completion, error) {
		return e.provider.Complete(ctx, derivePrompt, []ai.Message{{Role: docmodel.RoleUser, Content: grounding}})
	})
	if err != nil {
		log.Error("Signal derivation failed", "error", err)
		return docmodel.AnalysisResult{}, err
	}

	summary, redFlags, highlights := parseSections(completion.Text)
	result := docmodel.AnalysisResult{
		DocumentId:      extraction.DocumentId,
		Profile:         extraction.Profile,
		Summary:         summary,
		RedFlags:        redFlags,
		Highlights:      highlights,
		ConfidenceScore: ConfidenceScore(extraction),
		Duration:        time.Since(start),
		CreatedAt:       time.Now(),
	}

	log.Debug("Signals derived", "redFlags", len(result.RedFlags), "confidence", result.ConfidenceScore,
		"promptTokens", completion.PromptTokens, "completionTokens", completion.CompletionTokens)
	return result, nil
}

// buildGrounding serializes the canonical record into the prompt context. The
// completion is constrained to this text, nothing else.
func buildGrounding(extraction docmodel.CanonicalExtraction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DOCUMENT CONTENT (%d pages):\n%s\n", extraction.Pages, extraction.Content)

	if len(extraction.KeyValuePairs) > 0 {
		sb.WriteString("\nKEY-VALUE PAIRS:\n")
		for k, v := range extraction.KeyValuePairs {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}

	for i, table := range extraction.Tables {
		fmt.Fprintf(&sb, "\nTABLE %d (%dx%d):\n", i+1, table.RowCount, table.ColCount)
		row := -1
		for _, cell := range table.Cells {
			if cell.Row != row {
				if row >= 0 {
					sb.WriteString("\n")
				}
				row = cell.Row
			} else {
				sb.WriteString(" | ")
			}
			sb.WriteString(cell.Text)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func parseSections(text string) (summary string, redFlags []string, highlights []string) {
	redFlags = make([]string, 0)
	highlights = make([]string, 0)

	section := ""
	var summaryLines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "SUMMARY:"):
			section = "summary"
			if rest := strings.TrimSpace(trimmed[len("SUMMARY:"):]); rest != "" {
				summaryLines = append(summaryLines, rest)
			}
			continue
		case strings.HasPrefix(upper, "RED FLAGS:"):
			section = "redflags"
			continue
		case strings.HasPrefix(upper, "HIGHLIGHTS:"):
			section = "highlights"
			continue
		}

		if trimmed == "" || strings.EqualFold(trimmed, "none") {
			continue
		}

		switch section {
		case "summary":
			summaryLines = append(summaryLines, trimmed)
		case "redflags":
			redFlags = append(redFlags, strings.TrimPrefix(trimmed, "- "))
		case "highlights":
			highlights = append(highlights, strings.TrimPrefix(trimmed, "- "))
		}
	}

	summary = strings.TrimSpace(strings.Join(summaryLines, " "))
	if summary == "" {
		summary = strings.TrimSpace(text)
	}
	return summary, redFlags, highlights
}

// IsInsufficient reports whether the engine declined to analyze for lack of
// grounding. This is a successful outcome, not a failure.
func IsInsufficient(result docmodel.AnalysisResult) bool {
	return strings.Contains(strings.ToLower(result.Summary), insufficientMarker)
}

// ConfidenceScore combines the mean entity confidence with a penalty per
// missing required profile field, clipped to [0,1]. A record with no entities
// scores 0.5: nothing to judge either way.
func ConfidenceScore(extraction docmodel.CanonicalExtraction) float64 {
	score := 0.5
	if len(extraction.Entities) > 0 {
		sum := 0.0
		for _, e := range extraction.Entities {
			sum += e.Confidence
		}
		score = sum / float64(len(extraction.Entities))
	}

	score -= missingFieldPenalty * float64(missingRequiredFields(extraction))

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func missingRequiredFields(extraction docmodel.CanonicalExtraction) int {
	missing := 0
	switch extraction.Profile {
	case docmodel.ProfileInvoice:
		if extraction.Invoice == nil {
			return 3
		}
		if extraction.Invoice.Vendor == nil {
			missing++
		}
		if extraction.Invoice.Total == nil {
			missing++
		}
		if extraction.Invoice.Number == nil {
			missing++
		}
	case docmodel.ProfileReceipt:
		if extraction.Receipt == nil {
			return 2
		}
		if extraction.Receipt.Merchant == nil {
			missing++
		}
		if extraction.Receipt.Total == nil {
			missing++
		}
	}
	return missing
}
