package docmodel

import "context"

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc UploadedDocument) error
	GetDocument(ctx context.Context, id string) (UploadedDocument, bool)
	// SaveExtraction writes at most once per (document, profile); the first
	// writer wins and later calls report false. Extraction records are
	// immutable once written.
	SaveExtraction(ctx context.Context, extraction CanonicalExtraction) (bool, error)
	GetExtraction(ctx context.Context, documentId string, profile Profile) (CanonicalExtraction, bool)
	SaveAnalysis(ctx context.Context, result AnalysisResult) error
	GetAnalysis(ctx context.Context, documentId string, profile Profile) (AnalysisResult, bool)
}

type ConversationStore interface {
	// NextSeq allocates the next monotonic sequence number for a scope.
	NextSeq(ctx context.Context, scope string) (int64, error)
	AppendTurn(ctx context.Context, turn ConversationTurn) error
	LastTurns(ctx context.Context, scope string, n int) ([]ConversationTurn, error)
	// History pages forward from cursor (empty = start) in append order.
	History(ctx context.Context, scope string, limit int, cursor string) ([]ConversationTurn, string, error)
}
