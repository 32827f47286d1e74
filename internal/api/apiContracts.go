package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status   string            `json:"status"`
	Step     string            `json:"step,omitempty"`
	Document *DocumentResponse `json:"document,omitempty"`
	Analysis *AnalysisResponse `json:"analysis,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	Id          string    `json:"id" example:"4f3a2b"`
	Scope       string    `json:"scope" example:"engagement-7"`
	Name        string    `json:"name" example:"invoice-march.pdf"`
	ContentType string    `json:"content_type" example:"application/pdf"`
	Size        int64     `json:"size" example:"48211"`
	Status      string    `json:"status" example:"uploaded"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type AnalysisResponse struct {
	DocumentId      string   `json:"document_id"`
	Profile         string   `json:"profile" example:"invoice"`
	Summary         string   `json:"summary"`
	RedFlags        []string `json:"red_flags"`
	Highlights      []string `json:"highlights"`
	ConfidenceScore float64  `json:"confidence_score" example:"0.85"`
}

type SearchResult struct {
	DocumentId string  `json:"document_id"`
	Name       string  `json:"name"`
	Scope      string  `json:"scope"`
	Snippet    string  `json:"snippet"`
	Score      float32 `json:"score"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

type ChatTurn struct {
	Seq           int64     `json:"seq"`
	Role          string    `json:"role" example:"assistant"`
	Content       string    `json:"content"`
	ContextDocIds []string  `json:"context_doc_ids,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ChatResponse struct {
	Scope string   `json:"scope"`
	Turn  ChatTurn `json:"turn"`
}

type ChatHistoryResponse struct {
	Scope      string     `json:"scope"`
	Turns      []ChatTurn `json:"turns"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// requests---------------------

type ChatRequest struct {
	Scope   string `json:"scope" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type AnalyzeDocumentRequest struct {
	Profile string `json:"profile,omitempty" example:"invoice"`
}
