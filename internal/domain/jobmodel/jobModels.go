package jobmodel

import (
	"context"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

type JobStatus string
type InternalStatus string
type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	IngestStoring    InternalStatus = "IngestStoring"
	AnalyzeInit      InternalStatus = "AnalyzeInit"
	AnalyzeExtract   InternalStatus = "Extraction"
	AnalyzeSignals   InternalStatus = "DerivedSignals"
	AnalyzeIndexing  InternalStatus = "Indexing"
	Error            InternalStatus = "Error"
	Complete         InternalStatus = "Complete"

	JobTypeIngest  JobType = "Ingest"
	JobTypeAnalyze JobType = "Analyze"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Scope        string            `json:"scope,omitempty"`
	DocumentId   string            `json:"document_id,omitempty"`
	DocumentName string            `json:"document_name,omitempty"`
	ContentType  string            `json:"content_type,omitempty"`
	TempPath     string            `json:"temp_path,omitempty"`
	Size         int64             `json:"size,omitempty"`
	Profile      docmodel.Profile  `json:"profile,omitempty"`

	Document *docmodel.UploadedDocument `json:"document,omitempty"`
	Analysis *docmodel.AnalysisResult   `json:"analysis,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
