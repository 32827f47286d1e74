package adapter

import (
	"fmt"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/api"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/jobmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/search"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobmodel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:   string(job.Status),
		Step:     string(job.CurrentStep),
		Document: ToDocumentResponse(job.JobPayload.Document),
		Analysis: ToAnalysisResponse(job.JobPayload.Analysis),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToDocumentResponse(doc *docmodel.UploadedDocument) *api.DocumentResponse {
	if doc == nil {
		return nil
	}
	return &api.DocumentResponse{
		Id:          doc.Id,
		Scope:       doc.Scope,
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Status:      string(doc.Status),
		UploadedAt:  doc.UploadedAt,
	}
}

func ToAnalysisResponse(analysis *docmodel.AnalysisResult) *api.AnalysisResponse {
	if analysis == nil {
		return nil
	}
	return &api.AnalysisResponse{
		DocumentId:      analysis.DocumentId,
		Profile:         string(analysis.Profile),
		Summary:         analysis.Summary,
		RedFlags:        analysis.RedFlags,
		Highlights:      analysis.Highlights,
		ConfidenceScore: analysis.ConfidenceScore,
	}
}

func ToSearchResponse(query string, results []search.Result) api.SearchResponse {
	out := make([]api.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, api.SearchResult{
			DocumentId: r.DocumentId,
			Name:       r.Name,
			Scope:      r.Scope,
			Snippet:    r.Snippet,
			Score:      r.Score,
		})
	}
	return api.SearchResponse{Query: query, Results: out}
}

func ToChatTurn(turn docmodel.ConversationTurn) api.ChatTurn {
	return api.ChatTurn{
		Seq:           turn.Seq,
		Role:          string(turn.Role),
		Content:       turn.Content,
		ContextDocIds: turn.ContextDocIds,
		CreatedAt:     turn.CreatedAt,
	}
}

func ToChatHistoryResponse(scope string, turns []docmodel.ConversationTurn, nextCursor string) api.ChatHistoryResponse {
	out := make([]api.ChatTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, ToChatTurn(t))
	}
	return api.ChatHistoryResponse{Scope: scope, Turns: out, NextCursor: nextCursor}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
