package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/adapter"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/adapter/utils"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/api"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/jobmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id           string
	traceId      string
	jobType      jobmodel.JobType
	scope        string
	documentId   string
	documentName string
	contentType  string
	tempPath     string
	size         int64
	profile      string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// UploadDocumentHandler godoc
// @Summary      Upload a document
// @Description  Receives a file via multipart/form-data, spools it to a temporary directory and queues an ingestion job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        scope     formData  string  true  "Engagement scope the document belongs to"
// @Param        document  formData  file    true  "The PDF, DOCX, TXT or RTF file to upload"
// @Success      202  {object}  api.InitJobResponse  "Accepted - returns job id and status URL"
// @Failure      400  {object}  api.JobResponse      "Missing fields, oversize upload or unsupported content type"
// @Failure      500  {object}  api.JobResponse      "Storage or write error"
// @Router       /documents [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		err := r.ParseMultipartForm(config.MaxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		scope := r.FormValue("scope")
		if scope == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "scope is required")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		contentType := fileMetadata.Header.Get("Content-Type")
		if !isSupportedDocument(fileMetadata.Filename, contentType) {
			WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Unsupported document type")
			return
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		written, err := io.Copy(destinationFileWriter, fileReader)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Write error")
			return
		}

		newJob := newJobData{
			id:           utils.GetNewUUID(),
			traceId:      r.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:      jobmodel.JobTypeIngest,
			scope:        scope,
			documentId:   utils.GetNewUUID(),
			documentName: fileMetadata.Filename,
			contentType:  contentType,
			tempPath:     tempFilePath,
			size:         written,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// AnalyzeDocumentHandler godoc
// @Summary      Analyze an uploaded document
// @Description  Queues extraction and signal derivation for a document under the given profile. Re-analysis of a finished pair returns the stored result.
// @Tags         Documents
// @Produce      json
// @Param        id       path   string  true   "Document ID"
// @Param        profile  query  string  false  "Extraction profile (generic, invoice, receipt)"
// @Success      202  {object}  api.InitJobResponse  "Accepted - returns job id and status URL"
// @Failure      400  {object}  api.JobResponse      "Unsupported profile"
// @Failure      404  {object}  api.JobResponse      "Document not found"
// @Router       /documents/{id}/analyze [post]
func AnalyzeDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		documentId := utils.GetChiURLParam(r, "id")
		if documentId == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document id is required")
			return
		}

		profile, err := docmodel.ParseProfile(r.URL.Query().Get("profile"))
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, documentId, "Unsupported profile")
			return
		}

		if _, found := getPipeline().GetDocument(r.Context(), documentId); !found {
			WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
			return
		}

		newJob := newJobData{
			id:         utils.GetNewUUID(),
			traceId:    r.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:    jobmodel.JobTypeAnalyze,
			documentId: documentId,
			profile:    string(profile),
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// SearchHandler godoc
// @Summary      Search indexed documents
// @Description  Semantic search over analyzed documents, optionally restricted to one scope.
// @Tags         Search
// @Produce      json
// @Param        q      query  string  true   "Query text"
// @Param        scope  query  string  false  "Restrict results to this scope"
// @Param        limit  query  int     false  "Maximum results (default 5, max 25)"
// @Success      200  {object}  api.SearchResponse
// @Failure      400  {object}  api.JobResponse  "Missing query"
// @Router       /search [get]
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		query := r.URL.Query().Get("q")
		scope := r.URL.Query().Get("scope")
		limit := config.SearchDefaultLimit
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed <= 0 {
				WriteErrorResponse(w, http.StatusBadRequest, "", "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		results, err := getPipeline().Search(r.Context(), scope, query, limit)
		if err != nil {
			if errors.Is(err, docmodel.ErrValidation) {
				WriteErrorResponse(w, http.StatusBadRequest, "", "q is required")
				return
			}
			logRH.Error("Search failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Search failed")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(query, results))
	}
}

// ChatHandler godoc
// @Summary      Ask the assistant about a scope's documents
// @Description  Records the question, grounds an answer in the scope's indexed documents and returns the assistant's turn.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Scope and message"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.JobResponse  "Missing scope or message"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad Chat Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		turn, err := getPipeline().Chat(request.Context(), requestData.Scope, requestData.Message)
		if err != nil {
			if errors.Is(err, docmodel.ErrValidation) {
				WriteErrorResponse(w, http.StatusBadRequest, requestData.Scope, "scope and message are required")
				return
			}
			logRH.Error("Chat failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, requestData.Scope, "Chat failed")
			return
		}

		writeJsonResponse(w, http.StatusOK, api.ChatResponse{
			Scope: requestData.Scope,
			Turn:  adapter.ToChatTurn(turn),
		})
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// ChatHistoryHandler godoc
// @Summary      Page through a scope's conversation
// @Description  Returns turns in append order. Pass the returned cursor to fetch the next page.
// @Tags         Chat
// @Produce      json
// @Param        scope   query  string  true   "Engagement scope"
// @Param        limit   query  int     false  "Page size (default 50)"
// @Param        cursor  query  string  false  "Continuation cursor from the previous page"
// @Success      200  {object}  api.ChatHistoryResponse
// @Failure      400  {object}  api.JobResponse  "Missing scope or malformed cursor"
// @Router       /chat/history [get]
func ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		scope := r.URL.Query().Get("scope")
		cursor := r.URL.Query().Get("cursor")
		limit := 0
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil {
				WriteErrorResponse(w, http.StatusBadRequest, scope, "limit must be an integer")
				return
			}
			limit = parsed
		}

		turns, nextCursor, err := getPipeline().ChatHistory(r.Context(), scope, limit, cursor)
		if err != nil {
			if errors.Is(err, docmodel.ErrValidation) {
				WriteErrorResponse(w, http.StatusBadRequest, scope, "invalid scope or cursor")
				return
			}
			logRH.Error("Chat history failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, scope, "Chat history failed")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToChatHistoryResponse(scope, turns, nextCursor))
	}
}
