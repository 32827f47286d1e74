package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

// httpService talks to a hosted document-intelligence endpoint: submit the
// signed source URL, then poll the returned operation until it reaches a
// terminal state. Connection reuse matters here since polling hits the same
// host repeatedly.
type httpService struct {
	endpoint string
	apiKey   string
	client   *http.Client
	interval time.Duration
	logger   *logger_i.Logger
}

func NewHTTPService(endpoint string, apiKey string) Service {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 25,
		IdleConnTimeout:     60 * time.Second,
	}
	return &httpService{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Transport: transport},
		interval: config.ExtractionPollInterval,
		logger:   logger_i.NewLogger("ExtractionHTTP"),
	}
}

type submitRequest struct {
	URLSource string `json:"urlSource"`
}

type operationState struct {
	Id     string     `json:"operationId"`
	Status string     `json:"status"`
	Result *RawResult `json:"analyzeResult,omitempty"`
	Error  string     `json:"error,omitempty"`
}

func (s *httpService) Extract(ctx context.Context, signedURL string, profile docmodel.Profile) (*RawResult, error) {
	op, err := s.submit(ctx, signedURL, profile)
	if err != nil {
		return nil, err
	}
	return s.poll(ctx, op)
}

func (s *httpService) submit(ctx context.Context, signedURL string, profile docmodel.Profile) (string, error) {
	body, err := json.Marshal(submitRequest{URLSource: signedURL})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/analyze/%s", s.endpoint, profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", docmodel.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		s.logger.Error("Submit rejected", "status", resp.StatusCode, "profile", profile)
		return "", err
	}

	var state operationState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return "", fmt.Errorf("%w: malformed submit response", docmodel.ErrTransient)
	}
	return state.Id, nil
}

func (s *httpService) poll(ctx context.Context, operationId string) (*RawResult, error) {
	url := fmt.Sprintf("%s/operations/%s", s.endpoint, operationId)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.interval):
		}

		state, err := s.fetchOperation(ctx, url)
		if err != nil {
			return nil, err
		}

		switch state.Status {
		case "succeeded":
			if state.Result == nil {
				return nil, fmt.Errorf("%w: operation succeeded without result", docmodel.ErrTransient)
			}
			return state.Result, nil
		case "failed":
			return nil, fmt.Errorf("%w: %s", docmodel.ErrTransient, state.Error)
		default:
			s.logger.Debug("Operation still running", "operationId", operationId, "status", state.Status)
		}
	}
}

func (s *httpService) fetchOperation(ctx context.Context, url string) (*operationState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docmodel.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, err
	}

	var state operationState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: malformed operation response", docmodel.ErrTransient)
	}
	return &state, nil
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return docmodel.ErrNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return docmodel.ErrUnsupportedProfile
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: status %d", docmodel.ErrTransient, code)
	default:
		return fmt.Errorf("%w: status %d", docmodel.ErrValidation, code)
	}
}
