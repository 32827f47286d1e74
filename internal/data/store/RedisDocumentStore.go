package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/data/redisStore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func docKey(id string) string { return "doc:" + id }

func extractKey(id string, profile docmodel.Profile) string {
	return fmt.Sprintf("extract:%s:%s", id, profile)
}

func analysisKey(id string, profile docmodel.Profile) string {
	return fmt.Sprintf("analysis:%s:%s", id, profile)
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docmodel.UploadedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, docKey(doc.Id), data, 0)
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (docmodel.UploadedDocument, bool) {
	var doc docmodel.UploadedDocument
	val, err := s.store.Get(ctx, docKey(id))
	if err != nil {
		if !s.store.IsNil(err) {
			s.logger.Error("Error reading document", "id", id, "error", err)
		}
		return doc, false
	}
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Error("Corrupt document record", "id", id, "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) SaveExtraction(ctx context.Context, extraction docmodel.CanonicalExtraction) (bool, error) {
	data, err := json.Marshal(extraction)
	if err != nil {
		return false, err
	}
	won, err := s.store.SetNX(ctx, extractKey(extraction.DocumentId, extraction.Profile), data, 0)
	if err != nil {
		return false, err
	}
	if !won {
		s.logger.Debug("Extraction already recorded, keeping original", "documentId", extraction.DocumentId, "profile", extraction.Profile)
	}
	return won, nil
}

func (s *RedisDocumentStore) GetExtraction(ctx context.Context, documentId string, profile docmodel.Profile) (docmodel.CanonicalExtraction, bool) {
	var extraction docmodel.CanonicalExtraction
	val, err := s.store.Get(ctx, extractKey(documentId, profile))
	if err != nil {
		return extraction, false
	}
	if err := json.Unmarshal([]byte(val), &extraction); err != nil {
		s.logger.Error("Corrupt extraction record", "documentId", documentId, "error", err)
		return extraction, false
	}
	return extraction, true
}

func (s *RedisDocumentStore) SaveAnalysis(ctx context.Context, result docmodel.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = s.store.SetNX(ctx, analysisKey(result.DocumentId, result.Profile), data, 0)
	return err
}

func (s *RedisDocumentStore) GetAnalysis(ctx context.Context, documentId string, profile docmodel.Profile) (docmodel.AnalysisResult, bool) {
	var result docmodel.AnalysisResult
	val, err := s.store.Get(ctx, analysisKey(documentId, profile))
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return result, false
	}
	return result, true
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}
