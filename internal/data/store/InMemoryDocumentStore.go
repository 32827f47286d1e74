package store

import (
	"context"
	"sync"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

type InMemoryDocumentStore struct {
	mutex       *sync.RWMutex
	documents   map[string]docmodel.UploadedDocument
	extractions map[string]docmodel.CanonicalExtraction
	analyses    map[string]docmodel.AnalysisResult
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		mutex:       new(sync.RWMutex),
		documents:   make(map[string]docmodel.UploadedDocument),
		extractions: make(map[string]docmodel.CanonicalExtraction),
		analyses:    make(map[string]docmodel.AnalysisResult),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc docmodel.UploadedDocument) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.documents[doc.Id] = doc
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (docmodel.UploadedDocument, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	doc, found := store.documents[id]
	return doc, found
}

func (store *InMemoryDocumentStore) SaveExtraction(ctx context.Context, extraction docmodel.CanonicalExtraction) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	key := extractKey(extraction.DocumentId, extraction.Profile)
	if _, exists := store.extractions[key]; exists {
		return false, nil
	}
	store.extractions[key] = extraction
	return true, nil
}

func (store *InMemoryDocumentStore) GetExtraction(ctx context.Context, documentId string, profile docmodel.Profile) (docmodel.CanonicalExtraction, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	extraction, found := store.extractions[extractKey(documentId, profile)]
	return extraction, found
}

func (store *InMemoryDocumentStore) SaveAnalysis(ctx context.Context, result docmodel.AnalysisResult) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	key := analysisKey(result.DocumentId, result.Profile)
	if _, exists := store.analyses[key]; exists {
		return nil
	}
	store.analyses[key] = result
	return nil
}

func (store *InMemoryDocumentStore) GetAnalysis(ctx context.Context, documentId string, profile docmodel.Profile) (docmodel.AnalysisResult, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	result, found := store.analyses[analysisKey(documentId, profile)]
	return result, found
}
