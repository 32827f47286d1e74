package extraction

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/objectstore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// localService extracts text in-process when no hosted endpoint is
// configured. It produces content and pages only; tables, key-value pairs and
// entities stay empty, which the normalizer and signal engine tolerate.
type localService struct {
	fs     *objectstore.Filesystem
	logger *logger_i.Logger
}

func NewLocalService(fs *objectstore.Filesystem) Service {
	return &localService{
		fs:     fs,
		logger: logger_i.NewLogger("ExtractionLocal"),
	}
}

func (s *localService) Extract(ctx context.Context, signedURL string, profile docmodel.Profile) (*RawResult, error) {
	path, err := s.fs.Resolve(signedURL)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return s.extractPDF(path)
	case ".docx", ".txt", ".rtf", ".odt":
		return s.extractFlat(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", docmodel.ErrValidation, filepath.Ext(path))
	}
}

func (s *localService) extractPDF(path string) (*RawResult, error) {
	f, err := pdf.Open(path)
	if err != nil {
		s.logger.Error("Failed opening pdf", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	result := &RawResult{}
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			s.logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		result.Pages = append(result.Pages, RawPage{Number: i, Content: content})
	}
	return result, nil
}

func (s *localService) extractFlat(path string) (*RawResult, error) {
	text, err := cat.File(path)
	if err != nil {
		s.logger.Error("Error extracting document content", "error", err)
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	return &RawResult{
		Content: text,
		Pages:   []RawPage{{Number: 1, Content: text}},
	}, nil
}

// The pdf library can hang on malformed page streams; bound each page read.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timeout")
	}
}
