package objectstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
	"github.com/google/uuid"
)

// Filesystem stores blobs under a base directory and issues HMAC-signed
// expiring handles in place of cloud SAS URLs.
type Filesystem struct {
	baseDir string
	secret  []byte
	logger  *logger_i.Logger
	now     func() time.Time
}

func NewFilesystem(baseDir string, secret string) (*Filesystem, error) {
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("creating blob dir: %w", err)
	}
	return &Filesystem{
		baseDir: baseDir,
		secret:  []byte(secret),
		logger:  logger_i.NewLogger("ObjectStore"),
		now:     time.Now,
	}, nil
}

func (f *Filesystem) Put(ctx context.Context, data []byte, name string, contentType string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	location := uuid.New().String() + filepath.Ext(name)
	path := filepath.Join(f.baseDir, location)
	if err := os.WriteFile(path, data, 0640); err != nil {
		f.logger.Error("Failed writing blob", "location", location, "error", err)
		return "", err
	}
	f.logger.Debug("Stored blob", "location", location, "bytes", len(data), "contentType", contentType)
	return location, nil
}

func (f *Filesystem) SignedURL(location string, ttl time.Duration) (string, error) {
	if _, err := os.Stat(filepath.Join(f.baseDir, location)); err != nil {
		return "", docmodel.ErrNotFound
	}
	exp := f.now().Add(ttl).Unix()
	sig := f.sign(location, exp)
	return fmt.Sprintf("file:///%s?exp=%d&sig=%s", location, exp, sig), nil
}

func (f *Filesystem) Delete(ctx context.Context, location string) error {
	if err := os.Remove(filepath.Join(f.baseDir, location)); err != nil {
		if os.IsNotExist(err) {
			return docmodel.ErrNotFound
		}
		return err
	}
	return nil
}

// Resolve validates a signed handle and returns the local path behind it.
// Forged or expired handles fail with ErrNotFound, same as a revoked SAS.
func (f *Filesystem) Resolve(signedURL string) (string, error) {
	u, err := url.Parse(signedURL)
	if err != nil || u.Scheme != "file" {
		return "", docmodel.ErrNotFound
	}
	location := strings.TrimPrefix(u.Path, "/")
	exp, err := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	if err != nil {
		return "", docmodel.ErrNotFound
	}
	if !hmac.Equal([]byte(u.Query().Get("sig")), []byte(f.sign(location, exp))) {
		return "", docmodel.ErrNotFound
	}
	if f.now().Unix() > exp {
		return "", docmodel.ErrNotFound
	}
	path := filepath.Join(f.baseDir, filepath.Base(location))
	if _, err := os.Stat(path); err != nil {
		return "", docmodel.ErrNotFound
	}
	return path, nil
}

func (f *Filesystem) sign(location string, exp int64) string {
	mac := hmac.New(sha256.New, f.secret)
	fmt.Fprintf(mac, "%s|%d", location, exp)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
