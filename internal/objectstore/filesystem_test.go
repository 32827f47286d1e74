package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

func newTestStore(t *testing.T) *Filesystem {
	t.Helper()
	fs, err := NewFilesystem(t.TempDir(), "test-secret")
	if err != nil {
		t.Fatalf("NewFilesystem failed: %v", err)
	}
	return fs
}

func TestFilesystem_PutAndResolveRoundtrip(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	loc, err := fs.Put(ctx, []byte("audit evidence"), "evidence.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !strings.HasSuffix(loc, ".pdf") {
		t.Errorf("location should keep the extension, got %s", loc)
	}

	signed, err := fs.SignedURL(loc, time.Minute)
	if err != nil {
		t.Fatalf("SignedURL failed: %v", err)
	}

	path, err := fs.Resolve(signed)
	if err != nil {
		t.Fatalf("Resolve rejected a fresh handle: %v", err)
	}
	if path == "" {
		t.Error("Resolve returned empty path")
	}
}

func TestFilesystem_ExpiredHandle(t *testing.T) {
	fs := newTestStore(t)

	loc, err := fs.Put(context.Background(), []byte("x"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	signed, err := fs.SignedURL(loc, time.Second)
	if err != nil {
		t.Fatalf("SignedURL failed: %v", err)
	}

	fs.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := fs.Resolve(signed); !errors.Is(err, docmodel.ErrNotFound) {
		t.Errorf("expired handle should be ErrNotFound, got %v", err)
	}
}

func TestFilesystem_ForgedSignature(t *testing.T) {
	fs := newTestStore(t)

	loc, _ := fs.Put(context.Background(), []byte("x"), "a.txt", "text/plain")
	signed, _ := fs.SignedURL(loc, time.Minute)

	forged := strings.Replace(signed, "sig=", "sig=AAAA", 1)
	if _, err := fs.Resolve(forged); !errors.Is(err, docmodel.ErrNotFound) {
		t.Errorf("forged handle should be ErrNotFound, got %v", err)
	}
}

func TestFilesystem_DeleteThenSign(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	loc, _ := fs.Put(ctx, []byte("x"), "a.txt", "text/plain")
	if err := fs.Delete(ctx, loc); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := fs.SignedURL(loc, time.Minute); !errors.Is(err, docmodel.ErrNotFound) {
		t.Errorf("signing a deleted blob should be ErrNotFound, got %v", err)
	}
}
