package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/storage"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Helpers
// ==========================

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func defaultLimits() Limits {
	return Limits{
		MaxFileSize:  1024,
		AllowedTypes: []string{"application/pdf", "image/png", "text/plain"},
		Concurrency:  2,
		PresignTTL:   time.Minute,
	}
}

func newTestManager(t *testing.T) (*Manager, *MemoryStore, *storage.MemoryStore) {
	meta := NewMemoryStore()
	objects := storage.NewMemoryStore()
	return NewManager(meta, objects, catalog.Default(), defaultLimits(), logger.NewTestLogger(t)), meta, objects
}

func pdf(name string) Upload {
	return Upload{Name: name, Data: pdfBytes}
}

// ==========================
// Upload
// ==========================

func TestManager_Upload(t *testing.T) {
	mgr, meta, objects := newTestManager(t)
	ctx := context.Background()

	list, err := mgr.Upload(ctx, "user-1", "cv", []Upload{pdf("cv.pdf"), pdf("cover.pdf")})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCV, list.Key)
	assert.Equal(t, 2, list.Count)
	assert.False(t, list.Empty)
	assert.Equal(t, 2, objects.Len())
	assert.Equal(t, 2, meta.Len())

	for _, f := range list.Files {
		assert.Equal(t, models.FileStateConfirmed, f.State)
		assert.Equal(t, f.ID+"/"+f.Name, f.Path)
		assert.Equal(t, "application/pdf", f.ContentType)
	}

	list, err = mgr.Upload(ctx, "user-1", "cv", []Upload{pdf("cv.pdf")})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Count, "count grows by exactly the batch size")

	ov, err := mgr.List(ctx, "user-1")
	require.NoError(t, err)
	for _, c := range ov.Categories {
		if c.Key != models.CategoryCV {
			assert.Equal(t, 0, c.Count, "other categories untouched: %s", c.Key)
		}
	}
}

func TestManager_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		category string
		files    []Upload
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "unknown category",
			category: "passport",
			files:    []Upload{pdf("p.pdf")},
			wantCode: apperrors.ErrCodeUnknownCategory,
		},
		{
			name:     "no files",
			category: "cv",
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "empty name",
			category: "cv",
			files:    []Upload{{Name: "  ", Data: pdfBytes}},
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "empty file",
			category: "cv",
			files:    []Upload{{Name: "cv.pdf"}},
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "too large",
			category: "sop",
			files:    []Upload{pdf("ok.pdf"), {Name: "big.pdf", Data: append(append([]byte{}, pdfBytes...), make([]byte, 2048)...)}},
			wantCode: apperrors.ErrCodeFileTooLarge,
		},
		{
			name:     "unsupported type",
			category: "lor",
			files:    []Upload{{Name: "letter.pdf", Data: []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00")}},
			wantCode: apperrors.ErrCodeUnsupportedFileType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, meta, objects := newTestManager(t)
			_, err := mgr.Upload(context.Background(), "user-1", tt.category, tt.files)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
			assert.Equal(t, 0, meta.Len(), "nothing written for a rejected batch")
			assert.Equal(t, 0, objects.Len())
		})
	}
}

func TestManager_Upload_Unauthenticated(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	_, err := mgr.Upload(context.Background(), "", "cv", []Upload{pdf("cv.pdf")})
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestManager_Upload_ObjectStoreFailure(t *testing.T) {
	mgr, meta, objects := newTestManager(t)
	objects.FailPut = func(path string) error {
		if strings.HasSuffix(path, "/bad.pdf") {
			return errors.New("minio unavailable")
		}
		return nil
	}

	files := []Upload{pdf("a.pdf"), pdf("bad.pdf"), pdf("c.pdf"), pdf("d.pdf")}
	_, err := mgr.Upload(context.Background(), "user-1", "transcript", files)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamFailure, apperrors.KindOf(err))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeObjectStoreFailed))

	assert.Equal(t, 0, meta.Len(), "pending rows removed and stored files rolled back")
	assert.Equal(t, 0, objects.Len())
}

type brokenMeta struct {
	*MemoryStore
	err error
}

func (b brokenMeta) SetState(ctx context.Context, userID, id, state string) error {
	return b.err
}

func (b brokenMeta) Delete(ctx context.Context, id string) error {
	return b.err
}

type brokenObjects struct {
	*storage.MemoryStore
}

func (brokenObjects) Remove(ctx context.Context, path string) error {
	return errors.New("minio unavailable")
}

func TestManager_Rollback_LogsMetadataFailures(t *testing.T) {
	refs := []models.FileRef{{ID: "f1", UserID: "user-1", Path: "user-1/cv/f1.pdf"}}
	metaErr := errors.New("connection reset")

	t.Run("row delete", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		mgr := NewManager(brokenMeta{NewMemoryStore(), metaErr}, storage.NewMemoryStore(), catalog.Default(),
			defaultLimits(), logger.NewZapAdapter(zap.New(core)))

		mgr.rollback(context.Background(), refs)
		entries := logs.FilterMessage("rollback row delete failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "f1", entries[0].ContextMap()["fileId"])
	})

	t.Run("flag for reconciliation", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		mgr := NewManager(brokenMeta{NewMemoryStore(), metaErr}, brokenObjects{storage.NewMemoryStore()}, catalog.Default(),
			defaultLimits(), logger.NewZapAdapter(zap.New(core)))

		mgr.rollback(context.Background(), refs)
		assert.Equal(t, 1, logs.FilterMessage("rollback remove failed").Len())
		entries := logs.FilterMessage("rollback could not flag row for reconciliation").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "f1", entries[0].ContextMap()["fileId"])
	})
}

func TestManager_Upload_ManyFilesConcurrently(t *testing.T) {
	mgr, _, objects := newTestManager(t)

	files := make([]Upload, 12)
	for i := range files {
		files[i] = Upload{Name: fmt.Sprintf("note-%02d.txt", i), Data: []byte("plain text notes")}
	}
	list, err := mgr.Upload(context.Background(), "user-1", "others", files)
	require.NoError(t, err)
	assert.Equal(t, 12, list.Count)
	assert.Equal(t, 12, objects.Len())
}

// ==========================
// Delete / List / Bundle
// ==========================

func TestManager_Delete(t *testing.T) {
	mgr, meta, objects := newTestManager(t)
	ctx := context.Background()

	list, err := mgr.Upload(ctx, "user-1", "english", []Upload{pdf("ielts.pdf")})
	require.NoError(t, err)
	fileID := list.Files[0].ID

	_, err = mgr.Delete(ctx, "user-1", "cv", fileID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err), "file must belong to the category")

	_, err = mgr.Delete(ctx, "user-2", "english", fileID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileNotFound), "other users cannot delete")

	list, err = mgr.Delete(ctx, "user-1", "english", fileID)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
	assert.True(t, list.Empty)
	assert.Equal(t, "No documents uploaded", list.EmptyMessage)
	assert.Equal(t, 0, meta.Len())
	assert.Equal(t, 0, objects.Len())

	_, err = mgr.Delete(ctx, "user-1", "english", fileID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileNotFound))
}

func TestManager_List(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	ov, err := mgr.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ov.Categories, 6)
	assert.Equal(t, 0, ov.CompletionPercent)
	for _, c := range ov.Categories {
		assert.True(t, c.Empty)
		assert.Equal(t, EmptyMessage, c.EmptyMessage)
		assert.NotNil(t, c.Files)
	}

	_, err = mgr.Upload(ctx, "user-1", "cv", []Upload{pdf("cv.pdf")})
	require.NoError(t, err)
	_, err = mgr.Upload(ctx, "user-1", "sop", []Upload{pdf("sop.pdf")})
	require.NoError(t, err)
	_, err = mgr.Upload(ctx, "user-1", "lor", []Upload{pdf("lor.pdf")})
	require.NoError(t, err)

	ov, err = mgr.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, ov.TotalFiles)
	assert.Equal(t, 3, ov.CompletedCategories)
	assert.Equal(t, 50, ov.CompletionPercent)

	order := make([]models.CategoryKey, len(ov.Categories))
	for i, c := range ov.Categories {
		order[i] = c.Key
	}
	var want []models.CategoryKey
	for _, c := range catalog.Default().Categories {
		want = append(want, c.Key)
	}
	assert.Equal(t, want, order, "catalog order")
}

func TestManager_Bundle(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	b, err := mgr.Bundle(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, b, 6)

	list, err := mgr.Upload(ctx, "user-1", "transcript", []Upload{pdf("grades.pdf")})
	require.NoError(t, err)

	b, err = mgr.Bundle(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{list.Files[0].Path}, b[models.CategoryTranscript])
	assert.Equal(t, []string{}, b[models.CategoryCV])
}

func TestManager_DownloadURL(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	list, err := mgr.Upload(ctx, "user-1", "cv", []Upload{pdf("cv.pdf")})
	require.NoError(t, err)

	u, err := mgr.DownloadURL(ctx, "user-1", list.Files[0].ID)
	require.NoError(t, err)
	assert.Contains(t, u, list.Files[0].Path)

	_, err = mgr.DownloadURL(ctx, "user-1", "nope")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

// ==========================
// Reconcile
// ==========================

func TestManager_Reconcile(t *testing.T) {
	mgr, meta, objects := newTestManager(t)
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)

	meta.Seed(models.FileRef{ID: "p1", UserID: "u", Category: models.CategoryCV, Name: "a.pdf", Path: "p1/a.pdf", State: models.FileStatePending, UploadedAt: old, UpdatedAt: old})
	require.NoError(t, objects.Put(ctx, "p1/a.pdf", strings.NewReader("x"), 1, "application/pdf"))
	meta.Seed(models.FileRef{ID: "p2", UserID: "u", Category: models.CategoryCV, Name: "b.pdf", Path: "p2/b.pdf", State: models.FileStatePending, UploadedAt: old, UpdatedAt: old})
	meta.Seed(models.FileRef{ID: "d1", UserID: "u", Category: models.CategorySOP, Name: "c.pdf", Path: "d1/c.pdf", State: models.FileStateDeleting, UploadedAt: old, UpdatedAt: old})
	require.NoError(t, objects.Put(ctx, "d1/c.pdf", strings.NewReader("x"), 1, "application/pdf"))

	fresh := time.Now()
	meta.Seed(models.FileRef{ID: "p3", UserID: "u", Category: models.CategoryCV, Name: "new.pdf", Path: "p3/new.pdf", State: models.FileStatePending, UploadedAt: fresh, UpdatedAt: fresh})
	meta.Seed(models.FileRef{ID: "c1", UserID: "u", Category: models.CategoryCV, Name: "ok.pdf", Path: "c1/ok.pdf", State: models.FileStateConfirmed, UploadedAt: old, UpdatedAt: old})

	report, err := mgr.Reconcile(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, report.PendingRemoved)
	assert.Equal(t, 1, report.DeletingRemoved)
	assert.Equal(t, 0, report.Failed)

	assert.Equal(t, 2, meta.Len(), "fresh pending and confirmed rows remain")
	assert.Equal(t, 0, objects.Len())
}
