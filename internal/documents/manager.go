package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"
	"scholarship-tracker/internal/common/storage"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/pkg/catalog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EmptyMessage is shown for a category without files.
const EmptyMessage = "No documents uploaded"

// Upload is one file of an upload batch.
type Upload struct {
	Name string
	Data []byte
}

type Limits struct {
	MaxFileSize  int64
	AllowedTypes []string
	Concurrency  int
	PresignTTL   time.Duration
}

// CategoryList is the file listing of one category.
type CategoryList struct {
	Key             models.CategoryKey     `json:"key"`
	DisplayName     string                 `json:"display_name"`
	Description     string                 `json:"description"`
	PresentationKey models.PresentationKey `json:"presentation_key"`
	Files           []models.FileRef       `json:"files"`
	Count           int                    `json:"count"`
	Empty           bool                   `json:"empty"`
	EmptyMessage    string                 `json:"empty_message,omitempty"`
}

// Overview lists every category in catalog order.
type Overview struct {
	Categories          []CategoryList `json:"categories"`
	TotalFiles          int            `json:"total_files"`
	CompletedCategories int            `json:"completed_categories"`
	CompletionPercent   int            `json:"completion_percent"`
}

type ReconcileReport struct {
	PendingRemoved  int `json:"pending_removed"`
	DeletingRemoved int `json:"deleting_removed"`
	Failed          int `json:"failed"`
}

type Manager struct {
	meta    MetadataStore
	objects storage.ObjectStore
	catalog *catalog.Catalog
	limits  Limits
	log     logger.Logger
}

func NewManager(meta MetadataStore, objects storage.ObjectStore, cat *catalog.Catalog, limits Limits, log logger.Logger) *Manager {
	if limits.Concurrency <= 0 {
		limits.Concurrency = 4
	}
	if limits.PresignTTL <= 0 {
		limits.PresignTTL = 15 * time.Minute
	}
	return &Manager{
		meta:    meta,
		objects: objects,
		catalog: cat,
		limits:  limits,
		log:     logger.Component(log, "documents"),
	}
}

func (m *Manager) category(rawKey string) (catalog.Category, error) {
	key, err := models.ParseCategoryKey(rawKey)
	if err != nil {
		return catalog.Category{}, apperrors.NewValidationError(apperrors.ErrCodeUnknownCategory, "Unknown document category", err.Error())
	}
	cat, ok := m.catalog.Lookup(key)
	if !ok {
		return catalog.Category{}, apperrors.NewValidationError(apperrors.ErrCodeUnknownCategory, "Unknown document category", string(key))
	}
	return cat, nil
}

func (m *Manager) limitsFor(cat catalog.Category) (int64, []string) {
	maxSize, allowed := m.limits.MaxFileSize, m.limits.AllowedTypes
	if cat.MaxFileSize > 0 {
		maxSize = cat.MaxFileSize
	}
	if len(cat.AllowedTypes) > 0 {
		allowed = cat.AllowedTypes
	}
	return maxSize, allowed
}

// validate checks every file before anything is written; one bad file rejects the batch.
func (m *Manager) validate(userID string, cat catalog.Category, files []Upload) ([]models.FileRef, error) {
	if len(files) == 0 {
		return nil, apperrors.NewFieldValidationError("files", "at least one file is required")
	}
	maxSize, allowed := m.limitsFor(cat)

	refs := make([]models.FileRef, 0, len(files))
	for _, f := range files {
		name := CleanName(f.Name)
		if name == "" {
			return nil, apperrors.NewFieldValidationError("files.name", "file name is required")
		}
		size := int64(len(f.Data))
		if size == 0 {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Empty file", name)
		}
		if maxSize > 0 && size > maxSize {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeFileTooLarge, "File too large",
				fmt.Sprintf("%s is %d bytes, limit %d", name, size, maxSize))
		}
		head := f.Data
		if len(head) > 512 {
			head = head[:512]
		}
		contentType := DetectContentType(name, head)
		if !contains(allowed, contentType) {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeUnsupportedFileType, "Unsupported file type",
				fmt.Sprintf("%s detected as %s", name, contentType))
		}

		id := uuid.NewString()
		refs = append(refs, models.FileRef{
			ID:          id,
			UserID:      userID,
			Category:    cat.Key,
			Name:        name,
			Path:        id + "/" + name,
			Size:        size,
			ContentType: contentType,
			State:       models.FileStatePending,
		})
	}
	return refs, nil
}

// Upload stores files under categoryKey. The batch is all or nothing.
func (m *Manager) Upload(ctx context.Context, userID, categoryKey string, files []Upload) (*CategoryList, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticatedError("no active session")
	}
	cat, err := m.category(categoryKey)
	if err != nil {
		return nil, err
	}
	refs, err := m.validate(userID, cat, files)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(string(cat.Key), "rejected").Inc()
		return nil, err
	}

	var (
		mu     sync.Mutex
		stored []models.FileRef
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.limits.Concurrency)
	for i := range refs {
		ref, data := refs[i], files[i].Data
		g.Go(func() error {
			if err := m.storeOne(gctx, ref, data); err != nil {
				return err
			}
			mu.Lock()
			stored = append(stored, ref)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.rollback(context.WithoutCancel(ctx), stored)
		metrics.DocumentUploads.WithLabelValues(string(cat.Key), "failed").Inc()
		return nil, err
	}

	var total int64
	for _, r := range refs {
		total += r.Size
	}
	metrics.DocumentUploads.WithLabelValues(string(cat.Key), "success").Add(float64(len(refs)))
	metrics.DocumentUploadBytes.WithLabelValues(string(cat.Key)).Add(float64(total))
	m.log.Info("documents uploaded", map[string]interface{}{
		"userId":   userID,
		"category": cat.Key,
		"count":    len(refs),
		"bytes":    total,
	})

	return m.categoryList(ctx, userID, cat)
}

// storeOne runs the two-phase write: pending row, object, confirm.
func (m *Manager) storeOne(ctx context.Context, ref models.FileRef, data []byte) error {
	if err := m.meta.InsertPending(ctx, ref); err != nil {
		return apperrors.NewDatabaseError("insert pending document", err)
	}
	if err := m.objects.Put(ctx, ref.Path, bytes.NewReader(data), ref.Size, ref.ContentType); err != nil {
		if derr := m.meta.Delete(context.WithoutCancel(ctx), ref.ID); derr != nil {
			m.log.Warn("pending row left for reconciliation", map[string]interface{}{"fileId": ref.ID, "error": derr})
		}
		return apperrors.NewObjectStoreError("put object", err)
	}
	if err := m.meta.SetState(ctx, ref.UserID, ref.ID, models.FileStateConfirmed); err != nil {
		return apperrors.NewDatabaseError("confirm document", err)
	}
	return nil
}

// rollback removes the files of a failed batch that did get stored.
func (m *Manager) rollback(ctx context.Context, refs []models.FileRef) {
	for _, ref := range refs {
		if err := m.objects.Remove(ctx, ref.Path); err != nil {
			m.log.Warn("rollback remove failed", map[string]interface{}{"path": ref.Path, "error": err})
			if serr := m.meta.SetState(ctx, ref.UserID, ref.ID, models.FileStateDeleting); serr != nil {
				m.log.Warn("rollback could not flag row for reconciliation", map[string]interface{}{"fileId": ref.ID, "error": serr})
			}
			continue
		}
		if derr := m.meta.Delete(ctx, ref.ID); derr != nil {
			m.log.Warn("rollback row delete failed", map[string]interface{}{"fileId": ref.ID, "error": derr})
		}
	}
}

// Delete removes one file. The row is flagged deleting first so a crash
// between the two removals is picked up by Reconcile.
func (m *Manager) Delete(ctx context.Context, userID, categoryKey, fileID string) (*CategoryList, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticatedError("no active session")
	}
	cat, err := m.category(categoryKey)
	if err != nil {
		return nil, err
	}
	ref, err := m.meta.Get(ctx, userID, fileID)
	if err != nil {
		return nil, m.mapStoreError(err, fileID)
	}
	if ref.Category != cat.Key {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCodeFileNotFound, "file", fileID)
	}

	if err := m.meta.SetState(ctx, userID, fileID, models.FileStateDeleting); err != nil {
		return nil, m.mapStoreError(err, fileID)
	}
	if err := m.objects.Remove(ctx, ref.Path); err != nil {
		return nil, apperrors.NewObjectStoreError("remove object", err)
	}
	if err := m.meta.Delete(ctx, fileID); err != nil {
		return nil, apperrors.NewDatabaseError("delete document", err)
	}

	m.log.Info("document deleted", map[string]interface{}{
		"userId":   userID,
		"category": cat.Key,
		"fileId":   fileID,
	})
	return m.categoryList(ctx, userID, cat)
}

// List returns one entry per catalog category, in catalog order.
func (m *Manager) List(ctx context.Context, userID string) (*Overview, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticatedError("no active session")
	}
	files, err := m.meta.ListConfirmed(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list documents", err)
	}
	byKey := groupByCategory(files)

	ov := &Overview{Categories: make([]CategoryList, 0, len(m.catalog.Categories))}
	for _, cat := range m.catalog.Categories {
		cl := newCategoryList(cat, byKey[cat.Key])
		ov.TotalFiles += cl.Count
		if !cl.Empty {
			ov.CompletedCategories++
		}
		ov.Categories = append(ov.Categories, cl)
	}
	if n := len(ov.Categories); n > 0 {
		ov.CompletionPercent = ov.CompletedCategories * 100 / n
	}
	return ov, nil
}

// Bundle groups confirmed paths by category with all six keys present.
func (m *Manager) Bundle(ctx context.Context, userID string) (models.DocumentBundle, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticatedError("no active session")
	}
	files, err := m.meta.ListConfirmed(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list documents", err)
	}
	b := models.NewDocumentBundle()
	for _, f := range files {
		b[f.Category] = append(b[f.Category], f.Path)
	}
	return b, nil
}

// DownloadURL returns a presigned GET URL for a confirmed file.
func (m *Manager) DownloadURL(ctx context.Context, userID, fileID string) (string, error) {
	if userID == "" {
		return "", apperrors.NewUnauthenticatedError("no active session")
	}
	ref, err := m.meta.Get(ctx, userID, fileID)
	if err != nil {
		return "", m.mapStoreError(err, fileID)
	}
	if ref.State != models.FileStateConfirmed {
		return "", apperrors.NewNotFoundError(apperrors.ErrCodeFileNotFound, "file", fileID)
	}
	u, err := m.objects.PresignedURL(ctx, ref.Path, m.limits.PresignTTL)
	if err != nil {
		return "", apperrors.NewObjectStoreError("presign", err)
	}
	return u, nil
}

// Reconcile cleans up rows stuck in pending or deleting since before olderThan ago.
func (m *Manager) Reconcile(ctx context.Context, olderThan time.Duration) (*ReconcileReport, error) {
	cutoff := time.Now().Add(-olderThan)
	stale, err := m.meta.ListStale(ctx, []string{models.FileStatePending, models.FileStateDeleting}, cutoff)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list stale documents", err)
	}

	report := &ReconcileReport{}
	for _, f := range stale {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := m.removeStale(ctx, f); err != nil {
			report.Failed++
			m.log.Warn("reconcile failed", map[string]interface{}{"fileId": f.ID, "state": f.State, "error": err})
			continue
		}
		metrics.ReconciledUploads.WithLabelValues(f.State).Inc()
		if f.State == models.FileStatePending {
			report.PendingRemoved++
		} else {
			report.DeletingRemoved++
		}
	}

	m.log.Info("reconciliation finished", map[string]interface{}{
		"pendingRemoved":  report.PendingRemoved,
		"deletingRemoved": report.DeletingRemoved,
		"failed":          report.Failed,
	})
	return report, nil
}

func (m *Manager) removeStale(ctx context.Context, f models.FileRef) error {
	exists, err := m.objects.Exists(ctx, f.Path)
	if err != nil {
		return err
	}
	if exists {
		if err := m.objects.Remove(ctx, f.Path); err != nil {
			return err
		}
	}
	return m.meta.Delete(ctx, f.ID)
}

func (m *Manager) categoryList(ctx context.Context, userID string, cat catalog.Category) (*CategoryList, error) {
	files, err := m.meta.ListConfirmed(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list documents", err)
	}
	cl := newCategoryList(cat, groupByCategory(files)[cat.Key])
	return &cl, nil
}

func (m *Manager) mapStoreError(err error, fileID string) error {
	if errors.Is(err, ErrFileNotFound) {
		return apperrors.NewNotFoundError(apperrors.ErrCodeFileNotFound, "file", fileID)
	}
	return apperrors.NewDatabaseError("load document", err)
}

func newCategoryList(cat catalog.Category, files []models.FileRef) CategoryList {
	if files == nil {
		files = []models.FileRef{}
	}
	cl := CategoryList{
		Key:             cat.Key,
		DisplayName:     cat.DisplayName,
		Description:     cat.Description,
		PresentationKey: cat.PresentationKey,
		Files:           files,
		Count:           len(files),
		Empty:           len(files) == 0,
	}
	if cl.Empty {
		cl.EmptyMessage = EmptyMessage
	}
	return cl
}

func groupByCategory(files []models.FileRef) map[models.CategoryKey][]models.FileRef {
	out := make(map[models.CategoryKey][]models.FileRef)
	for _, f := range files {
		out[f.Category] = append(out[f.Category], f)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
