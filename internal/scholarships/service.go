package scholarships

import (
	"context"
	"errors"
	"strings"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"
	"scholarship-tracker/internal/common/observability"
	"scholarship-tracker/internal/models"
)

// Listener is told about the full collection after every write.
type Listener interface {
	CollectionChanged(ctx context.Context, userID string, list []models.Scholarship)
}

type Service struct {
	store    Store
	obs      *observability.Observability
	log      logger.Logger
	listener Listener
}

func NewService(store Store, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		store: store,
		obs:   obs,
		log:   logger.Component(log, "scholarships"),
	}
}

// WithListener registers l to hear about every collection write.
func (s *Service) WithListener(l Listener) *Service {
	s.listener = l
	return s
}

// List returns the whole collection in insertion order.
func (s *Service) List(ctx context.Context, userID string) ([]models.Scholarship, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, userID)
}

// Dashboard returns only the entries the user has added.
func (s *Service) Dashboard(ctx context.Context, userID string) ([]models.Scholarship, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	added := make([]models.Scholarship, 0, len(all))
	for _, sc := range all {
		if sc.IsAdded() {
			added = append(added, sc)
		}
	}
	return added, nil
}

// Get returns a single entry by id.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Scholarship, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	sc, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}
	return sc, nil
}

// AddOrPromote marks sc as added, replacing an existing entry in place or
// appending a new one. Repeating the call leaves the collection unchanged.
// A version on sc is checked only when the stored status actually changes.
func (s *Service) AddOrPromote(ctx context.Context, userID string, sc models.Scholarship) ([]models.Scholarship, error) {
	return s.transition(ctx, userID, sc, models.StatusAdded, false)
}

// Demote moves an existing entry back to matched. The entry is never removed.
func (s *Service) Demote(ctx context.Context, userID string, sc models.Scholarship) ([]models.Scholarship, error) {
	return s.transition(ctx, userID, sc, models.StatusMatched, true)
}

func (s *Service) transition(ctx context.Context, userID string, sc models.Scholarship, status string, mustExist bool) ([]models.Scholarship, error) {
	if strings.TrimSpace(sc.ID) == "" {
		return nil, apperrors.NewFieldValidationError("id", "scholarship id is required")
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	stored, err := s.store.Get(ctx, userID, sc.ID)
	switch {
	case errors.Is(err, ErrNotFound) && !mustExist:
		stored = nil
	case err != nil:
		return nil, s.mapStoreError(err, sc.ID)
	}

	var expected int64
	if stored != nil {
		if stored.Status == status {
			return s.list(ctx, userID)
		}
		if sc.Version > 0 && sc.Version != stored.Version {
			metrics.ScholarshipConflicts.Inc()
			return nil, apperrors.NewVersionConflictError("scholarship", sc.ID, sc.Version, stored.Version)
		}
		expected = stored.Version
	}

	sc.Status = status
	sc.Documents = sc.Documents.Normalize()

	if _, err := s.store.Upsert(ctx, userID, sc, expected); err != nil {
		return nil, s.mapStoreError(err, sc.ID)
	}

	s.obs.RecordTransition(ctx, status)
	s.log.Info("scholarship status updated", map[string]interface{}{
		"userId":        userID,
		"scholarshipId": sc.ID,
		"status":        status,
	})
	return s.changed(ctx, userID)
}

// PersistMatches replaces the matched part of the collection with matches.
// Entries the user has added are kept.
func (s *Service) PersistMatches(ctx context.Context, userID string, matches []models.Scholarship) ([]models.Scholarship, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	clean := make([]models.Scholarship, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.ID) == "" {
			return nil, apperrors.NewFieldValidationError("scholarships.id", "every match needs an id")
		}
		m.Status = models.StatusMatched
		m.Documents = m.Documents.Normalize()
		clean = append(clean, m)
	}
	if err := s.store.ReplaceMatched(ctx, userID, clean); err != nil {
		return nil, apperrors.NewDatabaseError("replace matched scholarships", err)
	}
	s.obs.RecordMatchesPersisted(ctx, len(clean))
	s.log.Info("matches persisted", map[string]interface{}{
		"userId": userID,
		"count":  len(clean),
	})
	return s.changed(ctx, userID)
}

func (s *Service) changed(ctx context.Context, userID string) ([]models.Scholarship, error) {
	list, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.listener != nil {
		s.listener.CollectionChanged(ctx, userID, list)
	}
	return list, nil
}

func (s *Service) list(ctx context.Context, userID string) ([]models.Scholarship, error) {
	out, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list scholarships", err)
	}
	return out, nil
}

func (s *Service) checkUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewUnauthenticatedError("no active session")
	}
	ok, err := s.store.ProfileExists(ctx, userID)
	if err != nil {
		return apperrors.NewDatabaseError("load profile", err)
	}
	if !ok {
		return apperrors.NewNotFoundError(apperrors.ErrCodeProfileNotFound, "profile", userID)
	}
	return nil
}

func (s *Service) mapStoreError(err error, id string) error {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		metrics.ScholarshipConflicts.Inc()
		return apperrors.NewVersionConflictError("scholarship", id, conflict.Expected, conflict.Actual)
	case errors.Is(err, ErrNotFound):
		return apperrors.NewNotFoundError(apperrors.ErrCodeScholarshipNotFound, "scholarship", id)
	default:
		return apperrors.NewDatabaseError("write scholarship", err)
	}
}
