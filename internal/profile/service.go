package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/validation"
	"scholarship-tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "profile:%s"

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

type Service struct {
	store Store
	cache redis.Cmdable
	ttl   time.Duration
	log   logger.Logger
}

// NewService wires the profile store. A nil cache disables caching.
func NewService(store Store, cache redis.Cmdable, ttl time.Duration, log logger.Logger) *Service {
	return &Service{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   logger.Component(log, "profile"),
	}
}

// Get reads through the cache. Cache errors fall back to the store.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}

	if cached, ok := s.fromCache(ctx, userID); ok {
		return cached, nil
	}

	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCodeProfileNotFound, "profile", userID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load profile", err)
	}
	s.toCache(ctx, p)
	return p, nil
}

// Save upserts the profile and drops the cached copy.
func (s *Service) Save(ctx context.Context, userID string, p models.UserProfile) (*models.UserProfile, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	p.UserID = userID
	p.ProfileText = strings.TrimSpace(p.ProfileText)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, apperrors.NewDatabaseError("save profile", err)
	}
	s.invalidate(ctx, userID)
	s.log.Info("profile saved", map[string]interface{}{"userId": userID})
	return s.Get(ctx, userID)
}

// Ensure makes sure a profile row exists before scholarships are written for userID.
func (s *Service) Ensure(ctx context.Context, userID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := s.store.Ensure(ctx, userID); err != nil {
		return apperrors.NewDatabaseError("ensure profile", err)
	}
	return nil
}

// Contacts lists users reachable by email or SMS.
func (s *Service) Contacts(ctx context.Context) ([]Contact, error) {
	out, err := s.store.Contacts(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list contacts", err)
	}
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, userID string) (*models.UserProfile, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, fmt.Sprintf(cacheKey, userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).Warn("profile cache read failed", map[string]interface{}{"userId": userID})
		}
		return nil, false
	}
	var p models.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (s *Service) toCache(ctx context.Context, p *models.UserProfile) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(cacheKey, p.UserID), raw, s.ttl).Err(); err != nil {
		s.log.WithError(err).Warn("profile cache write failed", map[string]interface{}{"userId": p.UserID})
	}
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf(cacheKey, userID)).Err(); err != nil {
		s.log.WithError(err).Warn("profile cache invalidation failed", map[string]interface{}{"userId": userID})
	}
}

func validateProfile(p models.UserProfile) error {
	f := &validation.Fields{}
	f.MaxLength("profile_text", p.ProfileText, 8000)
	if p.DateOfBirth != "" {
		f.Check(validation.ValidateDate(p.DateOfBirth), "date_of_birth", "date must be YYYY-MM-DD")
	}
	if p.Email != "" {
		f.Check(validation.ValidateEmail(p.Email), "email", "invalid email address")
	}
	if p.Phone != "" {
		f.Check(phonePattern.MatchString(p.Phone), "phone", "phone must be in E.164 format")
	}
	return f.Err()
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewUnauthenticatedError("no active session")
	}
	return nil
}
