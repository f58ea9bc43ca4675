// Package genai generates statements of purpose, recommendation letters and
// scholarship matches through the LLM client.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/llm"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"
	"scholarship-tracker/internal/common/observability"
	"scholarship-tracker/internal/models"

	"github.com/google/uuid"
)

const (
	KindSOP     = "sop"
	KindLOR     = "lor"
	KindMatches = "matches"
)

type Config struct {
	SOPModel   string
	LORModel   string
	MatchModel string
}

type Generator struct {
	llm    llm.Client
	config Config
	obs    *observability.Observability
	log    logger.Logger
	now    func() time.Time
}

func NewGenerator(client llm.Client, config Config, obs *observability.Observability, log logger.Logger) *Generator {
	return &Generator{
		llm:    client,
		config: config,
		obs:    obs,
		log:    logger.Component(log, "genai"),
		now:    time.Now,
	}
}

// GenerateSOP writes a statement of purpose for profile. message is passed
// through as the user's own instructions.
func (g *Generator) GenerateSOP(ctx context.Context, message, profile string) (string, error) {
	return g.complete(ctx, KindSOP, llm.ChatRequest{
		Model:  g.config.SOPModel,
		System: sopPrompt(profile),
		User:   message,
	})
}

// GenerateLOR writes a letter of recommendation for profile.
func (g *Generator) GenerateLOR(ctx context.Context, message, profile string) (string, error) {
	return g.complete(ctx, KindLOR, llm.ChatRequest{
		Model:  g.config.LORModel,
		System: lorPrompt(profile),
		User:   message,
	})
}

// FindMatches asks the model for scholarships fitting profile. The response
// must satisfy the match schema; each match gets a fresh id, the matched
// status and an empty document bundle.
func (g *Generator) FindMatches(ctx context.Context, profile string) ([]models.Scholarship, error) {
	if strings.TrimSpace(profile) == "" {
		return nil, apperrors.NewFieldValidationError("user_profile", "profile is required")
	}

	raw, err := g.complete(ctx, KindMatches, llm.ChatRequest{
		Model:      g.config.MatchModel,
		System:     matchPrompt(profile, g.now().Year()+1),
		User:       "Find matching scholarships based on the provided profile.",
		SchemaName: matchSchemaName,
		Schema:     json.RawMessage(matchSchemaJSON),
	})
	if err != nil {
		return nil, err
	}

	result, err := matchSchema.ValidateBytes([]byte(raw))
	if err != nil {
		metrics.GenerationCalls.WithLabelValues(KindMatches, "schema_violation").Inc()
		return nil, apperrors.NewSchemaViolationError(err.Error())
	}
	if !result.Valid {
		metrics.GenerationCalls.WithLabelValues(KindMatches, "schema_violation").Inc()
		return nil, apperrors.NewSchemaViolationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var payload struct {
		Scholarships []models.Scholarship `json:"scholarships"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, apperrors.NewSchemaViolationError(err.Error())
	}

	out := make([]models.Scholarship, 0, len(payload.Scholarships))
	for _, s := range payload.Scholarships {
		out = append(out, stamp(s))
	}

	g.obs.RecordMatchesGenerated(ctx, len(out))
	g.log.Info("matches generated", map[string]interface{}{"count": len(out)})
	return out, nil
}

func (g *Generator) complete(ctx context.Context, kind string, req llm.ChatRequest) (string, error) {
	start := time.Now()
	out, err := g.llm.Complete(ctx, req)
	metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		status := "error"
		stdErr := apperrors.NewGenerationFailedError(kind, err)
		if errors.Is(err, llm.ErrTimeout) {
			status = "timeout"
			stdErr = apperrors.NewGenerationTimeoutError(kind, err)
		}
		metrics.GenerationCalls.WithLabelValues(kind, status).Inc()
		g.log.WithError(err).Error("generation failed", map[string]interface{}{
			"kind":  kind,
			"model": req.Model,
		})
		return "", stdErr
	}
	metrics.GenerationCalls.WithLabelValues(kind, "success").Inc()
	return out, nil
}

// stamp normalizes one generated scholarship.
func stamp(s models.Scholarship) models.Scholarship {
	s.ID = uuid.NewString()
	s.Status = models.StatusMatched
	s.Documents = models.NewDocumentBundle()
	s.Version = 0

	switch {
	case s.MatchingScore < 0:
		s.MatchingScore = 0
	case s.MatchingScore > 100:
		s.MatchingScore = 100
	}

	if s.Deadline != nil {
		if _, err := time.Parse(models.DeadlineLayout, strings.TrimSpace(*s.Deadline)); err != nil {
			s.Deadline = nil
		}
	}
	if s.EligibilityCriteria == nil {
		s.EligibilityCriteria = []string{}
	}
	if s.ApplicationProcedure == nil {
		s.ApplicationProcedure = []string{}
	}
	return s
}

func sopPrompt(profile string) string {
	return fmt.Sprintf(`You are an expert Statement of Purpose (SOP) writer. Write a compelling SOP for %s.

Your SOP should:
1. Be written in clear, professional English
2. Open with an introduction that captures attention
3. Highlight the applicant's academic achievements and relevant skills
4. Explain their motivation for choosing this academic program
5. Show an understanding of the target university's academic environment
6. Show how their background makes them a good fit for the program
7. Give specific examples of academic and extracurricular achievements
8. Close with their academic and career goals

The SOP should be approximately 500 words. Only write the SOP, no other text.`, profile)
}

func lorPrompt(profile string) string {
	return fmt.Sprintf(`You are an expert Letter of Recommendation (LOR) writer. Write a compelling LOR for %s.

Your LOR should:
1. Be written in clear, professional English
2. Open by establishing the recommender's relationship with the applicant
3. Highlight the applicant's academic performance and achievements
4. Give specific examples of their skills, work ethic and character
5. Describe concrete instances where they showed exceptional ability
6. Compare them favorably to their peers
7. Address their potential for success in their chosen field
8. Close with a strong recommendation and an offer to provide more information

The LOR should be approximately 500 words. Only write the LOR, no other text.`, profile)
}

func matchPrompt(profile string, year int) string {
	return fmt.Sprintf(`You are an expert scholarship advisor. Based on the following user profile, find relevant scholarships:

%s

Find 5-6 relevant scholarships. Ensure all fields are properly filled. If information is not available, use appropriate default values. The deadline must be in the format "MM/DD/YYYY" and fall in the year %d. The matching_score is a number from 0 to 100.`, profile, year)
}
