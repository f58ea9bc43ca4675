// Package api exposes the scholarship tracker over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scholarship-tracker/internal/common/auth"
	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/documents"
	"scholarship-tracker/internal/genai"
	"scholarship-tracker/internal/mentors"
	"scholarship-tracker/internal/profile"
	"scholarship-tracker/internal/scholarships"
	"scholarship-tracker/internal/search"
	"scholarship-tracker/internal/tasks"
)

// Generator writes statements of purpose and recommendation letters.
type Generator interface {
	GenerateSOP(ctx context.Context, message, profile string) (string, error)
	GenerateLOR(ctx context.Context, message, profile string) (string, error)
}

// MatchRunner generates and persists scholarship matches.
type MatchRunner interface {
	Run(ctx context.Context, userID, profile string) (*genai.MatchResult, error)
}

type Searcher interface {
	Search(ctx context.Context, userID string, q search.Query) (*search.Result, error)
}

// Limiter rejects a call once key has spent its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) error
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Check is a readiness probe for one dependency.
type Check func(ctx context.Context) error

// Deps are the services the API routes to. Every field is required except
// Limiter and Checks.
type Deps struct {
	Scholarships *scholarships.Service
	Documents    *documents.Manager
	Tasks        *tasks.Service
	Profiles     *profile.Service
	Mentors      *mentors.Service
	Generator    Generator
	Matches      MatchRunner
	Search       Searcher
	Limiter      Limiter
	Verifier     TokenVerifier

	AdminRole          string
	CORSOrigins        []string
	MaxUploadBytes     int64
	ReminderWindowDays int
	Checks             map[string]Check
	Logger             logger.Logger
}

type Server struct {
	deps Deps
	log  logger.Logger
	now  func() time.Time
}

func NewServer(deps Deps) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 64 << 20
	}
	if deps.ReminderWindowDays <= 0 {
		deps.ReminderWindowDays = 30
	}
	return &Server{
		deps: deps,
		log:  logger.Component(deps.Logger, "api"),
		now:  time.Now,
	}
}

// Router builds the chi route tree with the shared middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(httpx.CORS(s.deps.CORSOrigins).Handler)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Generation keeps its own {error} contract, so auth is optional here
		// and each handler decides how to answer an anonymous caller.
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate(false))
			r.Post("/generate_sop", s.generateSOP)
			r.Post("/generate_lor", s.generateLOR)
			r.Post("/get_matched_scholarships", s.matchedScholarships)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate(true))

			r.Route("/scholarships", func(r chi.Router) {
				r.Get("/", s.listScholarships)
				r.Get("/dashboard", s.dashboard)
				r.Get("/deadlines", s.scholarshipDeadlines)
				r.Get("/search", s.searchScholarships)
				r.Post("/add", s.addScholarship)
				r.Post("/remove", s.removeScholarship)
				r.Post("/matches", s.persistMatches)
				r.Get("/{scholarshipID}", s.getScholarship)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.listDocuments)
				r.Get("/bundle", s.documentBundle)
				r.Get("/files/{fileID}/url", s.downloadURL)
				r.Post("/{category}", s.uploadDocuments)
				r.Delete("/{category}/{fileID}", s.deleteDocument)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.listTasks)
				r.Post("/", s.addTask)
				r.Get("/upcoming", s.upcomingDeadlines)
				r.Post("/from-scholarship/{scholarshipID}", s.addTaskFromScholarship)
				r.Get("/{taskID}", s.getTask)
				r.Delete("/{taskID}", s.deleteTask)
				r.Post("/{taskID}/subtasks/{subtaskID}/toggle", s.toggleSubtask)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", s.getProfile)
				r.Put("/", s.saveProfile)
				r.Get("/questions", s.intakeQuestions)
				r.Post("/intake", s.intake)
			})

			r.Route("/mentors", func(r chi.Router) {
				r.Get("/", s.listMentors)
				r.Post("/", s.registerMentor)
				r.Get("/me", s.myMentorProfile)
				r.Put("/me", s.updateMentor)
				r.Post("/me/timeslots", s.addTimeslot)
				r.Delete("/me/timeslots/{timeslotID}", s.deleteTimeslot)
				r.Get("/me/appointments", s.mentorAppointments)
				r.Get("/{mentorID}", s.getMentor)
				r.Get("/{mentorID}/timeslots", s.listTimeslots)
				r.Post("/{mentorID}/book", s.bookAppointment)
				r.Post("/{mentorID}/rate", s.rateMentor)
			})
			r.Get("/appointments", s.myBookings)

			r.Route("/cv", func(r chi.Router) {
				r.Get("/templates", s.cvTemplates)
				r.Post("/render", s.renderCV)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/mentors", s.adminListMentors)
				r.Post("/mentors/{mentorID}/verify", s.verifyMentor)
			})
		})
	})

	return r
}
