package sochx

import (
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-errors"
)

// Server assembles the HTTP surface: REST endpoints under /api, the realtime
// gateway under /ws, and a health probe.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger Logger
	repo   RepositoryManager
	hub    *Hub
	tokens TokenService
	mailer Mailer
	google GoogleVerifier
}

type ServerOption func(*Server) *Server

// WithMailer swaps the default log-only mailer for a real provider.
func WithMailer(mailer Mailer) ServerOption {
	return func(s *Server) *Server {
		if mailer != nil {
			s.mailer = mailer
		}
		return s
	}
}

// WithGoogleVerifier overrides the Google token verifier. Tests inject a
// stub here.
func WithGoogleVerifier(verifier GoogleVerifier) ServerOption {
	return func(s *Server) *Server {
		if verifier != nil {
			s.google = verifier
		}
		return s
	}
}

// WithServerLogger overrides the default logger.
func WithServerLogger(logger Logger) ServerOption {
	return func(s *Server) *Server {
		if logger != nil {
			s.logger = logger
		}
		return s
	}
}

func NewServer(cfg Config, repo RepositoryManager, opts ...ServerOption) *Server {
	s := &Server{
		cfg:    cfg,
		repo:   repo,
		logger: defLogger{},
		hub:    NewHub(nil),
	}

	for _, opt := range opts {
		s = opt(s)
	}

	if s.mailer == nil {
		s.mailer = NewLogMailer(cfg.GetFrontendURL(), s.logger)
	}

	if s.google == nil {
		s.google = NewGoogleTokenInfoVerifier(cfg.GetGoogleClientID())
	}

	s.tokens = NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenExpiration(), s.logger)

	s.app = fiber.New(fiber.Config{
		ErrorHandler: s.errorHandler,
	})

	s.mount()

	return s
}

// App exposes the fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub exposes the realtime hub so out-of-request producers can emit.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Listen starts serving on addr and blocks.
func (s *Server) Listen(addr string) error {
	s.logger.Info("server listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) mount() {
	transport := NewSessionTransport(s.cfg.IsProduction())
	hasher := NewBcryptAuthenticator(DefaultBcryptCost)
	guard := NewGuard(s.tokens, transport, s.repo.Users(), s.logger)
	dispatcher := NewNotificationDispatcher(s.repo.Notifications(), s.hub, s.logger)

	reset := NewPasswordResetFlow(s.repo, hasher, HexSecretGenerator{}, s.mailer, s.logger)

	s.app.Use(recover.New())
	s.app.Use(helmet.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.GetCORSOrigin(),
		AllowCredentials: true,
	}))
	s.app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")

	auth := &AuthController{
		Logger:    s.logger,
		Repo:      s.repo,
		Tokens:    s.tokens,
		Transport: transport,
		Hasher:    hasher,
		Reset:     reset,
		Google:    s.google,
	}
	auth.Register(api, guard)

	(&UsersController{Logger: s.logger, Repo: s.repo}).Register(api, guard)
	(&ProjectsController{Logger: s.logger, Repo: s.repo, Dispatcher: dispatcher}).Register(api, guard)
	(&CommunityController{Logger: s.logger, Repo: s.repo, Dispatcher: dispatcher}).Register(api, guard)
	(&ResourcesController{Logger: s.logger, Repo: s.repo, Dispatcher: dispatcher}).Register(api, guard)
	(&MatchingController{Logger: s.logger, Repo: s.repo}).Register(api, guard)
	(&NotificationsController{Logger: s.logger, Repo: s.repo}).Register(api, guard)
	(&AdminController{Logger: s.logger, Repo: s.repo}).Register(api, guard)

	gateway := NewRealtimeGateway(s.hub, s.tokens, s.logger)
	s.app.Get("/ws", gateway.Upgrade, gateway.Handler())
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		status := richErr.Code
		if status <= 0 {
			status = statusForCategory(richErr)
		}

		if status >= fiber.StatusInternalServerError {
			s.logger.Error("request failed: %s (%s)", richErr.Message, richErr.Category)
		}

		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{
				"message":   richErr.Message,
				"text_code": richErr.TextCode,
				"category":  richErr.Category,
			},
		})
	}

	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{"message": fiberErr.Message},
		})
	}

	s.logger.Error("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "An unexpected server error occurred"},
	})
}

func statusForCategory(richErr *errors.Error) int {
	switch richErr.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
