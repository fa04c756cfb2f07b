package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/assignment"
	"github.com/trezcool/ratiba/core/autosave"
	"github.com/trezcool/ratiba/core/journal"
	"github.com/trezcool/ratiba/core/timetable"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		TimetableSvc  *timetable.Service
		JournalSvc    *journal.Service
		AssignmentSvc *assignment.Service
		Autosave      *autosave.Pipeline
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps         ServerDeps
		app          *echo.Echo
		serverErrors chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:         deps,
		app:          echo.New(),
		serverErrors: make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig())

	v1.GET("/me", me, jwt)

	registerTimetableAPI(v1, jwt, s.deps.TimetableSvc, s.deps.Validate)
	registerJournalAPI(v1, jwt, s.deps.JournalSvc, s.deps.TimetableSvc, s.deps.Autosave)
	registerAssignmentAPI(v1, jwt, s.deps.AssignmentSvc, s.deps.Validate)
}

func (s *server) Start() {
	s.serverErrors <- s.app.Start(s.deps.Conf.Server.Addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.serverErrors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownChan
}

// signalShutdown is used to gracefully shutdown the Server when an integrity issue is identified.
func (s *server) signalShutdown() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Ratiba API!")
}
