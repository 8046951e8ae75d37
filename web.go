package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/rs/zerolog/log"

	"briecrop/cropper"
)

//go:embed static
var staticFS embed.FS
var isDebug = os.Getenv("DEBUG") == "1"

type Config struct {
	RootDir          string
	OutputDir        string
	Addr             string
	Sessions         *SessionManager
	Store            Store
	OnBeforeShutdown func()
	OnReady          func(addr string)
	OnSave           func(ops Operations)
	OnCrop           func(ref string)
}

type WebApp struct {
	config       Config
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func NewWebApp(config Config) *WebApp {
	return &WebApp{
		config:     config,
		shutdownCh: make(chan struct{}),
	}
}

func (a *WebApp) Shutdown() {
	a.shutdownOnce.Do(func() {
		close(a.shutdownCh)
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	log.Ctx(c.Context()).Error().
		Err(err).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Msg("Request failed")
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == http.StatusNotFound && c.Path() == "/favicon.ico" {
			return nil
		}
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	if code := statusFor(err); code != 0 {
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, errOutsideRoot):
		return http.StatusBadRequest
	case errors.Is(err, errSessionClosed):
		return http.StatusGone
	case errors.Is(err, cropper.ErrNotInitialized), errors.Is(err, cropper.ErrNoImage):
		return http.StatusConflict
	case errors.Is(err, cropper.ErrZeroDimensionImage):
		return http.StatusUnprocessableEntity
	}
	return 0
}

func (a *WebApp) session(c *fiber.Ctx) (*Session, error) {
	return a.config.Sessions.Get(c.Params("id"))
}

// newApp builds the fiber application with every route registered.
func (a *WebApp) newApp() *fiber.App {
	webapp := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	webapp.Hooks().OnListen(func(listen fiber.ListenData) error {
		if fn := a.config.OnReady; fn != nil {
			fn(fmt.Sprintf("http://%s:%s", listen.Host, listen.Port))
		}
		return nil
	})

	filesRoot := http.Dir(a.config.RootDir)
	webapp.Get("/api/view", func(c *fiber.Ctx) error {
		filePath := c.Query("file")
		return filesystem.SendFile(c, filesRoot, filePath)
	})

	webapp.Get("/api/ls", func(c *fiber.Ctx) error {
		dir, err := walkImages(c.UserContext(), a.config.RootDir, a.config.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to walk dir: %w", err)
		}

		for i := range dir.Files {
			dir.Files[i].URL = "/api/view?file=" + url.QueryEscape(dir.Files[i].Name)
		}

		return c.JSON(dir)
	})

	api := webapp.Group("/api/sessions")
	api.Post("/", func(c *fiber.Ctx) error {
		var opts SessionOptions
		if err := c.BodyParser(&opts); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		s, err := a.config.Sessions.Open(opts)
		if err != nil {
			return err
		}
		v, err := s.View(c.UserContext())
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(v)
	})

	api.Get("/:id", func(c *fiber.Ctx) error {
		s, err := a.session(c)
		if err != nil {
			return err
		}
		v, err := s.View(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(v)
	})

	api.Put("/:id/viewport", func(c *fiber.Ctx) error {
		var vp cropper.Viewport
		if err := c.BodyParser(&vp); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		s, err := a.session(c)
		if err != nil {
			return err
		}
		v, err := s.Resize(c.UserContext(), vp)
		if err != nil {
			return err
		}
		return c.JSON(v)
	})

	api.Post("/:id/touch", func(c *fiber.Ctx) error {
		var ev cropper.TouchEvent
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if !ev.Phase.Valid() {
			return fiber.NewError(http.StatusBadRequest, "missing touch phase")
		}
		s, err := a.session(c)
		if err != nil {
			return err
		}
		res, err := s.Touch(c.UserContext(), ev)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	api.Post("/:id/reset", func(c *fiber.Ctx) error {
		s, err := a.session(c)
		if err != nil {
			return err
		}
		v, err := s.Reset(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(v)
	})

	api.Get("/:id/operation", func(c *fiber.Ctx) error {
		s, err := a.session(c)
		if err != nil {
			return err
		}
		op, err := s.Operation(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(op)
	})

	api.Post("/:id/crop", func(c *fiber.Ctx) error {
		s, err := a.session(c)
		if err != nil {
			return err
		}
		ref, region, err := s.Crop(c.UserContext(), a.config.Store)
		if err != nil {
			return err
		}
		if fn := a.config.OnCrop; fn != nil {
			fn(ref)
		}
		return c.JSON(fiber.Map{"ref": ref, "region": region})
	})

	api.Delete("/:id", func(c *fiber.Ctx) error {
		if err := a.config.Sessions.Close(c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	})

	webapp.Post("/api/save", func(c *fiber.Ctx) error {
		var request struct {
			Operations []Operation `json:"operations"`
		}

		if err := c.BodyParser(&request); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if fn := a.config.OnSave; fn != nil {
			fn(request.Operations)
		}

		return c.SendStatus(http.StatusNoContent)
	})
	webapp.Post("/api/shutdown", func(c *fiber.Ctx) error {
		a.Shutdown()
		return nil
	})

	if isDebug {
		log.Debug().Msg("Debug mode enabled, serving static files from './static' directory")
		webapp.Static("/", "static")
	} else {
		log.Debug().Msg("Serving static files from embedded filesystem")
		webapp.Use("/", filesystem.New(filesystem.Config{
			Root:       http.FS(staticFS),
			PathPrefix: "/static",
		}))
	}

	return webapp
}

func (a *WebApp) Run(ctx context.Context) error {
	webapp := a.newApp()

	go func() {
		select {
		case <-ctx.Done():
		case <-a.shutdownCh:
		}
		if fn := a.config.OnBeforeShutdown; fn != nil {
			fn()
		}
		if err := webapp.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to shutdown web application")
		}
		a.config.Sessions.CloseAll()
	}()

	addr := a.config.Addr
	if addr == "" {
		// Let the OS assign a random available port
		addr = "localhost:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if err := webapp.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
