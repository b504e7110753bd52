package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"warbler/internal/auth"
	"warbler/internal/config"
	apperrors "warbler/internal/errors"
	"warbler/internal/handler"
	"warbler/internal/metrics"
)

const actorContextKey = "actor"

var errAnonymous = errors.New("no live session")

// SessionResolver turns a session token into an actor.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (auth.Actor, bool)
}

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Message *handler.MessageHandler
	Follow  *handler.FollowHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, sessions SessionResolver, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(loadActor(cfg, sessions))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/signup", h.Auth.Signup)
	api.POST("/login", h.Auth.Login)
	api.GET("/users", h.User.Search)
	api.GET("/users/:id", h.User.Show)
	api.GET("/messages/:id", h.Message.Show)

	// Routes below refuse anonymous requests before any handler runs
	secured := api.Group("", requireActor)

	secured.POST("/logout", h.Auth.Logout)
	secured.GET("/users/:id/followers", h.User.Followers)
	secured.GET("/users/:id/following", h.User.Following)
	secured.POST("/users/follow/:id", h.Follow.Follow)
	secured.POST("/users/stop-following/:id", h.Follow.Unfollow)
	secured.POST("/users/delete", h.User.Delete)
	secured.POST("/messages", h.Message.Create)
	secured.POST("/messages/:id/delete", h.Message.Delete)
	secured.GET("/timeline", h.Message.Timeline)
}

// loadActor reads the session token from the Authorization header or the
// session cookie. Requests without a live session continue anonymously.
func loadActor(cfg *config.Config, sessions SessionResolver) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + cfg.SessionCookie,
		ContextKey:  actorContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			actor, ok := sessions.ResolveSession(c.Request().Context(), token)
			if !ok {
				return nil, errAnonymous
			}
			return actor, nil
		},
		SuccessHandler: func(c echo.Context) {
			actor, ok := c.Get(actorContextKey).(auth.Actor)
			if !ok {
				return
			}
			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithActor(req.Context(), actor)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// requireActor is the authorization gate for mutating and member-only routes.
func requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.ActorFrom(c.Request().Context()); !ok {
			mapped := apperrors.MapErrorToHTTP(apperrors.ErrUnauthorized)
			return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
