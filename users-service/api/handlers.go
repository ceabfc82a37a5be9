package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"microshop/users-service/domain"
)

const publishTimeout = 5 * time.Second

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, pub Publisher, keys Keys) {
	e.GET("/healthz", healthz())
	e.GET("/", listUsers(store))
	e.POST("/", createUser(store, pub, keys.UserCreated))
	e.GET("/:id", getUser(store))
	e.PUT("/:id", updateUser(store, pub, keys.UserUpdated))
}

type errorResponse struct {
	Error string `json:"error"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "service": "users"})
	}
}

func listUsers(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := store.ListUsers(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, users)
	}
}

func createUser(store Storage, pub Publisher, routingKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in domain.NewUserInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := in.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		user := domain.User{
			ID:        uuid.NewString(),
			Name:      in.Name,
			Email:     in.Email,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateUser(c.Request().Context(), user); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}

		publishEvent(pub, routingKey, user)
		return c.JSON(http.StatusCreated, user)
	}
}

func getUser(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := store.GetUser(c.Request().Context(), c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		if user == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		}
		return c.JSON(http.StatusOK, user)
	}
}

func updateUser(store Storage, pub Publisher, routingKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var in domain.UpdateUserInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		user, err := store.GetUser(ctx, c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		if user == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		}

		if in.Name != "" {
			user.Name = in.Name
		}
		if in.Email != "" {
			user.Email = in.Email
		}
		now := time.Now().UTC()
		user.UpdatedAt = &now

		if err := store.UpdateUser(ctx, *user); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}

		publishEvent(pub, routingKey, *user)
		return c.JSON(http.StatusOK, user)
	}
}

// publishEvent is fire-and-forget relative to the committed write: a failed
// publish is logged and never rolls back or fails the HTTP response. The
// publish runs on a fresh context so a cancelled request cannot abort it.
func publishEvent(pub Publisher, routingKey string, payload any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		log.WithError(err).WithField("routing_key", routingKey).Warn("event publish failed")
		return
	}
	log.WithField("routing_key", routingKey).Debug("event published")
}
