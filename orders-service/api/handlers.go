package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"microshop/events"
	"microshop/orders-service/domain"
)

const publishTimeout = 5 * time.Second

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, validator UserValidator, pub Publisher, keys Keys) {
	e.GET("/healthz", healthz())
	e.GET("/", listOrders(store))
	e.POST("/", createOrder(store, validator, pub, keys.OrderCreated))
	e.GET("/:id", getOrder(store))
	e.DELETE("/:id", cancelOrder(store, pub, keys.OrderCancelled))
}

type errorResponse struct {
	Error string `json:"error"`
}

type cancelResponse struct {
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "service": "orders"})
	}
}

func listOrders(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		orders, err := store.ListOrders(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, orders)
	}
}

func createOrder(store Storage, validator UserValidator, pub Publisher, routingKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var in domain.NewOrderInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		items, err := in.Validate()
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		if err := validator.ValidateUser(ctx, in.UserID); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidUser):
				return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			case errors.Is(err, domain.ErrServiceUnavailable):
				return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			default:
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
			}
		}

		order := domain.Order{
			ID:        uuid.NewString(),
			UserID:    in.UserID,
			Items:     items,
			Total:     *in.Total,
			Status:    domain.StatusCreated,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateOrder(ctx, order); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}

		publishEvent(pub, routingKey, order)
		return c.JSON(http.StatusCreated, order)
	}
}

func getOrder(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		order, err := store.GetOrder(c.Request().Context(), c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		if order == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		}
		return c.JSON(http.StatusOK, order)
	}
}

func cancelOrder(store Storage, pub Publisher, routingKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		order, err := store.GetOrder(ctx, c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		if order == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		}

		order.Cancel(time.Now())
		if err := store.UpdateOrder(ctx, *order); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}

		publishEvent(pub, routingKey, events.OrderRef{OrderID: order.ID})
		return c.JSON(http.StatusOK, cancelResponse{Message: "order cancelled", Order: *order})
	}
}

// publishEvent is fire-and-forget relative to the committed write: a failed
// publish is logged and never rolls back or fails the HTTP response.
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
