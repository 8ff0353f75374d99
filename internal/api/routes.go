package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantfold/coinbuy/internal/store"
	"github.com/quantfold/coinbuy/internal/tracking"
)

// RegisterRoutes wires the status endpoints onto a fiber app. nc and st are
// optional collaborators; when nil their health checks report "disabled"
// without degrading the overall status.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store, state *tracking.State) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "disabled",
			"store": "disabled",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		if st != nil {
			checks["store"] = "ok"
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.HealthCheck(healthCtx); err != nil {
				checks["store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// Live view of the run: phase, order id, poll count. Useful while the
	// settlement wait is unbounded. When a snapshot store is attached the
	// last recorded venue state of the in-flight order rides along.
	app.Get("/status", func(c *fiber.Ctx) error {
		snap := state.Snapshot()
		if st == nil || snap.OrderID == "" {
			return c.JSON(snap)
		}
		order, err := st.LastOrder(c.Context(), snap.OrderID)
		if err != nil || order == nil {
			return c.JSON(snap)
		}
		return c.JSON(fiber.Map{
			"phase":        snap.Phase,
			"order_id":     snap.OrderID,
			"order_status": snap.OrderStatus,
			"polls":        snap.Polls,
			"failure":      snap.Failure,
			"started_at":   snap.StartedAt,
			"updated_at":   snap.UpdatedAt,
			"order":        order,
		})
	})
}
