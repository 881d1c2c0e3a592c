package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestObserver recibe la duración de cada petición atendida.
type RequestObserver interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}

// RequestMetrics mide cada petición usando la ruta registrada como etiqueta.
func RequestMetrics(obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" || path == "/" {
			path = "unmatched"
		}
		obs.ObserveHTTP(c.Method(), path, status, time.Since(start))
		return err
	}
}
