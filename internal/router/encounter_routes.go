package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dental-clinic-desk/internal/handler"
)

// RegisterEncounters registers the desk session endpoints. All routes need a
// staff token; each session is only visible to the operator who opened it.
func RegisterEncounters(e *echo.Echo, h *handler.EncounterHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := staffGroup(e, jwtSecret, limit)

	g.POST("/encounters", h.Create)
	g.GET("/encounters/:id", h.Get)
	g.DELETE("/encounters/:id", h.Delete)

	g.PUT("/encounters/:id/party", h.SetParty)
	g.POST("/encounters/:id/items", h.AddItem)
	g.DELETE("/encounters/:id/items/last", h.RemoveLastItem)
	g.PUT("/encounters/:id/note", h.SetNote)

	g.POST("/encounters/:id/payment", h.Pay)
	g.POST("/encounters/:id/resume", h.Resume)

	g.POST("/encounters/:id/history", h.SessionHistory)
	g.POST("/appointments/:id/history", h.AppointmentHistory)
}
