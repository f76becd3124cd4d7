package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dental-clinic-desk/internal/handler"
)

// RegisterRecords registers patient intake and the record listings. The
// dentist and treatment lists change rarely and go through cache when one
// is given.
func RegisterRecords(e *echo.Echo, h *handler.RecordsHandler, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	g := staffGroup(e, jwtSecret, limit)

	g.GET("/patients", h.ListPatients)
	g.POST("/patients", h.CreatePatient)
	g.GET("/patients/:id/history", h.PatientHistory)

	var cached []echo.MiddlewareFunc
	if cache != nil {
		cached = append(cached, cache)
	}
	g.GET("/dentists", h.ListDentists, cached...)
	g.GET("/treatments", h.ListTreatments, cached...)

	g.GET("/appointments", h.ListAppointments)
	g.GET("/payments", h.ListPayments)
}
