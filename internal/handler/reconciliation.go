package handler

import (
	"net/http"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/middleware"
	"github.com/Alishanbouraa/chickensap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReconciliationHandler struct{ svc service.ReconciliationService }

func NewReconciliationHandler(svc service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc}
}

func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.ReconcileTruckDay(c.Request.Context(), claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReconciliationHandler) Get(c *gin.Context) {
	truckID, err := uuid.Parse(c.Param("truck_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid truck id"))
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid date, expected YYYY-MM-DD"))
		return
	}
	resp, err := h.svc.GetReconciliation(c.Request.Context(), truckID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReconciliationHandler) List(c *gin.Context) {
	var filter dto.ReconciliationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListReconciliations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
