package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) DailySummary(c *gin.Context) {
	dateStr := c.Query("date")
	date := time.Now()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// WastageExcel streams the wastage workbook for a date range.
func (h *ReportsHandler) WastageExcel(c *gin.Context) {
	var filter dto.WastageReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("from and to dates are required (YYYY-MM-DD)"))
		return
	}

	buf, err := h.svc.ExportWastageExcel(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("wastage_%s_%s.xlsx", filter.From, filter.To)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
