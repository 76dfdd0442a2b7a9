package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/service"
	"github.com/intakelog/internal/view"
)

const chartTitle = "Daily Totals"

// RenderChart 输出当日合计的柱状图
func (a *API) RenderChart(c *gin.Context) {
	state, err := a.currentSession(c)
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := view.RenderTotalsChart(&buf, chartTitle, state.Ledger.GrandTotals().Values()); err != nil {
		a.handleIntakeError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// ExportDayLog 下载当日记录；没有任何记录时返回 404
func (a *API) ExportDayLog(c *gin.Context) {
	state, err := a.currentSession(c)
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}
	if state.Ledger.Len() == 0 {
		a.handleIntakeError(c, service.ErrDayLogEmpty)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteDayLog(&buf, state.Ledger); err != nil {
		a.handleIntakeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.DayLogFilename(state.SelectedDate)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
