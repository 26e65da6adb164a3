package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"ispcrm/internal/services"
)

type ReportsHandler struct {
	service     *services.ReportService
	userService services.UserService
}

func NewReportsHandler(service *services.ReportService, userService services.UserService) *ReportsHandler {
	return &ReportsHandler{service: service, userService: userService}
}

// @Summary      Sales summary
// @Description  Manager only. Lead and deal counters by status plus approved revenue.
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.SalesSummary
// @Router       /reports/summary [get]
func (h *ReportsHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", summary)
}

// @Summary      Deals report
// @Description  Manager only. Paginated listing of every deal.
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  map[string]interface{}
// @Router       /reports/deals [get]
func (h *ReportsHandler) Deals(c *gin.Context) {
	page, limit := pageParams(c, 50)

	deals, err := h.service.Deals(page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", deals)
}

// @Summary      Price-approval audit trail
// @Description  Manager only. Approval rows joined with deal, product and people names.
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "PENDING, APPROVED or REJECTED"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  map[string]interface{}
// @Router       /reports/approvals [get]
func (h *ReportsHandler) Approvals(c *gin.Context) {
	page, limit := pageParams(c, 50)

	rows, err := h.service.ApprovalAudit(c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", rows)
}

// @Summary      Export the sales report as PDF
// @Description  Manager only.
// @Tags         Reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /reports/deals/export.pdf [get]
func (h *ReportsHandler) Export(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	generatedBy := "manager"
	if user, err := h.userService.GetUserByID(userID); err == nil && user != nil {
		generatedBy = user.Name
	}

	var buf bytes.Buffer
	if err := h.service.ExportSalesReport(generatedBy, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sales_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
