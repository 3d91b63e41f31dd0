package handlers

import (
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles admin dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	auditor          *services.LedgerAuditor
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, auditor *services.LedgerAuditor) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		auditor:          auditor,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Users, campaigns and donations at a glance (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}

// AuditLedger compares stored totals with the sum of completed donations
// @Summary Audit ledger totals
// @Description Reports campaigns and giver profiles whose totals drifted. Nothing is repaired. (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /admin/ledger/audit [get]
func (h *DashboardHandler) AuditLedger(c *fiber.Ctx) error {
	drifts, err := h.auditor.Audit(c.Context())
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Ledger audit completed", fiber.Map{
		"consistent": len(drifts) == 0,
		"drifts":     drifts,
	})
}
