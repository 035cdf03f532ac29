package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/interfaces/http/middleware"
	"payroll-chain.backend/internal/interfaces/http/response"
	"payroll-chain.backend/internal/usecases"
	"payroll-chain.backend/pkg/utils"
)

type payrollService interface {
	SupportedChains() []string
	CreateRun(ctx context.Context, adminID uuid.UUID, rows []entities.WorkerRow) (*entities.PayrollRun, error)
	ExecuteRun(ctx context.Context, runID uuid.UUID) error
	GetRun(ctx context.Context, runID uuid.UUID) (*entities.PayrollRun, error)
	ListRuns(ctx context.Context, adminID uuid.UUID, page, limit int) ([]*entities.PayrollRun, utils.PaginationMeta, error)
}

// PayrollHandler handles payroll run endpoints
type PayrollHandler struct {
	payrollUsecase payrollService
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(payrollUsecase *usecases.PayrollUsecase) *PayrollHandler {
	return &PayrollHandler{payrollUsecase: payrollUsecase}
}

// UploadCSV parses and validates a payroll batch without creating anything
// POST /api/v1/payroll/upload
func (h *PayrollHandler) UploadCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("multipart field 'file' is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	rows, summary, err := usecases.ParsePayrollCSV(file, h.payrollUsecase.SupportedChains())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"workers": rows,
		"summary": summary,
	})
}

// CreateRun creates a payroll run from worker rows
// POST /api/v1/payroll/runs
func (h *PayrollHandler) CreateRun(c *gin.Context) {
	var input entities.CreateRunInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("admin not authenticated"))
		return
	}

	run, err := h.payrollUsecase.CreateRun(c.Request.Context(), adminID, input.Workers)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, run)
}

// ExecuteRun triggers asynchronous run execution
// POST /api/v1/payroll/runs/:id/execute
func (h *PayrollHandler) ExecuteRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid run id"))
		return
	}

	if err := h.payrollUsecase.ExecuteRun(c.Request.Context(), runID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, gin.H{
		"runId":  runID,
		"status": entities.RunStatusProcessing,
	}, "processing")
}

// GetRun returns one run with its items
// GET /api/v1/payroll/runs/:id
func (h *PayrollHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid run id"))
		return
	}

	run, err := h.payrollUsecase.GetRun(c.Request.Context(), runID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, run)
}

// ListRuns returns the admin's runs
// GET /api/v1/payroll/runs?page&limit
func (h *PayrollHandler) ListRuns(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("admin not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, meta, err := h.payrollUsecase.ListRuns(c.Request.Context(), adminID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if runs == nil {
		runs = []*entities.PayrollRun{}
	}

	response.Paginated(c, http.StatusOK, runs, meta)
}
