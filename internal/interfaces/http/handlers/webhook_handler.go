package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/interfaces/http/response"
	"payroll-chain.backend/internal/usecases"
)

type webhookService interface {
	HandlePayoutEvent(ctx context.Context, event usecases.PayoutEvent) error
	HandleTransferEvent(ctx context.Context, event usecases.TransferEvent) error
	HandleOperationEvent(ctx context.Context, family string, event usecases.OperationEvent) error
}

// WebhookHandler receives provider notifications. Signature verification
// happens in middleware before these run.
type WebhookHandler struct {
	webhookUsecase webhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase *usecases.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase}
}

// Handle dispatches by event family
// POST /api/v1/webhooks/:family
func (h *WebhookHandler) Handle(c *gin.Context) {
	family := c.Param("family")

	var err error
	switch family {
	case "payouts":
		var event usecases.PayoutEvent
		if bindErr := c.ShouldBindJSON(&event); bindErr != nil {
			response.Error(c, domainerrors.BadRequest(bindErr.Error()))
			return
		}
		err = h.webhookUsecase.HandlePayoutEvent(c.Request.Context(), event)
	case "transfers":
		var event usecases.TransferEvent
		if bindErr := c.ShouldBindJSON(&event); bindErr != nil {
			response.Error(c, domainerrors.BadRequest(bindErr.Error()))
			return
		}
		err = h.webhookUsecase.HandleTransferEvent(c.Request.Context(), event)
	case "gas", "paymaster":
		var event usecases.OperationEvent
		if bindErr := c.ShouldBindJSON(&event); bindErr != nil {
			response.Error(c, domainerrors.BadRequest(bindErr.Error()))
			return
		}
		err = h.webhookUsecase.HandleOperationEvent(c.Request.Context(), family, event)
	default:
		response.Error(c, domainerrors.NotFound("unknown event family"))
		return
	}

	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, nil, "acknowledged")
}
