package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	aftersalesapp "github.com/tourze/aftersales/internal/application/aftersales"
)

// RefundHandler handles refund quote API endpoints
type RefundHandler struct {
	BaseHandler
	refundService *aftersalesapp.RefundService
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(refundService *aftersalesapp.RefundService) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
	}
}

// Quote godoc
//
//	@ID				quoteRefund
//	@Summary		Calculate refundable amounts
//	@Description	Pre-submission quote of the maximum refundable amount per order line
//	@Tags			aftersales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		aftersalesapp.RefundQuoteRequest	true	"Quote request"
//	@Success		200		{object}	APIResponse[aftersales.RefundQuote]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales/refund-quote [post]
func (h *RefundHandler) Quote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	var req aftersalesapp.RefundQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.refundService.CalculateRefundInfo(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// OrderRefundable godoc
//
//	@ID				getOrderRefundable
//	@Summary		Get refundable amounts for an order
//	@Description	Per-line maximum refundable amounts at full quantity
//	@Tags			orders
//	@Produce		json
//	@Param			orderId	path		string	true	"Order ID"
//	@Success		200		{object}	APIResponse[aftersalesapp.OrderRefundableResponse]
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{orderId}/refundable [get]
func (h *RefundHandler) OrderRefundable(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.refundService.OrderRefundable(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// OrderLineStatus godoc
//
//	@ID				getOrderLineStatus
//	@Summary		Get per-line after-sales status for an order
//	@Description	After-sales markers the order system sees for each line
//	@Tags			orders
//	@Produce		json
//	@Param			orderId	path		string	true	"Order ID"
//	@Success		200		{object}	APIResponse[aftersalesapp.OrderLineStatusResponse]
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{orderId}/line-status [get]
func (h *RefundHandler) OrderLineStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.refundService.OrderLineStatus(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
