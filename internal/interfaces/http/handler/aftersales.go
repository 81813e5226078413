package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	aftersalesapp "github.com/tourze/aftersales/internal/application/aftersales"
)

func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// AftersalesHandler handles after-sales request API endpoints
type AftersalesHandler struct {
	BaseHandler
	service *aftersalesapp.AftersalesService
}

// NewAftersalesHandler creates a new AftersalesHandler
func NewAftersalesHandler(service *aftersalesapp.AftersalesService) *AftersalesHandler {
	return &AftersalesHandler{
		service: service,
	}
}

// SweepResultResponse reports how many stale requests a sweep closed
type SweepResultResponse struct {
	Closed int `json:"closed"`
}

// Apply godoc
//
//	@ID				applyAftersales
//	@Summary		Apply for after-sales service
//	@Description	Submit a refund, return-refund, or exchange application for one order line
//	@Tags			aftersales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		aftersalesapp.ApplyAftersalesRequest	true	"After-sales application"
//	@Success		201		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales [post]
func (h *AftersalesHandler) Apply(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	var req aftersalesapp.ApplyAftersalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetDetail godoc
//
//	@ID				getAftersalesDetail
//	@Summary		Get after-sales request detail
//	@Description	Retrieve one after-sales request with its return, refund, exchange legs and audit log
//	@Tags			aftersales
//	@Produce		json
//	@Param			id	path		string	true	"After-sales request ID"	format(uuid)
//	@Success		200	{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales/{id} [get]
func (h *AftersalesHandler) GetDetail(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	resp, err := h.service.GetDetail(c.Request.Context(), &userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
//
//	@ID				listAftersales
//	@Summary		List own after-sales requests
//	@Description	Retrieve a paginated list of the caller's after-sales requests
//	@Tags			aftersales
//	@Produce		json
//	@Param			order_id	query		string	false	"Order ID"	format(uuid)
//	@Param			state		query		string	false	"Lifecycle state"
//	@Param			stage		query		string	false	"Processing stage"
//	@Param			type		query		string	false	"After-sales type"
//	@Param			search		query		string	false	"Search term (number, order number, product name)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]aftersalesapp.AftersalesListItemResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales [get]
func (h *AftersalesHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	var filter aftersalesapp.AftersalesListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Callers only ever see their own requests on this route
	filter.UserID = &userID

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Cancel godoc
//
//	@ID				cancelAftersales
//	@Summary		Cancel own after-sales request
//	@Description	Cancel an in-flight after-sales request before warehouse receipt
//	@Tags			aftersales
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.CancelAftersalesRequest	true	"Cancellation request"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales/{id}/cancel [post]
func (h *AftersalesHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.CancelAftersalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Resubmit godoc
//
//	@ID				resubmitAftersales
//	@Summary		Resubmit a revised application
//	@Description	Resubmit an application that was sent back for modification
//	@Tags			aftersales
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.ResubmitAftersalesRequest	true	"Revised application"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales/{id}/resubmit [post]
func (h *AftersalesHandler) Resubmit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.ResubmitAftersalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Resubmit(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AdminList godoc
//
//	@ID				adminListAftersales
//	@Summary		List after-sales requests (admin)
//	@Description	Retrieve a paginated list of after-sales requests across all users
//	@Tags			aftersales-admin
//	@Produce		json
//	@Param			user_id		query		string	false	"User ID"	format(uuid)
//	@Param			order_id	query		string	false	"Order ID"	format(uuid)
//	@Param			state		query		string	false	"Lifecycle state"
//	@Param			stage		query		string	false	"Processing stage"
//	@Param			type		query		string	false	"After-sales type"
//	@Param			search		query		string	false	"Search term"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]aftersalesapp.AftersalesListItemResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales [get]
func (h *AftersalesHandler) AdminList(c *gin.Context) {
	var filter aftersalesapp.AftersalesListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// AdminGetDetail godoc
//
//	@ID				adminGetAftersalesDetail
//	@Summary		Get after-sales request detail (admin)
//	@Tags			aftersales-admin
//	@Produce		json
//	@Param			id	path		string	true	"After-sales request ID"	format(uuid)
//	@Success		200	{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id} [get]
func (h *AftersalesHandler) AdminGetDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	resp, err := h.service.GetDetail(c.Request.Context(), nil, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Approve godoc
//
//	@ID				approveAftersales
//	@Summary		Approve an after-sales request
//	@Description	Approve a pending application and advance it to the processing stage
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.ApproveAftersalesRequest	false	"Approval note"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/approve [post]
func (h *AftersalesHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.ApproveAftersalesRequest
	// Allow empty body
	_ = c.ShouldBindJSON(&req)

	resp, err := h.service.Approve(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Reject godoc
//
//	@ID				rejectAftersales
//	@Summary		Reject an after-sales request
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.RejectAftersalesRequest	true	"Rejection reason"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/reject [post]
func (h *AftersalesHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.RejectAftersalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RequestModification godoc
//
//	@ID				requestAftersalesModification
//	@Summary		Send an application back for modification
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string										true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.RequestModificationRequest	true	"Modification note"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/request-modification [post]
func (h *AftersalesHandler) RequestModification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.RequestModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.RequestModification(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AdminCancel godoc
//
//	@ID				adminCancelAftersales
//	@Summary		Cancel an after-sales request (admin)
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.CancelAftersalesRequest	true	"Cancellation request"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/cancel [post]
func (h *AftersalesHandler) AdminCancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.CancelAftersalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AdminCancel(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmReceipt godoc
//
//	@ID				confirmAftersalesReceipt
//	@Summary		Confirm warehouse receipt of returned goods
//	@Description	Record warehouse receipt plus inspection outcome for a return in transit
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.ConfirmReceiptRequest		true	"Inspection outcome"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/confirm-receipt [post]
func (h *AftersalesHandler) ConfirmReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.ConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ConfirmReceipt(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmExchangeShipment godoc
//
//	@ID				confirmExchangeShipment
//	@Summary		Confirm replacement goods shipment
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string											true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.ConfirmExchangeShipmentRequest	false	"Shipment tracking info"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/confirm-exchange-shipment [post]
func (h *AftersalesHandler) ConfirmExchangeShipment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.ConfirmExchangeShipmentRequest
	// Allow empty body
	_ = c.ShouldBindJSON(&req)

	resp, err := h.service.ConfirmExchangeShipment(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CSResolve godoc
//
//	@ID				csResolveAftersales
//	@Summary		Resolve an escalated after-sales case
//	@Description	Customer service resolves an escalated case as completed or cancelled
//	@Tags			aftersales-admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.CSResolveRequest	true	"Resolution"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/{id}/cs-resolve [post]
func (h *AftersalesHandler) CSResolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.CSResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CSResolve(c.Request.Context(), id, getOperator(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RefundCallback godoc
//
//	@ID				aftersalesRefundCallback
//	@Summary		Payment gateway refund callback
//	@Description	Records the refund outcome pushed by the payment gateway
//	@Tags			aftersales-callback
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.RefundCallbackRequest	true	"Refund outcome"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/aftersales/callback/refund/{id} [post]
func (h *AftersalesHandler) RefundCallback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid after-sales ID format")
		return
	}

	var req aftersalesapp.RefundCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.RefundCallback(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// SweepTimeouts godoc
//
//	@ID				sweepAftersalesTimeouts
//	@Summary		Close timed-out after-sales requests
//	@Description	Manually trigger the sweep that closes requests stuck past the timeout window
//	@Tags			aftersales-admin
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum requests to close"	default(100)
//	@Success		200		{object}	APIResponse[SweepResultResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/aftersales/sweep-timeouts [post]
func (h *AftersalesHandler) SweepTimeouts(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	closed, err := h.service.SweepTimeouts(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, SweepResultResponse{Closed: closed})
}
