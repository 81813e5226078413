package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	aftersalesapp "github.com/tourze/aftersales/internal/application/aftersales"
)

// ReturnExpressHandler handles return shipment API endpoints
type ReturnExpressHandler struct {
	BaseHandler
	expressService *aftersalesapp.ReturnExpressService
}

// NewReturnExpressHandler creates a new ReturnExpressHandler
func NewReturnExpressHandler(expressService *aftersalesapp.ReturnExpressService) *ReturnExpressHandler {
	return &ReturnExpressHandler{
		expressService: expressService,
	}
}

// SubmitReturnExpress godoc
//
//	@ID				submitReturnExpress
//	@Summary		Submit return shipment tracking
//	@Description	Record the carrier and tracking number for an approved return, one submission only
//	@Tags			aftersales
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"After-sales request ID"	format(uuid)
//	@Param			request	body		aftersalesapp.SubmitReturnExpressRequest	true	"Shipment info"
//	@Success		200		{object}	APIResponse[aftersalesapp.AftersalesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/aftersales/{id}/return-express [post]
func (h *ReturnExpressHandler) SubmitReturnExpress(c *gin.Context) {
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

	var req aftersalesapp.SubmitReturnExpressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.expressService.SubmitReturnExpress(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListCompanies godoc
//
//	@ID				listExpressCompanies
//	@Summary		List supported express companies
//	@Tags			express
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]aftersalesapp.ExpressCompanyResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/express/companies [get]
func (h *ReturnExpressHandler) ListCompanies(c *gin.Context) {
	companies, err := h.expressService.ListExpressCompanies(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, companies)
}

// GetReturnAddress godoc
//
//	@ID				getReturnAddress
//	@Summary		Get the warehouse return address
//	@Tags			express
//	@Produce		json
//	@Success		200	{object}	APIResponse[aftersalesapp.ReturnAddressResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/express/return-address [get]
func (h *ReturnExpressHandler) GetReturnAddress(c *gin.Context) {
	address, err := h.expressService.GetReturnAddress(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, address)
}
