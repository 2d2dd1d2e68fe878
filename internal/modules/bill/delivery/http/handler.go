package handler

import (
	"net/http"

	"anoa.com/boardinghouse/internal/middleware"
	"anoa.com/boardinghouse/internal/modules/bill/dto"
	bill "anoa.com/boardinghouse/internal/modules/bill/service"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"anoa.com/boardinghouse/pkg/response"
	"anoa.com/boardinghouse/pkg/validator"
	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	service bill.BillService
}

func NewBillHandler(service bill.BillService) *BillHandler {
	return &BillHandler{service: service}
}

func (h *BillHandler) ListBills(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	bills, err := h.service.ListBills(c.Request.Context(), principal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

func (h *BillHandler) GetBill(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	resp, err := h.service.GetBill(c.Request.Context(), principal, uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillHandler) CreateBill(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateBill(c.Request.Context(), principal, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BillHandler) UpdateBill(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req dto.BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateBill(c.Request.Context(), principal, uri.ID, req.AsPatch())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillHandler) PatchBill(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req dto.PatchBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateBill(c.Request.Context(), principal, uri.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillHandler) DeleteBill(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	if err := h.service.DeleteBill(c.Request.Context(), principal, uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
