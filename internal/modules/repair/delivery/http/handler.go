package handler

import (
	"net/http"

	"anoa.com/boardinghouse/internal/middleware"
	"anoa.com/boardinghouse/internal/modules/repair/dto"
	repair "anoa.com/boardinghouse/internal/modules/repair/service"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"anoa.com/boardinghouse/pkg/response"
	"anoa.com/boardinghouse/pkg/validator"
	"github.com/gin-gonic/gin"
)

type RepairHandler struct {
	service repair.RepairService
}

func NewRepairHandler(service repair.RepairService) *RepairHandler {
	return &RepairHandler{service: service}
}

func (h *RepairHandler) ListRepairs(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	repairs, err := h.service.ListRepairs(c.Request.Context(), principal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, repairs)
}

func (h *RepairHandler) GetRepair(c *gin.Context) {
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

	resp, err := h.service.GetRepair(c.Request.Context(), principal, uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RepairHandler) CreateRepair(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateRepair(c.Request.Context(), principal, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RepairHandler) UpdateRepair(c *gin.Context) {
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

	var req dto.RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateRepair(c.Request.Context(), principal, uri.ID, req.AsPatch())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RepairHandler) PatchRepair(c *gin.Context) {
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

	var req dto.PatchRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateRepair(c.Request.Context(), principal, uri.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RepairHandler) DeleteRepair(c *gin.Context) {
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

	if err := h.service.DeleteRepair(c.Request.Context(), principal, uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
