package handler

import (
	"net/http"

	"anoa.com/boardinghouse/internal/modules/member/dto"
	member "anoa.com/boardinghouse/internal/modules/member/service"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"anoa.com/boardinghouse/pkg/response"
	"anoa.com/boardinghouse/pkg/validator"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	service member.MemberService
}

func NewMemberHandler(service member.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

func (h *MemberHandler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	resp, err := h.service.GetMember(c.Request.Context(), uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateMember(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MemberHandler) UpdateMember(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateMember(c.Request.Context(), uri.ID, req.AsPatch())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MemberHandler) PatchMember(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req dto.PatchMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateMember(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	if err := h.service.DeleteMember(c.Request.Context(), uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MemberHandler) SearchMembers(c *gin.Context) {
	var query commonDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	members, err := h.service.SearchMembers(c.Request.Context(), query.Q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
