package dto

import (
	"anoa.com/boardinghouse/internal/entity"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"github.com/shopspring/decimal"
)

type RepairRequest struct {
	Member      uint             `json:"member" binding:"required,min=1"`
	ItemName    string           `json:"item_name" binding:"required,max=200"`
	RepairDate  string           `json:"repair_date" binding:"required"`
	Cost        *decimal.Decimal `json:"cost" binding:"required"`
	ReplacedBy  string           `json:"replaced_by" binding:"max=200"`
	Description string           `json:"description"`
	Status      string           `json:"status" binding:"omitempty,oneof=Completed Pending"`
}

type PatchRepairRequest struct {
	Member      *uint            `json:"member" binding:"omitempty,min=1"`
	ItemName    *string          `json:"item_name" binding:"omitempty,min=1,max=200"`
	RepairDate  *string          `json:"repair_date"`
	Cost        *decimal.Decimal `json:"cost"`
	ReplacedBy  *string          `json:"replaced_by" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" binding:"omitempty,oneof=Completed Pending"`
}

func (r RepairRequest) AsPatch() PatchRepairRequest {
	p := PatchRepairRequest{
		Member:      &r.Member,
		ItemName:    &r.ItemName,
		RepairDate:  &r.RepairDate,
		Cost:        r.Cost,
		ReplacedBy:  &r.ReplacedBy,
		Description: &r.Description,
	}
	if r.Status != "" {
		p.Status = &r.Status
	}
	return p
}

type RepairResponse struct {
	ID     uint `json:"id"`
	Member uint `json:"member"`
	commonDto.MemberRef
	ItemName    string `json:"item_name"`
	RepairDate  string `json:"repair_date"`
	Cost        string `json:"cost"`
	ReplacedBy  string `json:"replaced_by"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func NewRepairResponse(r *entity.Repair) RepairResponse {
	return RepairResponse{
		ID:     r.ID,
		Member: r.MemberID,
		MemberRef: commonDto.MemberRef{
			MemberName: r.Member.Name,
			MemberRoom: r.Member.RoomNumber,
		},
		ItemName:    r.ItemName,
		RepairDate:  commonDto.FormatDate(r.RepairDate),
		Cost:        commonDto.Money(r.Cost),
		ReplacedBy:  r.ReplacedBy,
		Description: r.Description,
		Status:      string(r.Status),
	}
}

func NewRepairResponses(repairs []entity.Repair) []RepairResponse {
	out := make([]RepairResponse, 0, len(repairs))
	for i := range repairs {
		out = append(out, NewRepairResponse(&repairs[i]))
	}
	return out
}
