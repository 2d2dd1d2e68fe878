package dto

import (
	"anoa.com/boardinghouse/internal/entity"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"github.com/shopspring/decimal"
)

type BillRequest struct {
	Member            uint             `json:"member" binding:"required,min=1"`
	Month             string           `json:"month" binding:"required,max=20"`
	WaterAmount       *decimal.Decimal `json:"water_amount"`
	ElectricityAmount *decimal.Decimal `json:"electricity_amount"`
	Balance           *decimal.Decimal `json:"balance"`
	PaidStatus        string           `json:"paid_status" binding:"omitempty,oneof=Paid Unpaid"`
}

type PatchBillRequest struct {
	Member            *uint            `json:"member" binding:"omitempty,min=1"`
	Month             *string          `json:"month" binding:"omitempty,min=1,max=20"`
	WaterAmount       *decimal.Decimal `json:"water_amount"`
	ElectricityAmount *decimal.Decimal `json:"electricity_amount"`
	Balance           *decimal.Decimal `json:"balance"`
	PaidStatus        *string          `json:"paid_status" binding:"omitempty,oneof=Paid Unpaid"`
}

func (r BillRequest) AsPatch() PatchBillRequest {
	p := PatchBillRequest{
		Member:            &r.Member,
		Month:             &r.Month,
		WaterAmount:       r.WaterAmount,
		ElectricityAmount: r.ElectricityAmount,
		Balance:           r.Balance,
	}
	if r.PaidStatus != "" {
		p.PaidStatus = &r.PaidStatus
	}
	return p
}

type BillResponse struct {
	ID     uint `json:"id"`
	Member uint `json:"member"`
	commonDto.MemberRef
	Month             string `json:"month"`
	WaterAmount       string `json:"water_amount"`
	ElectricityAmount string `json:"electricity_amount"`
	Balance           string `json:"balance"`
	PaidStatus        string `json:"paid_status"`
}

// NewBillResponse expects Member to be preloaded.
func NewBillResponse(b *entity.Bill) BillResponse {
	return BillResponse{
		ID:     b.ID,
		Member: b.MemberID,
		MemberRef: commonDto.MemberRef{
			MemberName:  b.Member.Name,
			MemberEmail: b.Member.Email,
			MemberRoom:  b.Member.RoomNumber,
		},
		Month:             b.Month,
		WaterAmount:       commonDto.Money(b.WaterAmount),
		ElectricityAmount: commonDto.Money(b.ElectricityAmount),
		Balance:           commonDto.Money(b.Balance),
		PaidStatus:        string(b.PaidStatus),
	}
}

func NewBillResponses(bills []entity.Bill) []BillResponse {
	out := make([]BillResponse, 0, len(bills))
	for i := range bills {
		out = append(out, NewBillResponse(&bills[i]))
	}
	return out
}
