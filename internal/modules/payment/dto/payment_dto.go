package dto

import (
	"anoa.com/boardinghouse/internal/entity"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	Member      uint             `json:"member" binding:"required,min=1"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	CollectedBy string           `json:"collected_by" binding:"max=200"`
	Status      string           `json:"status" binding:"omitempty,oneof=Paid Unpaid"`
}

type PatchPaymentRequest struct {
	Member      *uint            `json:"member" binding:"omitempty,min=1"`
	Amount      *decimal.Decimal `json:"amount"`
	CollectedBy *string          `json:"collected_by" binding:"omitempty,max=200"`
	Status      *string          `json:"status" binding:"omitempty,oneof=Paid Unpaid"`
}

func (r PaymentRequest) AsPatch() PatchPaymentRequest {
	p := PatchPaymentRequest{
		Member:      &r.Member,
		Amount:      r.Amount,
		CollectedBy: &r.CollectedBy,
	}
	if r.Status != "" {
		p.Status = &r.Status
	}
	return p
}

type PaymentResponse struct {
	ID     uint `json:"id"`
	Member uint `json:"member"`
	commonDto.MemberRef
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	CollectedBy string `json:"collected_by"`
	Status      string `json:"status"`
}

// NewPaymentResponse expects Member to be preloaded.
func NewPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:     p.ID,
		Member: p.MemberID,
		MemberRef: commonDto.MemberRef{
			MemberName:  p.Member.Name,
			MemberEmail: p.Member.Email,
			MemberRoom:  p.Member.RoomNumber,
		},
		Amount:      commonDto.Money(p.Amount),
		PaymentDate: commonDto.FormatDate(p.PaymentDate),
		CollectedBy: p.CollectedBy,
		Status:      string(p.Status),
	}
}

func NewPaymentResponses(payments []entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, NewPaymentResponse(&payments[i]))
	}
	return out
}
