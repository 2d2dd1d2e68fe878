package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "Paid"
	PaymentUnpaid PaymentStatus = "Unpaid"
)

type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MemberID    uint            `gorm:"not null;index" json:"member"`
	Member      Member          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"type:date;not null" json:"payment_date"`
	CollectedBy string          `gorm:"size:200" json:"collected_by"`
	Status      PaymentStatus   `gorm:"size:10;not null;default:Paid" json:"status"`
}

func (p *Payment) OwnerMember() *Member {
	if p.Member.ID == 0 {
		return nil
	}
	return &p.Member
}
