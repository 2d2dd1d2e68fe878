package entity

import "github.com/shopspring/decimal"

type Bill struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	MemberID          uint            `gorm:"not null;index" json:"member"`
	Member            Member          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Month             string          `gorm:"size:20;not null" json:"month"`
	WaterAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"water_amount"`
	ElectricityAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"electricity_amount"`
	Balance           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	PaidStatus        PaymentStatus   `gorm:"size:10;not null;default:Unpaid" json:"paid_status"`
}

func (b *Bill) OwnerMember() *Member {
	if b.Member.ID == 0 {
		return nil
	}
	return &b.Member
}
