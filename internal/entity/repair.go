package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type RepairStatus string

const (
	RepairCompleted RepairStatus = "Completed"
	RepairPending   RepairStatus = "Pending"
)

type Repair struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MemberID    uint            `gorm:"not null;index" json:"member"`
	Member      Member          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ItemName    string          `gorm:"size:200;not null" json:"item_name"`
	RepairDate  time.Time       `gorm:"type:date;not null" json:"repair_date"`
	Cost        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	ReplacedBy  string          `gorm:"size:200" json:"replaced_by"`
	Description string          `gorm:"type:text" json:"description"`
	Status      RepairStatus    `gorm:"size:10;not null;default:Pending" json:"status"`
}

func (r *Repair) OwnerMember() *Member {
	if r.Member.ID == 0 {
		return nil
	}
	return &r.Member
}
