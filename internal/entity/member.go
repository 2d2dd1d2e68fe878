package entity

import "time"

type MemberStatus string

const (
	MemberActive   MemberStatus = "Active"
	MemberInactive MemberStatus = "Inactive"
)

type Member struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	Name             string       `gorm:"size:200;not null" json:"name"`
	Email            string       `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Contact          string       `gorm:"size:50" json:"contact"`
	HomeAddress      string       `gorm:"type:text" json:"home_address"`
	EmergencyContact string       `gorm:"size:100" json:"emergency_contact"`
	RoomNumber       string       `gorm:"size:20" json:"room_number"`
	Status           MemberStatus `gorm:"size:10;not null;default:Active" json:"status"`
	JoinedDate       time.Time    `gorm:"type:date;not null" json:"joined_date"`
	UserID           *uint        `gorm:"uniqueIndex" json:"user"`
	User             *User        `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// LinkedTo reports whether the member record belongs to the given user.
func (m *Member) LinkedTo(userID uint) bool {
	return m != nil && m.UserID != nil && *m.UserID == userID
}

// MemberOwned is implemented by records that hang off a single Member.
type MemberOwned interface {
	OwnerMember() *Member
}
