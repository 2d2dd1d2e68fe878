package dto

import (
	"anoa.com/boardinghouse/internal/entity"
	commonDto "anoa.com/boardinghouse/pkg/dto"
)

// MemberRequest is the body of create and full update.
type MemberRequest struct {
	Name             string `json:"name" binding:"required,max=200"`
	Email            string `json:"email" binding:"required,email,max=254"`
	Contact          string `json:"contact" binding:"max=50"`
	HomeAddress      string `json:"home_address"`
	EmergencyContact string `json:"emergency_contact" binding:"max=100"`
	RoomNumber       string `json:"room_number" binding:"max=20"`
	Status           string `json:"status" binding:"omitempty,oneof=Active Inactive"`
	// User links a login to the member. 0 removes the link.
	User *uint `json:"user"`
}

// PatchMemberRequest carries only the fields to change.
type PatchMemberRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email            *string `json:"email" binding:"omitempty,email,max=254"`
	Contact          *string `json:"contact" binding:"omitempty,max=50"`
	HomeAddress      *string `json:"home_address"`
	EmergencyContact *string `json:"emergency_contact" binding:"omitempty,max=100"`
	RoomNumber       *string `json:"room_number" binding:"omitempty,max=20"`
	Status           *string `json:"status" binding:"omitempty,oneof=Active Inactive"`
	User             *uint   `json:"user"`
}

// AsPatch turns a full update into a patch. An omitted status or user is left
// unchanged.
func (r MemberRequest) AsPatch() PatchMemberRequest {
	p := PatchMemberRequest{
		Name:             &r.Name,
		Email:            &r.Email,
		Contact:          &r.Contact,
		HomeAddress:      &r.HomeAddress,
		EmergencyContact: &r.EmergencyContact,
		RoomNumber:       &r.RoomNumber,
		User:             r.User,
	}
	if r.Status != "" {
		p.Status = &r.Status
	}
	return p
}

type MemberResponse struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
	HomeAddress      string `json:"home_address"`
	EmergencyContact string `json:"emergency_contact"`
	RoomNumber       string `json:"room_number"`
	Status           string `json:"status"`
	JoinedDate       string `json:"joined_date"`
	User             *uint  `json:"user"`
}

func NewMemberResponse(m *entity.Member) MemberResponse {
	return MemberResponse{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		Contact:          m.Contact,
		HomeAddress:      m.HomeAddress,
		EmergencyContact: m.EmergencyContact,
		RoomNumber:       m.RoomNumber,
		Status:           string(m.Status),
		JoinedDate:       commonDto.FormatDate(m.JoinedDate),
		User:             m.UserID,
	}
}

func NewMemberResponses(members []entity.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, NewMemberResponse(&members[i]))
	}
	return out
}
