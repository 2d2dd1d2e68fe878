package dto

import "anoa.com/boardinghouse/internal/entity"

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type AccessResponse struct {
	Access string `json:"access"`
}

type ProfileResponse struct {
	Role  string `json:"role"`
	Phone string `json:"phone"`
}

type UserResponse struct {
	ID          uint             `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	IsSuperuser bool             `json:"is_superuser"`
	Profile     *ProfileResponse `json:"profile"`
	MemberID    *uint            `json:"member_id"`
}

// NewUserResponse renders a user with its identity, if loaded.
func NewUserResponse(u *entity.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
	}
	if u.Identity != nil {
		resp.Profile = &ProfileResponse{
			Role:  string(u.Identity.Role),
			Phone: u.Identity.Phone,
		}
	}
	return resp
}
