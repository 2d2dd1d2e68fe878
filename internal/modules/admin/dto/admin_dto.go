package dto

type CreateUserInput struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Role      string `json:"role" binding:"omitempty,oneof=admin staff member"`
	Phone     string `json:"phone" binding:"max=20"`
}

type SetRoleInput struct {
	Role  string  `json:"role" binding:"required,oneof=admin staff member"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
}
