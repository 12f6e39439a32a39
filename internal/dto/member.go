package dto

import "time"

// CreateMemberRequest registers a new medium.
type CreateMemberRequest struct {
	Name      string     `json:"name" validate:"required,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone" validate:"omitempty,max=40"`
	Level     string     `json:"level" validate:"omitempty,member_level"`
	Standing  string     `json:"standing" validate:"omitempty,standing"`
	BirthDate *time.Time `json:"birthDate"`
	EntryDate *time.Time `json:"entryDate"`
}

// UpdateMemberRequest is an administrative edit; nil fields are left untouched.
type UpdateMemberRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone" validate:"omitempty,max=40"`
	Level     *string    `json:"level" validate:"omitempty,member_level"`
	Standing  *string    `json:"standing" validate:"omitempty,standing"`
	BirthDate *time.Time `json:"birthDate"`
	EntryDate *time.Time `json:"entryDate"`
}

// MemberListQuery carries list filters from the query string.
type MemberListQuery struct {
	Standing string `form:"standing"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
