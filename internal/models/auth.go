package models

import "github.com/golang-jwt/jwt/v5"

// UserRole mirrors the access levels of the admin application.
type UserRole string

const (
	RoleSuperuser UserRole = "SUPERUSER"
	RoleAdvanced  UserRole = "ADVANCED"
	RoleStandard  UserRole = "STANDARD"
)

// JWTClaims represents the payload of access tokens issued by the login service.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
