package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the payload for creating an account and its student.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	StudentID       string `json:"student_id" validate:"required"`
	DisplayName     string `json:"display_name" validate:"required"`
}

// LoginRequest holds credentials for authenticating a user. All three fields
// must agree with the stored account.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	StudentID string `json:"student_id"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AddCourseRequest payload for the administrative course creation path.
type AddCourseRequest struct {
	CourseID   string `json:"course_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Instructor string `json:"instructor" validate:"required"`
	Capacity   int    `json:"capacity" validate:"required,gt=0"`
	Days       string `json:"days"`
	Time       string `json:"time"`
	Location   string `json:"location"`
}

// Session describes an authenticated session issued by login.
type Session struct {
	Token     string      `json:"token"`
	TokenID   string      `json:"-"`
	Username  string      `json:"username"`
	StudentID string      `json:"student_id,omitempty"`
	Role      AccountRole `json:"role"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SessionClaims is the JWT payload for session tokens.
type SessionClaims struct {
	Username  string      `json:"username"`
	StudentID string      `json:"student_id,omitempty"`
	Role      AccountRole `json:"role"`
	jwt.RegisteredClaims
}

// CourseListing pairs a course with availability relative to one student.
type CourseListing struct {
	Course         Course `json:"course"`
	AvailableSeats int    `json:"available_seats"`
	Enrolled       bool   `json:"enrolled"`
}
