package models

// AccountRole represents the available roles for accounts.
type AccountRole string

const (
	RoleStudent AccountRole = "STUDENT"
	RoleAdmin   AccountRole = "ADMIN"
)

// Account represents a login credential record. Admin accounts carry an
// empty StudentID; student accounts link one-to-one with a Student.
type Account struct {
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	StudentID    string      `json:"student_id,omitempty"`
	Role         AccountRole `json:"role"`
}
