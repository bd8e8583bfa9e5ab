package store

import (
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

// CredentialStore owns login accounts. Accounts are indexed by username and,
// for student accounts, by student ID so both uniqueness checks are O(1).
type CredentialStore struct {
	accounts    map[string]*models.Account
	byStudentID map[string]string
	bcryptCost  int
	minPassword int
}

// NewCredentialStore constructs an empty credential store.
func NewCredentialStore(bcryptCost, minPasswordLength int) *CredentialStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if minPasswordLength <= 0 {
		minPasswordLength = 6
	}
	return &CredentialStore{
		accounts:    make(map[string]*models.Account),
		byStudentID: make(map[string]string),
		bcryptCost:  bcryptCost,
		minPassword: minPasswordLength,
	}
}

// Load replaces the store contents with previously persisted accounts.
// Rows violating uniqueness are rejected and returned for reporting.
func (s *CredentialStore) Load(accounts []models.Account) []models.Account {
	s.accounts = make(map[string]*models.Account, len(accounts))
	s.byStudentID = make(map[string]string)
	var rejected []models.Account
	for i := range accounts {
		acct := accounts[i]
		if _, ok := s.accounts[acct.Username]; ok {
			rejected = append(rejected, acct)
			continue
		}
		if acct.StudentID != "" {
			if _, ok := s.byStudentID[acct.StudentID]; ok {
				rejected = append(rejected, acct)
				continue
			}
			s.byStudentID[acct.StudentID] = acct.Username
		}
		s.accounts[acct.Username] = &acct
	}
	return rejected
}

// Register validates and creates a new account. The raw password is hashed
// immediately and never retained.
func (s *CredentialStore) Register(username, password, studentID string, role models.AccountRole) (*models.Account, error) {
	if len(password) < s.minPassword {
		return nil, appErrors.ErrWeakPassword
	}
	if _, ok := s.accounts[username]; ok {
		return nil, appErrors.ErrDuplicateUsername
	}
	if studentID != "" {
		if _, ok := s.byStudentID[studentID]; ok {
			return nil, appErrors.ErrDuplicateStudentID
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}

	acct := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		StudentID:    studentID,
		Role:         role,
	}
	s.accounts[username] = acct
	if studentID != "" {
		s.byStudentID[studentID] = username
	}

	copy := *acct
	return &copy, nil
}

// Authenticate verifies username, password and student ID together. Any
// mismatch yields the same ErrInvalidCredentials so callers cannot tell
// which field was wrong.
func (s *CredentialStore) Authenticate(username, password, studentID string) (*models.Account, error) {
	acct, ok := s.accounts[username]
	if !ok {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if acct.StudentID != studentID {
		return nil, appErrors.ErrInvalidCredentials
	}
	copy := *acct
	return &copy, nil
}

// ChangePassword replaces the stored digest after verifying the old password.
func (s *CredentialStore) ChangePassword(username, oldPassword, newPassword string) error {
	acct, ok := s.accounts[username]
	if !ok {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "account not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(oldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}
	if len(newPassword) < s.minPassword {
		return appErrors.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}
	acct.PasswordHash = string(hash)
	return nil
}

// Get returns a copy of the account for the given username.
func (s *CredentialStore) Get(username string) (*models.Account, bool) {
	acct, ok := s.accounts[username]
	if !ok {
		return nil, false
	}
	copy := *acct
	return &copy, true
}

// All returns all accounts sorted by username for deterministic persistence.
func (s *CredentialStore) All() []models.Account {
	out := make([]models.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Len returns the number of stored accounts.
func (s *CredentialStore) Len() int {
	return len(s.accounts)
}
