package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

type credentialStore interface {
	Register(username, password, studentID string, role models.AccountRole) (*models.Account, error)
	Authenticate(username, password, studentID string) (*models.Account, error)
	ChangePassword(username, oldPassword, newPassword string) error
	All() []models.Account
	Len() int
}

type rosterStore interface {
	AddStudent(id, name string) (*models.Student, error)
	Get(studentID string) (*models.Student, error)
	Enroll(studentID, courseID string) (*models.Course, error)
	Drop(studentID, courseID string) (*models.Course, error)
	CoursesFor(studentID string) ([]string, error)
	All() []*models.Student
}

type catalogStore interface {
	Add(course *models.Course) error
	Get(courseID string) (*models.Course, error)
	List() []*models.Course
}

type persistence interface {
	SaveAccounts(accounts []models.Account) error
	SaveStudents(students []*models.Student) error
	SaveCourses(courses []*models.Course) error
	SaveEnrollments(students []*models.Student) error
}

// minPasswordFloor matches the min tag on RegisterRequest.Password. The
// credential store additionally enforces its configured minimum.
const minPasswordFloor = 6

// SessionConfig defines configuration for session handling.
type SessionConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// SessionService is the single entry point the front end calls. It composes
// the credential store, roster and catalog, and guarantees that by the time
// a mutating call returns, in-memory state and durable storage agree.
type SessionService struct {
	creds     credentialStore
	roster    rosterStore
	catalog   catalogStore
	store     persistence
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewSessionService constructs a SessionService. An empty token secret is
// replaced by a random per-process secret, which invalidates tokens across
// restarts but never weakens signing.
func NewSessionService(creds credentialStore, roster rosterStore, catalog catalogStore, store persistence, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenSecret == "" {
		config.TokenSecret = randomSecret()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 12 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "campus-registry"
	}
	return &SessionService{
		creds:     creds,
		roster:    roster,
		catalog:   catalog,
		store:     store,
		validator: validate,
		logger:    logger,
		config:    config,
		revoked:   make(map[string]time.Time),
	}
}

// Register creates an account and its student record together. The student
// ID must be unused by both the credential table and the roster.
func (s *SessionService) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	if req.Password != "" && req.Password != req.ConfirmPassword {
		return nil, appErrors.ErrPasswordMismatch
	}
	if req.Password != "" && len(req.Password) < minPasswordFloor {
		return nil, appErrors.ErrWeakPassword
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid registration payload")
	}
	if _, err := s.roster.Get(req.StudentID); err == nil {
		return nil, appErrors.ErrDuplicateStudentID
	}

	acct, err := s.creds.Register(req.Username, req.Password, req.StudentID, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	if _, err := s.roster.AddStudent(req.StudentID, req.DisplayName); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("username", acct.Username), zap.String("student_id", acct.StudentID))

	if err := s.saveAccountsAndStudents(); err != nil {
		return acct, err
	}
	return acct, nil
}

// Login authenticates the three credential fields and issues a session token.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid login payload")
	}
	acct, err := s.creds.Authenticate(req.Username, req.Password, req.StudentID)
	if err != nil {
		return nil, err
	}
	session, err := s.issueToken(acct)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", zap.String("username", acct.Username))
	return session, nil
}

// Logout revokes the session token.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry := time.Now().UTC().Add(s.config.TokenExpiry)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = expiry
	return nil
}

// ListCourses returns the full catalog in stable order with seat counts and
// whether the session's student is enrolled in each course.
func (s *SessionService) ListCourses(ctx context.Context, token string) ([]models.CourseListing, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	var enrolled map[string]struct{}
	if claims.StudentID != "" {
		if ids, err := s.roster.CoursesFor(claims.StudentID); err == nil {
			enrolled = make(map[string]struct{}, len(ids))
			for _, id := range ids {
				enrolled[id] = struct{}{}
			}
		}
	}
	courses := s.catalog.List()
	listings := make([]models.CourseListing, 0, len(courses))
	for _, course := range courses {
		_, isEnrolled := enrolled[course.ID]
		listings = append(listings, models.CourseListing{
			Course:         *course,
			AvailableSeats: course.AvailableSeats(),
			Enrolled:       isEnrolled,
		})
	}
	return listings, nil
}

// MyCourses returns the courses the session's student is enrolled in.
func (s *SessionService) MyCourses(ctx context.Context, token string) ([]models.Course, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "session has no linked student")
	}
	ids, err := s.roster.CoursesFor(claims.StudentID)
	if err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		course, err := s.catalog.Get(id)
		if err != nil {
			continue
		}
		courses = append(courses, *course)
	}
	return courses, nil
}

// Enroll adds the student to the course. Students may only enroll
// themselves; admins may enroll anyone.
func (s *SessionService) Enroll(ctx context.Context, token, studentID, courseID string) (*models.Course, error) {
	if err := s.authorizeStudentAction(token, studentID); err != nil {
		return nil, err
	}
	course, err := s.roster.Enroll(studentID, courseID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("enrolled",
		zap.String("student_id", studentID), zap.String("course_id", courseID),
		zap.Int("available_seats", course.AvailableSeats()))

	updated := *course
	if err := s.saveEnrollmentState(); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// Drop removes the student from the course.
func (s *SessionService) Drop(ctx context.Context, token, studentID, courseID string) (*models.Course, error) {
	if err := s.authorizeStudentAction(token, studentID); err != nil {
		return nil, err
	}
	course, err := s.roster.Drop(studentID, courseID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dropped",
		zap.String("student_id", studentID), zap.String("course_id", courseID))

	updated := *course
	if err := s.saveEnrollmentState(); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// ChangePassword updates the session account's password.
func (s *SessionService) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid change password payload")
	}
	if err := s.creds.ChangePassword(claims.Username, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.store.SaveAccounts(s.creds.All()); err != nil {
		s.logger.Warn("failed to persist accounts", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, "password changed but not persisted")
	}
	return nil
}

// AddCourse creates a catalog entry. Admin only.
func (s *SessionService) AddCourse(ctx context.Context, token string, req models.AddCourseRequest) (*models.Course, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid course payload")
	}
	course := models.NewCourse(req.CourseID, req.Name, req.Instructor, req.Capacity)
	course.Schedule = models.Schedule{Days: req.Days, Time: req.Time, Location: req.Location}
	if err := s.catalog.Add(course); err != nil {
		return nil, err
	}
	s.logger.Info("course added", zap.String("course_id", course.ID), zap.Int("capacity", course.Capacity))

	created := *course
	if err := s.store.SaveCourses(s.catalog.List()); err != nil {
		s.logger.Warn("failed to persist courses", zap.Error(err))
		return &created, appErrors.Wrap(err, appErrors.ErrPersistence.Code, "course added but not persisted")
	}
	return &created, nil
}

// SeedDefaults creates the default admin and demo student accounts plus a
// small starter catalog when the credential table is empty.
func (s *SessionService) SeedDefaults(ctx context.Context) error {
	if s.creds.Len() > 0 {
		return nil
	}
	if _, err := s.creds.Register("admin", "admin123", "", models.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.creds.Register("student", "student123", "S001", models.RoleStudent); err != nil {
		return err
	}
	if _, err := s.roster.AddStudent("S001", "Demo Student"); err != nil {
		return err
	}

	seedCourses := []*models.Course{
		models.NewCourse("CS101", "Introduction to Programming", "Dr. Reyes", 30),
		models.NewCourse("CS236", "Data Structures and Algorithms", "Dr. Okafor", 30),
		models.NewCourse("MATH201", "Linear Algebra", "Dr. Tan", 25),
	}
	seedCourses[0].Schedule = models.Schedule{Days: "MWF", Time: "9:00-10:15", Location: "Engineering 201"}
	seedCourses[1].Schedule = models.Schedule{Days: "TTh", Time: "13:00-14:15", Location: "Engineering 105"}
	seedCourses[2].Schedule = models.Schedule{Days: "MWF", Time: "11:00-12:15", Location: "Science 310"}
	for _, course := range seedCourses {
		if err := s.catalog.Add(course); err != nil {
			return err
		}
	}

	s.logger.Info("seeded default accounts and catalog")

	if err := s.saveAccountsAndStudents(); err != nil {
		return err
	}
	return s.saveEnrollmentState()
}

// authorizeStudentAction validates the token and checks the acting session
// may mutate enrollments for studentID.
func (s *SessionService) authorizeStudentAction(token, studentID string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	if claims.Role == models.RoleAdmin {
		return nil
	}
	if claims.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "session may only act on its own student")
	}
	return nil
}

func (s *SessionService) issueToken(acct *models.Account) (*models.Session, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	tokenID := uuid.NewString()
	claims := &models.SessionClaims{
		Username:  acct.Username,
		StudentID: acct.StudentID,
		Role:      acct.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    s.config.Issuer,
			Subject:   acct.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to sign session token")
	}
	return &models.Session{
		Token:     signed,
		TokenID:   tokenID,
		Username:  acct.Username,
		StudentID: acct.StudentID,
		Role:      acct.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *SessionService) parseToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, "invalid session token")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	if _, ok := s.revoked[claims.ID]; ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has been logged out")
	}
	return claims, nil
}

// saveAccountsAndStudents persists the account and student tables.
func (s *SessionService) saveAccountsAndStudents() error {
	if err := s.store.SaveAccounts(s.creds.All()); err != nil {
		s.logger.Warn("failed to persist accounts", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, "state updated but accounts not persisted")
	}
	if err := s.store.SaveStudents(s.roster.All()); err != nil {
		s.logger.Warn("failed to persist students", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, "state updated but students not persisted")
	}
	return nil
}

// saveEnrollmentState persists the course and enrollment tables.
func (s *SessionService) saveEnrollmentState() error {
	if err := s.store.SaveCourses(s.catalog.List()); err != nil {
		s.logger.Warn("failed to persist courses", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, "state updated but courses not persisted")
	}
	if err := s.store.SaveEnrollments(s.roster.All()); err != nil {
		s.logger.Warn("failed to persist enrollments", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, "state updated but enrollments not persisted")
	}
	return nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
