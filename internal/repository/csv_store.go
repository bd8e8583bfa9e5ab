package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

// Table file names under the data directory.
const (
	accountsFile    = "accounts.csv"
	studentsFile    = "students.csv"
	coursesFile     = "courses.csv"
	enrollmentsFile = "enrollments.csv"
)

var (
	accountsHeader    = []string{"username", "password_hash", "student_id", "role"}
	studentsHeader    = []string{"student_id", "display_name"}
	coursesHeader     = []string{"course_id", "name", "instructor", "capacity", "current_enrollment_count", "days", "time", "location"}
	enrollmentsHeader = []string{"student_id", "course_id"}
)

// Snapshot holds the full persisted state read at startup.
type Snapshot struct {
	Accounts []models.Account
	Students []*models.Student
	Courses  []*models.Course
	// Orphans counts enrollment rows that referenced an unknown student
	// or course and were discarded during load.
	Orphans int
	// Skipped counts malformed rows dropped across all tables.
	Skipped int
}

// CSVStore persists the four tables as delimited text under a directory.
// Each save rewrites its entire table from current in-memory state.
type CSVStore struct {
	dir    string
	logger *zap.Logger
}

// NewCSVStore ensures the data directory exists and returns a store handle.
func NewCSVStore(dir string, logger *zap.Logger) (*CSVStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, "create data directory")
	}
	return &CSVStore{dir: dir, logger: logger}, nil
}

// Dir exposes the data directory path.
func (s *CSVStore) Dir() string {
	return s.dir
}

// LoadAll reads the four tables. Missing files are treated as empty tables;
// malformed rows are skipped with a warning. Enrollment rows are applied to
// both sides of the relation, discarding orphans.
func (s *CSVStore) LoadAll() (*Snapshot, error) {
	snap := &Snapshot{}

	accountRows, skipped, err := s.readTable(accountsFile, 3)
	if err != nil {
		return nil, err
	}
	snap.Skipped += skipped
	for _, row := range accountRows {
		role := models.RoleStudent
		if len(row) > 3 && row[3] != "" {
			role = models.AccountRole(row[3])
		}
		snap.Accounts = append(snap.Accounts, models.Account{
			Username:     row[0],
			PasswordHash: row[1],
			StudentID:    row[2],
			Role:         role,
		})
	}

	studentRows, skipped, err := s.readTable(studentsFile, 2)
	if err != nil {
		return nil, err
	}
	snap.Skipped += skipped
	students := make(map[string]*models.Student, len(studentRows))
	for _, row := range studentRows {
		if _, ok := students[row[0]]; ok {
			s.logger.Warn("duplicate student row discarded", zap.String("student_id", row[0]))
			snap.Skipped++
			continue
		}
		student := models.NewStudent(row[0], row[1])
		students[student.ID] = student
		snap.Students = append(snap.Students, student)
	}

	courseRows, skipped, err := s.readTable(coursesFile, 5)
	if err != nil {
		return nil, err
	}
	snap.Skipped += skipped
	courses := make(map[string]*models.Course, len(courseRows))
	persistedCounts := make(map[string]int, len(courseRows))
	for _, row := range courseRows {
		capacity, err := strconv.Atoi(row[3])
		if err != nil || capacity <= 0 {
			s.logger.Warn("course row with invalid capacity discarded",
				zap.String("course_id", row[0]), zap.String("capacity", row[3]))
			snap.Skipped++
			continue
		}
		if _, ok := courses[row[0]]; ok {
			s.logger.Warn("duplicate course row discarded", zap.String("course_id", row[0]))
			snap.Skipped++
			continue
		}
		course := models.NewCourse(row[0], row[1], row[2], capacity)
		if count, err := strconv.Atoi(row[4]); err == nil {
			persistedCounts[course.ID] = count
		}
		if len(row) > 5 {
			course.Schedule.Days = row[5]
		}
		if len(row) > 6 {
			course.Schedule.Time = row[6]
		}
		if len(row) > 7 {
			course.Schedule.Location = row[7]
		}
		courses[course.ID] = course
		snap.Courses = append(snap.Courses, course)
	}

	enrollmentRows, skipped, err := s.readTable(enrollmentsFile, 2)
	if err != nil {
		return nil, err
	}
	snap.Skipped += skipped
	for _, row := range enrollmentRows {
		student, okS := students[row[0]]
		course, okC := courses[row[1]]
		if !okS || !okC {
			s.logger.Warn("orphaned enrollment row discarded",
				zap.String("student_id", row[0]), zap.String("course_id", row[1]))
			snap.Orphans++
			continue
		}
		student.AddCourse(course.ID)
		course.AddStudent(student.ID)
	}

	// The enrollment rows are the source of truth; the persisted count on
	// the course row is only cross-checked.
	for id, count := range persistedCounts {
		if actual := courses[id].EnrollmentCount(); actual != count {
			s.logger.Warn("course enrollment count mismatch",
				zap.String("course_id", id), zap.Int("persisted", count), zap.Int("actual", actual))
		}
	}

	return snap, nil
}

// SaveAccounts rewrites the accounts table.
func (s *CSVStore) SaveAccounts(accounts []models.Account) error {
	rows := make([][]string, 0, len(accounts))
	for _, acct := range accounts {
		rows = append(rows, []string{acct.Username, acct.PasswordHash, acct.StudentID, string(acct.Role)})
	}
	return s.writeTable(accountsFile, accountsHeader, rows)
}

// SaveStudents rewrites the students table.
func (s *CSVStore) SaveStudents(students []*models.Student) error {
	rows := make([][]string, 0, len(students))
	for _, student := range students {
		rows = append(rows, []string{student.ID, student.Name})
	}
	return s.writeTable(studentsFile, studentsHeader, rows)
}

// SaveCourses rewrites the courses table.
func (s *CSVStore) SaveCourses(courses []*models.Course) error {
	rows := make([][]string, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, []string{
			course.ID,
			course.Name,
			course.Instructor,
			strconv.Itoa(course.Capacity),
			strconv.Itoa(course.EnrollmentCount()),
			course.Schedule.Days,
			course.Schedule.Time,
			course.Schedule.Location,
		})
	}
	return s.writeTable(coursesFile, coursesHeader, rows)
}

// SaveEnrollments rewrites the enrollments table, one row per relation edge.
func (s *CSVStore) SaveEnrollments(students []*models.Student) error {
	rows := make([][]string, 0)
	for _, student := range students {
		for _, courseID := range student.CourseIDs() {
			rows = append(rows, []string{student.ID, courseID})
		}
	}
	return s.writeTable(enrollmentsFile, enrollmentsHeader, rows)
}

// readTable reads all rows of a table, skipping the header row and any row
// with fewer than minFields fields. A missing file is an empty table.
func (s *CSVStore) readTable(name string, minFields int) ([][]string, int, error) {
	path := filepath.Join(s.dir, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCorruptData.Code, fmt.Sprintf("open %s", name))
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	skipped := 0
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.logger.Warn("malformed row skipped", zap.String("table", name), zap.Error(err))
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, appErrors.Wrap(err, appErrors.ErrCorruptData.Code, fmt.Sprintf("read %s", name))
		}
		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}
		if len(row) < minFields {
			s.logger.Warn("short row skipped", zap.String("table", name), zap.Int("fields", len(row)))
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// writeTable rewrites a table atomically: write a temp file, then rename.
func (s *CSVStore) writeTable(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("create temp file for %s", name))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close() //nolint:errcheck
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("write %s header", name))
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			tmp.Close() //nolint:errcheck
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("write %s row", name))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close() //nolint:errcheck
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("flush %s", name))
	}
	if err := tmp.Close(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("close %s", name))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("replace %s", name))
	}
	return nil
}

// isHeader reports whether the row looks like one of the table headers.
func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	switch row[0] {
	case accountsHeader[0], studentsHeader[0], coursesHeader[0]:
		return true
	}
	return false
}
