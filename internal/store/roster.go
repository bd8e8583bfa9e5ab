package store

import (
	"sort"
	"sync"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

// Roster owns students and the student-course enrollment relation. The
// relation is stored on both sides (student course set, course student set)
// and only Roster methods may touch either side, keeping the pair atomic.
type Roster struct {
	// mu guards the read-check-write sequence in Enroll and Drop.
	mu       sync.Mutex
	students map[string]*models.Student
	catalog  *Catalog
}

// NewRoster constructs an empty roster backed by the given catalog.
func NewRoster(catalog *Catalog) *Roster {
	return &Roster{students: make(map[string]*models.Student), catalog: catalog}
}

// Load replaces the roster contents with previously persisted students.
func (r *Roster) Load(students []*models.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = make(map[string]*models.Student, len(students))
	for _, student := range students {
		if student.Courses == nil {
			student.Courses = make(map[string]struct{})
		}
		r.students[student.ID] = student
	}
}

// AddStudent registers a new student record.
func (r *Roster) AddStudent(id, name string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" || name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id and name are required")
	}
	if _, ok := r.students[id]; ok {
		return nil, appErrors.ErrDuplicateStudentID
	}
	student := models.NewStudent(id, name)
	r.students[id] = student
	return student, nil
}

// Get returns the student for the given ID.
func (r *Roster) Get(studentID string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[studentID]
	if !ok {
		return nil, appErrors.ErrStudentNotFound
	}
	return student, nil
}

// All returns all students sorted by ID for deterministic persistence.
func (r *Roster) All() []*models.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Student, 0, len(r.students))
	for _, student := range r.students {
		out = append(out, student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Enroll adds the student to the course and the course to the student.
// The duplicate check runs before the capacity check so a re-submitted
// enrollment reports AlreadyEnrolled even when the course is full.
func (r *Roster) Enroll(studentID, courseID string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.students[studentID]
	if !ok {
		return nil, appErrors.ErrStudentNotFound
	}
	course, err := r.catalog.Get(courseID)
	if err != nil {
		return nil, err
	}
	if student.EnrolledIn(courseID) {
		return nil, appErrors.ErrAlreadyEnrolled
	}
	if course.IsFull() {
		return nil, appErrors.ErrCourseFull
	}
	for enrolledID := range student.Courses {
		enrolled, err := r.catalog.Get(enrolledID)
		if err != nil {
			continue
		}
		if course.ConflictsWith(enrolled) {
			return nil, appErrors.Clone(appErrors.ErrScheduleConflict,
				course.Name+" meets at the same time as "+enrolled.Name)
		}
	}

	student.AddCourse(courseID)
	course.AddStudent(studentID)
	return course, nil
}

// Drop removes the enrollment from both sides of the relation.
func (r *Roster) Drop(studentID, courseID string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.students[studentID]
	if !ok {
		return nil, appErrors.ErrStudentNotFound
	}
	course, err := r.catalog.Get(courseID)
	if err != nil {
		return nil, err
	}
	if !student.EnrolledIn(courseID) {
		return nil, appErrors.ErrNotEnrolled
	}

	student.RemoveCourse(courseID)
	course.RemoveStudent(studentID)
	return course, nil
}

// CoursesFor returns the course IDs the student is enrolled in, sorted.
func (r *Roster) CoursesFor(studentID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[studentID]
	if !ok {
		return nil, appErrors.ErrStudentNotFound
	}
	return student.CourseIDs(), nil
}

// StudentsFor returns the student IDs enrolled in the course, sorted.
func (r *Roster) StudentsFor(courseID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, err := r.catalog.Get(courseID)
	if err != nil {
		return nil, err
	}
	return course.StudentIDs(), nil
}

// Len returns the number of students in the roster.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.students)
}
