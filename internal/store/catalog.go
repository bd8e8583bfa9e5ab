package store

import (
	"sort"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

// Catalog owns course records keyed by course ID. Enrollment sets on courses
// are mutated only through the Roster so the bidirectional relation stays
// consistent.
type Catalog struct {
	courses map[string]*models.Course
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{courses: make(map[string]*models.Course)}
}

// Load replaces the catalog contents with previously persisted courses.
func (c *Catalog) Load(courses []*models.Course) {
	c.courses = make(map[string]*models.Course, len(courses))
	for _, course := range courses {
		if course.Students == nil {
			course.Students = make(map[string]struct{})
		}
		c.courses[course.ID] = course
	}
}

// Add registers a new course. Capacity must be positive.
func (c *Catalog) Add(course *models.Course) error {
	if course.ID == "" || course.Name == "" || course.Instructor == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id, name and instructor are required")
	}
	if course.Capacity <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "course capacity must be positive")
	}
	if _, ok := c.courses[course.ID]; ok {
		return appErrors.ErrDuplicateCourse
	}
	if course.Students == nil {
		course.Students = make(map[string]struct{})
	}
	c.courses[course.ID] = course
	return nil
}

// Get returns the course for the given ID.
func (c *Catalog) Get(courseID string) (*models.Course, error) {
	course, ok := c.courses[courseID]
	if !ok {
		return nil, appErrors.ErrCourseNotFound
	}
	return course, nil
}

// List returns all courses sorted by course ID for deterministic display.
func (c *Catalog) List() []*models.Course {
	out := make([]*models.Course, 0, len(c.courses))
	for _, course := range c.courses {
		out = append(out, course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AvailableSeats returns capacity minus current enrollment for the course.
func (c *Catalog) AvailableSeats(courseID string) (int, error) {
	course, ok := c.courses[courseID]
	if !ok {
		return 0, appErrors.ErrCourseNotFound
	}
	return course.AvailableSeats(), nil
}

// Len returns the number of courses in the catalog.
func (c *Catalog) Len() int {
	return len(c.courses)
}
