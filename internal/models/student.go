package models

import "sort"

// Student represents a learner registered in the institution.
// Courses is a set of course IDs keyed for O(1) membership tests.
type Student struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Courses map[string]struct{} `json:"-"`
}

// NewStudent constructs a Student with an empty enrollment set.
func NewStudent(id, name string) *Student {
	return &Student{ID: id, Name: name, Courses: make(map[string]struct{})}
}

// AddCourse records an enrollment on the student side of the relation.
func (s *Student) AddCourse(courseID string) {
	if s.Courses == nil {
		s.Courses = make(map[string]struct{})
	}
	s.Courses[courseID] = struct{}{}
}

// RemoveCourse removes an enrollment on the student side of the relation.
func (s *Student) RemoveCourse(courseID string) {
	delete(s.Courses, courseID)
}

// EnrolledIn reports whether the student is enrolled in the course.
func (s *Student) EnrolledIn(courseID string) bool {
	_, ok := s.Courses[courseID]
	return ok
}

// CourseCount returns the number of courses the student is enrolled in.
func (s *Student) CourseCount() int {
	return len(s.Courses)
}

// CourseIDs returns the enrolled course IDs sorted for deterministic output.
func (s *Student) CourseIDs() []string {
	ids := make([]string, 0, len(s.Courses))
	for id := range s.Courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
