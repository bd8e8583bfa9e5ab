package models

import (
	"sort"
	"strconv"
	"strings"
)

// Schedule describes when and where a course meets. All fields are optional;
// a course without schedule information never conflicts with anything.
type Schedule struct {
	Days     string `json:"days,omitempty"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
}

// Course represents an offered course and its enrolled students.
// Students is a set of student IDs keyed for O(1) membership tests.
type Course struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Instructor string              `json:"instructor"`
	Capacity   int                 `json:"capacity"`
	Students   map[string]struct{} `json:"-"`
	Schedule   Schedule            `json:"schedule"`
}

// NewCourse constructs a Course with an empty enrollment set.
func NewCourse(id, name, instructor string, capacity int) *Course {
	return &Course{
		ID:         id,
		Name:       name,
		Instructor: instructor,
		Capacity:   capacity,
		Students:   make(map[string]struct{}),
	}
}

// AddStudent records an enrollment on the course side of the relation.
func (c *Course) AddStudent(studentID string) {
	if c.Students == nil {
		c.Students = make(map[string]struct{})
	}
	c.Students[studentID] = struct{}{}
}

// RemoveStudent removes an enrollment on the course side of the relation.
func (c *Course) RemoveStudent(studentID string) {
	delete(c.Students, studentID)
}

// HasStudent reports whether the student is enrolled in the course.
func (c *Course) HasStudent(studentID string) bool {
	_, ok := c.Students[studentID]
	return ok
}

// IsFull reports whether enrollment has reached capacity.
func (c *Course) IsFull() bool {
	return len(c.Students) >= c.Capacity
}

// AvailableSeats returns capacity minus current enrollment.
func (c *Course) AvailableSeats() int {
	return c.Capacity - len(c.Students)
}

// EnrollmentCount returns the number of enrolled students.
func (c *Course) EnrollmentCount() int {
	return len(c.Students)
}

// StudentIDs returns the enrolled student IDs sorted for deterministic output.
func (c *Course) StudentIDs() []string {
	ids := make([]string, 0, len(c.Students))
	for id := range c.Students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ConflictsWith reports whether the two courses share a meeting day with
// overlapping time ranges. Missing or unparseable schedule information is
// treated as no conflict.
func (c *Course) ConflictsWith(other *Course) bool {
	if other == nil {
		return false
	}
	a, b := c.Schedule, other.Schedule
	if a.Days == "" || a.Time == "" || b.Days == "" || b.Time == "" {
		return false
	}
	if !shareDay(a.Days, b.Days) {
		return false
	}
	aStart, aEnd, err := parseTimeRange(a.Time)
	if err != nil {
		return false
	}
	bStart, bEnd, err := parseTimeRange(b.Time)
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// StartMinutes returns the start of a range such as "9:00-10:15" in minutes
// from midnight. ok is false when the range cannot be parsed.
func StartMinutes(timeRange string) (int, bool) {
	start, _, err := parseTimeRange(timeRange)
	if err != nil {
		return 0, false
	}
	return start, true
}

// SplitDays expands a compact day string such as "MWF" or "TTh" into day
// tokens, treating "Th" as a single day.
func SplitDays(days string) []string {
	out := make([]string, 0, len(days))
	for i := 0; i < len(days); i++ {
		if days[i] == 'T' && i+1 < len(days) && days[i+1] == 'h' {
			out = append(out, "Th")
			i++
			continue
		}
		out = append(out, string(days[i]))
	}
	return out
}

func shareDay(a, b string) bool {
	set := make(map[string]struct{})
	for _, d := range SplitDays(a) {
		set[d] = struct{}{}
	}
	for _, d := range SplitDays(b) {
		if _, ok := set[d]; ok {
			return true
		}
	}
	return false
}

// parseTimeRange converts "9:00-10:15" into start and end minutes from midnight.
func parseTimeRange(r string) (int, int, error) {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	start, err := timeToMinutes(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := timeToMinutes(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func timeToMinutes(t string) (int, error) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, strconv.ErrSyntax
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	return hour*60 + minute, nil
}
