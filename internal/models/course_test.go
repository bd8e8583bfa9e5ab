package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDays(t *testing.T) {
	assert.Equal(t, []string{"M", "W", "F"}, SplitDays("MWF"))
	assert.Equal(t, []string{"T", "Th"}, SplitDays("TTh"))
	assert.Equal(t, []string{"Th"}, SplitDays("Th"))
	assert.Empty(t, SplitDays(""))
}

func TestCourseConflictsWith(t *testing.T) {
	base := NewCourse("CS101", "Intro", "Staff", 10)
	base.Schedule = Schedule{Days: "MWF", Time: "9:00-10:15"}

	overlap := NewCourse("CS102", "Next", "Staff", 10)
	overlap.Schedule = Schedule{Days: "WF", Time: "10:00-11:15"}
	assert.True(t, base.ConflictsWith(overlap))
	assert.True(t, overlap.ConflictsWith(base))

	adjacent := NewCourse("CS103", "Later", "Staff", 10)
	adjacent.Schedule = Schedule{Days: "MWF", Time: "10:15-11:30"}
	assert.False(t, base.ConflictsWith(adjacent))

	otherDays := NewCourse("CS104", "Tuesdays", "Staff", 10)
	otherDays.Schedule = Schedule{Days: "TTh", Time: "9:00-10:15"}
	assert.False(t, base.ConflictsWith(otherDays))

	// "T" and "Th" are distinct days.
	thursdays := NewCourse("CS105", "Thursdays", "Staff", 10)
	thursdays.Schedule = Schedule{Days: "Th", Time: "9:00-10:15"}
	tuesdays := NewCourse("CS106", "Tuesdays", "Staff", 10)
	tuesdays.Schedule = Schedule{Days: "T", Time: "9:00-10:15"}
	assert.False(t, thursdays.ConflictsWith(tuesdays))

	unscheduled := NewCourse("CS107", "Async", "Staff", 10)
	assert.False(t, base.ConflictsWith(unscheduled))
	assert.False(t, unscheduled.ConflictsWith(base))

	garbled := NewCourse("CS108", "Garbled", "Staff", 10)
	garbled.Schedule = Schedule{Days: "MWF", Time: "morning"}
	assert.False(t, base.ConflictsWith(garbled))

	assert.False(t, base.ConflictsWith(nil))
}

func TestCourseEnrollmentHelpers(t *testing.T) {
	course := NewCourse("CS101", "Intro", "Staff", 2)
	assert.Equal(t, 2, course.AvailableSeats())
	assert.False(t, course.IsFull())

	course.AddStudent("S001")
	course.AddStudent("S002")
	course.AddStudent("S002") // sets dedupe
	assert.True(t, course.IsFull())
	assert.Equal(t, 0, course.AvailableSeats())
	assert.Equal(t, 2, course.EnrollmentCount())
	assert.True(t, course.HasStudent("S001"))
	assert.Equal(t, []string{"S001", "S002"}, course.StudentIDs())

	course.RemoveStudent("S001")
	assert.False(t, course.HasStudent("S001"))
	assert.Equal(t, 1, course.AvailableSeats())
}

func TestStudentEnrollmentHelpers(t *testing.T) {
	student := NewStudent("S001", "Ada")
	assert.Equal(t, 0, student.CourseCount())

	student.AddCourse("CS101")
	student.AddCourse("CS101")
	student.AddCourse("MATH201")
	assert.Equal(t, 2, student.CourseCount())
	assert.True(t, student.EnrolledIn("CS101"))
	assert.Equal(t, []string{"CS101", "MATH201"}, student.CourseIDs())

	student.RemoveCourse("CS101")
	assert.False(t, student.EnrolledIn("CS101"))
}

func TestStartMinutes(t *testing.T) {
	start, ok := StartMinutes("9:00-10:15")
	assert.True(t, ok)
	assert.Equal(t, 9*60, start)

	start, ok = StartMinutes("14:00-15:15")
	assert.True(t, ok)
	assert.Equal(t, 14*60, start)

	// Numeric comparison, unlike the raw string, puts 9:00 before 14:00.
	morning, _ := StartMinutes("9:00-10:15")
	afternoon, _ := StartMinutes("14:00-15:15")
	assert.Less(t, morning, afternoon)

	_, ok = StartMinutes("garbled")
	assert.False(t, ok)
	_, ok = StartMinutes("")
	assert.False(t, ok)
}
