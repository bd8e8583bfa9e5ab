package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

func TestCatalogAdd(t *testing.T) {
	catalog := NewCatalog()

	err := catalog.Add(models.NewCourse("CS101", "Intro", "Dr. Reyes", 30))
	require.NoError(t, err)

	err = catalog.Add(models.NewCourse("CS101", "Intro Again", "Dr. Reyes", 30))
	assert.ErrorIs(t, err, appErrors.ErrDuplicateCourse)

	err = catalog.Add(models.NewCourse("CS102", "Intro II", "Dr. Reyes", 0))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = catalog.Add(models.NewCourse("", "No ID", "Dr. Reyes", 10))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.Add(models.NewCourse("CS101", "Intro", "Dr. Reyes", 30)))

	course, err := catalog.Get("CS101")
	require.NoError(t, err)
	assert.Equal(t, "Intro", course.Name)

	_, err = catalog.Get("NOPE")
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
}

func TestCatalogListStableOrder(t *testing.T) {
	catalog := NewCatalog()
	for _, id := range []string{"PHYS101", "CS101", "MATH201"} {
		require.NoError(t, catalog.Add(models.NewCourse(id, "Course "+id, "Staff", 10)))
	}

	list := catalog.List()
	require.Len(t, list, 3)
	assert.Equal(t, "CS101", list[0].ID)
	assert.Equal(t, "MATH201", list[1].ID)
	assert.Equal(t, "PHYS101", list[2].ID)
}

func TestCatalogAvailableSeats(t *testing.T) {
	catalog := NewCatalog()
	course := models.NewCourse("CS101", "Intro", "Dr. Reyes", 2)
	require.NoError(t, catalog.Add(course))

	seats, err := catalog.AvailableSeats("CS101")
	require.NoError(t, err)
	assert.Equal(t, 2, seats)

	course.AddStudent("S001")
	seats, err = catalog.AvailableSeats("CS101")
	require.NoError(t, err)
	assert.Equal(t, 1, seats)

	_, err = catalog.AvailableSeats("NOPE")
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
}
