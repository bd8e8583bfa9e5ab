package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/store"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
)

type mockFileStore struct {
	filename string
	data     []byte
	err      error
}

func (m *mockFileStore) Save(filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.filename = filename
	m.data = data
	return "/exports/" + filename, nil
}

func (m *mockFileStore) Path(filename string) string {
	return "/exports/" + filename
}

func newExportFixture(t *testing.T) (*ExportService, *store.Roster, *store.Catalog, *mockFileStore) {
	t.Helper()
	catalog := store.NewCatalog()
	roster := store.NewRoster(catalog)
	files := &mockFileStore{}
	svc := NewExportService(roster, catalog, files, nil)
	return svc, roster, catalog, files
}

func TestExportScheduleCSV(t *testing.T) {
	svc, roster, catalog, files := newExportFixture(t)

	cs := models.NewCourse("CS101", "Intro", "Dr. Reyes", 30)
	cs.Schedule = models.Schedule{Days: "MWF", Time: "9:00-10:15", Location: "ENG 201"}
	math := models.NewCourse("MATH201", "Linear Algebra", "Dr. Tan", 25)
	math.Schedule = models.Schedule{Days: "TTh", Time: "13:00-14:15", Location: "SCI 310"}
	unscheduled := models.NewCourse("PE100", "Fitness", "Staff", 40)
	for _, c := range []*models.Course{cs, math, unscheduled} {
		require.NoError(t, catalog.Add(c))
	}

	_, err := roster.AddStudent("S001", "Ada")
	require.NoError(t, err)
	for _, id := range []string{"CS101", "MATH201", "PE100"} {
		_, err := roster.Enroll("S001", id)
		require.NoError(t, err)
	}

	path, err := svc.ExportSchedule(context.Background(), "S001", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "/exports/schedule_S001.csv", path)
	assert.Equal(t, "schedule_S001.csv", files.filename)

	lines := strings.Split(strings.TrimSpace(string(files.data)), "\n")
	require.Len(t, lines, 6, "one header plus one row per meeting day")
	assert.Equal(t, "day,time,course_id,name,instructor,location", lines[0])

	// Rows run Monday through Friday; the unscheduled course is omitted.
	assert.True(t, strings.HasPrefix(lines[1], "Monday,9:00-10:15,CS101"))
	assert.True(t, strings.HasPrefix(lines[2], "Tuesday,13:00-14:15,MATH201"))
	assert.True(t, strings.HasPrefix(lines[3], "Wednesday,9:00-10:15,CS101"))
	assert.True(t, strings.HasPrefix(lines[4], "Thursday,13:00-14:15,MATH201"))
	assert.True(t, strings.HasPrefix(lines[5], "Friday,9:00-10:15,CS101"))
	assert.NotContains(t, string(files.data), "PE100")
}

func TestExportScheduleOrdersByTimeWithinDay(t *testing.T) {
	svc, roster, catalog, files := newExportFixture(t)

	late := models.NewCourse("CS301", "Compilers", "Dr. Okafor", 20)
	late.Schedule = models.Schedule{Days: "M", Time: "14:00-15:15", Location: "ENG 105"}
	early := models.NewCourse("CS101", "Intro", "Dr. Reyes", 30)
	early.Schedule = models.Schedule{Days: "M", Time: "9:00-10:15", Location: "ENG 201"}
	require.NoError(t, catalog.Add(late))
	require.NoError(t, catalog.Add(early))

	_, err := roster.AddStudent("S001", "Ada")
	require.NoError(t, err)
	_, err = roster.Enroll("S001", "CS301")
	require.NoError(t, err)
	_, err = roster.Enroll("S001", "CS101")
	require.NoError(t, err)

	_, err = svc.ExportSchedule(context.Background(), "S001", FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(files.data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "CS101")
	assert.Contains(t, lines[2], "CS301")
}

func TestExportScheduleUnknownStudent(t *testing.T) {
	svc, _, _, _ := newExportFixture(t)

	_, err := svc.ExportSchedule(context.Background(), "S999", FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
}

func TestExportSchedulePDF(t *testing.T) {
	svc, roster, catalog, files := newExportFixture(t)

	cs := models.NewCourse("CS101", "Intro", "Dr. Reyes", 30)
	cs.Schedule = models.Schedule{Days: "M", Time: "9:00-10:15", Location: "ENG 201"}
	require.NoError(t, catalog.Add(cs))
	_, err := roster.AddStudent("S001", "Ada")
	require.NoError(t, err)
	_, err = roster.Enroll("S001", "CS101")
	require.NoError(t, err)

	path, err := svc.ExportSchedule(context.Background(), "S001", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "/exports/schedule_S001.pdf", path)
	assert.True(t, strings.HasPrefix(string(files.data), "%PDF"))
}

func TestExportRosterCSV(t *testing.T) {
	svc, roster, catalog, files := newExportFixture(t)

	require.NoError(t, catalog.Add(models.NewCourse("CS101", "Intro", "Dr. Reyes", 30)))
	for _, s := range []struct{ id, name string }{{"S002", "Grace"}, {"S001", "Ada"}} {
		_, err := roster.AddStudent(s.id, s.name)
		require.NoError(t, err)
		_, err = roster.Enroll(s.id, "CS101")
		require.NoError(t, err)
	}

	path, err := svc.ExportRoster(context.Background(), "CS101", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "/exports/roster_CS101.csv", path)
	assert.Equal(t, "student_id,display_name\nS001,Ada\nS002,Grace\n", string(files.data))
}

func TestExportRosterUnknownCourse(t *testing.T) {
	svc, _, _, _ := newExportFixture(t)

	_, err := svc.ExportRoster(context.Background(), "GHOST", FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc, roster, _, _ := newExportFixture(t)
	_, err := roster.AddStudent("S001", "Ada")
	require.NoError(t, err)

	_, err = svc.ExportSchedule(context.Background(), "S001", "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportSurfacesSaveFailure(t *testing.T) {
	svc, roster, _, files := newExportFixture(t)
	_, err := roster.AddStudent("S001", "Ada")
	require.NoError(t, err)
	files.err = assert.AnError

	_, err = svc.ExportSchedule(context.Background(), "S001", FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
}
