package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-registry/internal/models"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
	"github.com/noah-isme/campus-registry/pkg/export"
)

type exportRoster interface {
	Get(studentID string) (*models.Student, error)
	StudentsFor(courseID string) ([]string, error)
}

type exportCatalog interface {
	Get(courseID string) (*models.Course, error)
}

type fileStore interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// weekdayOrder fixes the rendering order of compact day tokens.
var weekdayOrder = map[string]int{"M": 0, "T": 1, "W": 2, "Th": 3, "F": 4}

var weekdayNames = map[string]string{
	"M": "Monday", "T": "Tuesday", "W": "Wednesday", "Th": "Thursday", "F": "Friday",
}

// ExportService renders printable schedules and course rosters.
type ExportService struct {
	roster  exportRoster
	catalog exportCatalog
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	files   fileStore
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(roster exportRoster, catalog exportCatalog, files fileStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster:  roster,
		catalog: catalog,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		files:   files,
		logger:  logger,
	}
}

// ExportSchedule writes the student's weekly schedule in the given format
// and returns the stored file path.
func (s *ExportService) ExportSchedule(ctx context.Context, studentID, format string) (string, error) {
	student, err := s.roster.Get(studentID)
	if err != nil {
		return "", err
	}
	dataset := s.scheduleDataset(student)
	title := fmt.Sprintf("Schedule for %s (%s)", student.Name, student.ID)
	filename := fmt.Sprintf("schedule_%s.%s", student.ID, format)
	return s.render(dataset, title, filename, format)
}

// ExportRoster writes the course's enrolled-student list in the given format
// and returns the stored file path.
func (s *ExportService) ExportRoster(ctx context.Context, courseID, format string) (string, error) {
	course, err := s.catalog.Get(courseID)
	if err != nil {
		return "", err
	}
	studentIDs, err := s.roster.StudentsFor(courseID)
	if err != nil {
		return "", err
	}

	dataset := export.Dataset{Headers: []string{"student_id", "display_name"}}
	for _, id := range studentIDs {
		name := ""
		if student, err := s.roster.Get(id); err == nil {
			name = student.Name
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student_id":   id,
			"display_name": name,
		})
	}

	title := fmt.Sprintf("Roster for %s (%s)", course.Name, course.ID)
	filename := fmt.Sprintf("roster_%s.%s", course.ID, format)
	return s.render(dataset, title, filename, format)
}

// scheduleDataset expands the student's scheduled courses into one row per
// meeting day, ordered Monday through Friday then by start time. Courses
// without schedule information are omitted from the printed schedule.
func (s *ExportService) scheduleDataset(student *models.Student) export.Dataset {
	type meeting struct {
		day    string
		course *models.Course
	}
	var meetings []meeting
	for _, courseID := range student.CourseIDs() {
		course, err := s.catalog.Get(courseID)
		if err != nil {
			continue
		}
		if course.Schedule.Days == "" || course.Schedule.Time == "" {
			continue
		}
		for _, day := range models.SplitDays(course.Schedule.Days) {
			if _, ok := weekdayOrder[day]; !ok {
				continue
			}
			meetings = append(meetings, meeting{day: day, course: course})
		}
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		if weekdayOrder[meetings[i].day] != weekdayOrder[meetings[j].day] {
			return weekdayOrder[meetings[i].day] < weekdayOrder[meetings[j].day]
		}
		iStart, iOK := models.StartMinutes(meetings[i].course.Schedule.Time)
		jStart, jOK := models.StartMinutes(meetings[j].course.Schedule.Time)
		if iOK && jOK {
			return iStart < jStart
		}
		return meetings[i].course.Schedule.Time < meetings[j].course.Schedule.Time
	})

	dataset := export.Dataset{Headers: []string{"day", "time", "course_id", "name", "instructor", "location"}}
	for _, m := range meetings {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"day":        weekdayNames[m.day],
			"time":       m.course.Schedule.Time,
			"course_id":  m.course.ID,
			"name":       m.course.Name,
			"instructor": m.course.Instructor,
			"location":   m.course.Schedule.Location,
		})
	}
	return dataset
}

func (s *ExportService) render(dataset export.Dataset, title, filename, format string) (string, error) {
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = s.csv.Render(dataset)
	case FormatPDF:
		data, err = s.pdf.Render(dataset, title)
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render export")
	}
	if _, err := s.files.Save(filename, data); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrPersistence.Code, "failed to store export")
	}
	path := s.files.Path(filename)
	s.logger.Info("export written", zap.String("path", path))
	return path, nil
}
