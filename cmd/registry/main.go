package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
	"github.com/noah-isme/campus-registry/internal/service"
	"github.com/noah-isme/campus-registry/internal/store"
	"github.com/noah-isme/campus-registry/pkg/config"
	appErrors "github.com/noah-isme/campus-registry/pkg/errors"
	"github.com/noah-isme/campus-registry/pkg/logger"
	"github.com/noah-isme/campus-registry/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	repo, err := repository.NewCSVStore(cfg.Data.Directory, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open data directory", "error", err)
	}

	snap, err := repo.LoadAll()
	if err != nil {
		logr.Sugar().Fatalw("failed to load stored data", "error", err)
	}

	creds := store.NewCredentialStore(cfg.Auth.BcryptCost, cfg.Auth.MinPasswordLength)
	if rejected := creds.Load(snap.Accounts); len(rejected) > 0 {
		logr.Warn("rejected duplicate account rows", zap.Int("count", len(rejected)))
	}
	catalog := store.NewCatalog()
	catalog.Load(snap.Courses)
	roster := store.NewRoster(catalog)
	roster.Load(snap.Students)

	logr.Info("store loaded",
		zap.Int("accounts", creds.Len()),
		zap.Int("students", roster.Len()),
		zap.Int("courses", catalog.Len()),
		zap.Int("orphaned_enrollments", snap.Orphans),
		zap.Int("skipped_rows", snap.Skipped))

	sessions := service.NewSessionService(creds, roster, catalog, repo, nil, logr, service.SessionConfig{
		TokenSecret: cfg.Auth.TokenSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
	})

	ctx := context.Background()
	if cfg.Auth.SeedDefaults {
		if err := sessions.SeedDefaults(ctx); err != nil {
			logr.Sugar().Fatalw("failed to seed defaults", "error", err)
		}
	}

	files, err := storage.NewLocalStorage(cfg.Export.Directory)
	if err != nil {
		logr.Sugar().Fatalw("failed to open export directory", "error", err)
	}
	exports := service.NewExportService(roster, catalog, files, logr)

	ui := &terminal{
		in:       bufio.NewScanner(os.Stdin),
		sessions: sessions,
		exports:  exports,
	}
	ui.run(ctx)

	// Flush every table on exit.
	if err := repo.SaveAccounts(creds.All()); err != nil {
		logr.Warn("final accounts flush failed", zap.Error(err))
	}
	if err := repo.SaveStudents(roster.All()); err != nil {
		logr.Warn("final students flush failed", zap.Error(err))
	}
	if err := repo.SaveCourses(catalog.List()); err != nil {
		logr.Warn("final courses flush failed", zap.Error(err))
	}
	if err := repo.SaveEnrollments(roster.All()); err != nil {
		logr.Warn("final enrollments flush failed", zap.Error(err))
	}
}

// terminal is the interactive front end. It owns no business logic; every
// command maps onto one SessionService or ExportService call.
type terminal struct {
	in       *bufio.Scanner
	sessions *service.SessionService
	exports  *service.ExportService
	current  *models.Session
}

func (t *terminal) run(ctx context.Context) {
	fmt.Println("campus-registry (type 'help' for commands)")
	for {
		fmt.Print("> ")
		if !t.in.Scan() {
			return
		}
		fields := strings.Fields(t.in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			t.help()
		case "register":
			t.register(ctx)
		case "login":
			t.login(ctx)
		case "logout":
			t.logout(ctx)
		case "list":
			t.listCourses(ctx)
		case "mine":
			t.myCourses(ctx)
		case "enroll":
			t.enroll(ctx, args)
		case "drop":
			t.drop(ctx, args)
		case "passwd":
			t.changePassword(ctx)
		case "add-course":
			t.addCourse(ctx)
		case "schedule":
			t.exportSchedule(ctx, args)
		case "roster":
			t.exportRoster(ctx, args)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command; type 'help'")
		}
	}
}

func (t *terminal) help() {
	fmt.Print(`commands:
  register                 create an account and student record
  login / logout           start or end a session
  list                     list all courses with seat availability
  mine                     list your enrolled courses
  enroll <course-id> [student-id]  enroll in a course (admin may name a student)
  drop <course-id> [student-id]    drop a course
  passwd                   change your password
  add-course               add a course to the catalog (admin)
  schedule [csv|pdf]       export your weekly schedule
  roster <course-id> [csv|pdf]  export a course roster (admin)
  quit
`)
}

func (t *terminal) prompt(label string) string {
	fmt.Print(label + ": ")
	if !t.in.Scan() {
		return ""
	}
	return strings.TrimSpace(t.in.Text())
}

func (t *terminal) register(ctx context.Context) {
	req := models.RegisterRequest{
		Username:        t.prompt("username"),
		Password:        t.prompt("password"),
		ConfirmPassword: t.prompt("confirm password"),
		StudentID:       t.prompt("student id"),
		DisplayName:     t.prompt("display name"),
	}
	acct, err := t.sessions.Register(ctx, req)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Printf("registered %s (student %s)\n", acct.Username, acct.StudentID)
}

func (t *terminal) login(ctx context.Context) {
	req := models.LoginRequest{
		Username:  t.prompt("username"),
		Password:  t.prompt("password"),
		StudentID: t.prompt("student id (blank for admin)"),
	}
	session, err := t.sessions.Login(ctx, req)
	if err != nil {
		t.fail(err)
		return
	}
	t.current = session
	fmt.Printf("welcome, %s\n", session.Username)
}

func (t *terminal) logout(ctx context.Context) {
	if t.current == nil {
		fmt.Println("not logged in")
		return
	}
	if err := t.sessions.Logout(ctx, t.current.Token); err != nil {
		t.fail(err)
		return
	}
	t.current = nil
	fmt.Println("logged out")
}

func (t *terminal) listCourses(ctx context.Context) {
	if t.current == nil {
		fmt.Println("login first")
		return
	}
	listings, err := t.sessions.ListCourses(ctx, t.current.Token)
	if err != nil {
		t.fail(err)
		return
	}
	for _, l := range listings {
		mark := " "
		if l.Enrolled {
			mark = "*"
		}
		status := fmt.Sprintf("%d seats", l.AvailableSeats)
		if l.AvailableSeats == 0 {
			status = "FULL"
		}
		fmt.Printf("%s %-10s %-40s %-20s %s\n", mark, l.Course.ID, l.Course.Name, l.Course.Instructor, status)
	}
}

func (t *terminal) myCourses(ctx context.Context) {
	if t.current == nil {
		fmt.Println("login first")
		return
	}
	courses, err := t.sessions.MyCourses(ctx, t.current.Token)
	if err != nil {
		t.fail(err)
		return
	}
	if len(courses) == 0 {
		fmt.Println("no enrollments")
		return
	}
	for _, c := range courses {
		fmt.Printf("%-10s %-40s %s %s\n", c.ID, c.Name, c.Schedule.Days, c.Schedule.Time)
	}
}

func (t *terminal) enroll(ctx context.Context, args []string) {
	if t.current == nil || len(args) < 1 {
		fmt.Println("usage (logged in): enroll <course-id> [student-id]")
		return
	}
	studentID, ok := t.actingStudent(args)
	if !ok {
		return
	}
	course, err := t.sessions.Enroll(ctx, t.current.Token, studentID, args[0])
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Printf("enrolled in %s; %d seats left\n", course.Name, course.AvailableSeats())
}

func (t *terminal) drop(ctx context.Context, args []string) {
	if t.current == nil || len(args) < 1 {
		fmt.Println("usage (logged in): drop <course-id> [student-id]")
		return
	}
	studentID, ok := t.actingStudent(args)
	if !ok {
		return
	}
	course, err := t.sessions.Drop(ctx, t.current.Token, studentID, args[0])
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Printf("dropped %s; %d seats left\n", course.Name, course.AvailableSeats())
}

// actingStudent resolves which student an enroll/drop acts on: the optional
// second argument when given, otherwise the session's own student. Admin
// sessions have no linked student and must name one.
func (t *terminal) actingStudent(args []string) (string, bool) {
	studentID := t.current.StudentID
	if len(args) > 1 {
		studentID = args[1]
	}
	if studentID == "" {
		fmt.Println("admin sessions must name a student: <course-id> <student-id>")
		return "", false
	}
	return studentID, true
}

func (t *terminal) changePassword(ctx context.Context) {
	if t.current == nil {
		fmt.Println("login first")
		return
	}
	req := models.ChangePasswordRequest{
		OldPassword: t.prompt("current password"),
		NewPassword: t.prompt("new password"),
	}
	if err := t.sessions.ChangePassword(ctx, t.current.Token, req); err != nil {
		t.fail(err)
		return
	}
	fmt.Println("password changed")
}

func (t *terminal) addCourse(ctx context.Context) {
	if t.current == nil {
		fmt.Println("login first")
		return
	}
	courseID := t.prompt("course id")
	name := t.prompt("name")
	instructor := t.prompt("instructor")
	capacity, err := strconv.Atoi(t.prompt("capacity"))
	if err != nil {
		fmt.Println("capacity must be a number")
		return
	}
	req := models.AddCourseRequest{
		CourseID:   courseID,
		Name:       name,
		Instructor: instructor,
		Capacity:   capacity,
		Days:       t.prompt("days (e.g. MWF, blank to skip)"),
		Time:       t.prompt("time (e.g. 9:00-10:15, blank to skip)"),
		Location:   t.prompt("location (blank to skip)"),
	}
	course, err := t.sessions.AddCourse(ctx, t.current.Token, req)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Printf("added %s (%s), capacity %d\n", course.ID, course.Name, course.Capacity)
}

func (t *terminal) exportSchedule(ctx context.Context, args []string) {
	if t.current == nil || t.current.StudentID == "" {
		fmt.Println("login as a student first")
		return
	}
	format := service.FormatPDF
	if len(args) > 0 {
		format = args[0]
	}
	path, err := t.exports.ExportSchedule(ctx, t.current.StudentID, format)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println("schedule written to", path)
}

func (t *terminal) exportRoster(ctx context.Context, args []string) {
	if t.current == nil || t.current.Role != models.RoleAdmin {
		fmt.Println("login as admin first")
		return
	}
	if len(args) < 1 {
		fmt.Println("usage: roster <course-id> [csv|pdf]")
		return
	}
	format := service.FormatCSV
	if len(args) > 1 {
		format = args[1]
	}
	path, err := t.exports.ExportRoster(ctx, args[0], format)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println("roster written to", path)
}

func (t *terminal) fail(err error) {
	e := appErrors.FromError(err)
	fmt.Printf("error [%s]: %s\n", e.Code, e.Message)
}
