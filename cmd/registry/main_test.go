package main

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
	"github.com/noah-isme/campus-registry/internal/service"
	"github.com/noah-isme/campus-registry/internal/store"
)

func newTestTerminal(t *testing.T) (*terminal, *store.Roster, *store.Catalog, *service.SessionService) {
	t.Helper()
	repo, err := repository.NewCSVStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	creds := store.NewCredentialStore(bcrypt.MinCost, 6)
	catalog := store.NewCatalog()
	roster := store.NewRoster(catalog)
	sessions := service.NewSessionService(creds, roster, catalog, repo, nil, zap.NewNop(), service.SessionConfig{})
	ui := &terminal{in: bufio.NewScanner(strings.NewReader("")), sessions: sessions}
	return ui, roster, catalog, sessions
}

func TestTerminalAdminEnrollsNamedStudent(t *testing.T) {
	ui, roster, _, sessions := newTestTerminal(t)
	ctx := context.Background()
	require.NoError(t, sessions.SeedDefaults(ctx))

	admin, err := sessions.Login(ctx, models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	ui.current = admin

	ui.enroll(ctx, []string{"CS101", "S001"})
	ids, err := roster.CoursesFor("S001")
	require.NoError(t, err)
	assert.Contains(t, ids, "CS101")

	ui.drop(ctx, []string{"CS101", "S001"})
	ids, err = roster.CoursesFor("S001")
	require.NoError(t, err)
	assert.NotContains(t, ids, "CS101")
}

func TestTerminalAdminEnrollWithoutStudentIsRejected(t *testing.T) {
	ui, _, catalog, sessions := newTestTerminal(t)
	ctx := context.Background()
	require.NoError(t, sessions.SeedDefaults(ctx))

	admin, err := sessions.Login(ctx, models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	ui.current = admin

	ui.enroll(ctx, []string{"CS101"})
	seats, err := catalog.AvailableSeats("CS101")
	require.NoError(t, err)
	assert.Equal(t, 30, seats)
}

func TestTerminalStudentEnrollsSelf(t *testing.T) {
	ui, roster, _, sessions := newTestTerminal(t)
	ctx := context.Background()
	require.NoError(t, sessions.SeedDefaults(ctx))

	student, err := sessions.Login(ctx, models.LoginRequest{
		Username: "student", Password: "student123", StudentID: "S001",
	})
	require.NoError(t, err)
	ui.current = student

	ui.enroll(ctx, []string{"CS101"})
	ids, err := roster.CoursesFor("S001")
	require.NoError(t, err)
	assert.Contains(t, ids, "CS101")
}
