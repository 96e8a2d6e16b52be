package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/database/testutil"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
)

var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	repos *repository.Repositories
	hub   *recordingHub
	core  Core
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	repos := repository.New(db)

	checker, err := permissions.NewChecker(permissions.NewStoreResolver(repos.Members))
	require.NoError(t, err)

	hub := &recordingHub{}
	notifier, err := NewNotificationService(repos.Notifications, hub)
	require.NoError(t, err)
	audit, err := NewAuditService(repos.AuditLogs, checker)
	require.NoError(t, err)
	events, err := NewEventWriter(repos.Outbox, "lynkskill")
	require.NoError(t, err)

	env := &testEnv{t: t, ctx: context.Background(), db: db, repos: repos, hub: hub, now: testNow}
	env.core = Core{
		DB:            db,
		Repos:         repos,
		Permissions:   checker,
		Notifications: notifier,
		Audit:         audit,
		Events:        events,
		Syncer:        identity.NopSyncer{},
		Now:           func() time.Time { return env.now },
	}
	return env
}

// user creates a local user and returns its principal.
func (e *testEnv) user(email string, role models.UserRole) *auth.Principal {
	e.t.Helper()

	u := &models.User{
		ExternalID:         "ext-" + email,
		Email:              email,
		Name:               email,
		Role:               role,
		OnboardingComplete: role != "",
	}
	require.NoError(e.t, e.repos.Users.Create(e.ctx, u))
	return PrincipalFor(u)
}

// company creates a company through CompanyService and returns it with its owner.
func (e *testEnv) company(name string) (*models.Company, *auth.Principal) {
	e.t.Helper()

	owner := e.user(name+"-owner@example.com", models.UserRoleCompany)
	svc, err := NewCompanyService(e.core)
	require.NoError(e.t, err)

	company, err := svc.Create(e.ctx, owner, CreateCompanyInput{Name: name, Description: "We build things."})
	require.NoError(e.t, err)
	return company, owner
}

// member attaches an ACTIVE membership with the given default role.
func (e *testEnv) member(companyID string, p *auth.Principal, role models.MemberRole) *models.CompanyMember {
	e.t.Helper()

	m := &models.CompanyMember{
		CompanyID:        companyID,
		UserID:           p.UserID,
		DefaultRole:      role.Ptr(),
		ExtraPermissions: []string{},
		Status:           models.MemberStatusActive,
		JoinedAt:         e.now,
	}
	require.NoError(e.t, e.repos.Members.Create(e.ctx, m))
	return m
}

func (e *testEnv) count(model any, query string, args ...any) int64 {
	e.t.Helper()

	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(e.t, q.Count(&n).Error)
	return n
}

type recordingHub struct {
	mu     sync.Mutex
	events map[string][]notifications.Event
}

func (h *recordingHub) Broadcast(userID string, event notifications.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.events == nil {
		h.events = make(map[string][]notifications.Event)
	}
	h.events[userID] = append(h.events[userID], event)
}

func (h *recordingHub) For(userID string) []notifications.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]notifications.Event(nil), h.events[userID]...)
}

// staleMembers simulates reads that miss a concurrently committed membership. afterRead runs
// once, right after the first FindActiveByUser; hideActive makes every read report no
// ACTIVE membership, including reads inside transactions.
type staleMembers struct {
	repository.MemberRepository
	hideActive bool
	afterRead  func()
}

func (m *staleMembers) FindActiveByUser(ctx context.Context, userID string) (*models.CompanyMember, error) {
	member, err := m.MemberRepository.FindActiveByUser(ctx, userID)
	if fn := m.afterRead; fn != nil {
		m.afterRead = nil
		fn()
	}
	if m.hideActive {
		return nil, repository.ErrNotFound
	}
	return member, err
}

func (m *staleMembers) WithTx(tx *gorm.DB) repository.MemberRepository {
	return &staleMembers{MemberRepository: m.MemberRepository.WithTx(tx), hideActive: m.hideActive}
}

// withMembers swaps the member repository seen by services built afterwards.
func (e *testEnv) withMembers(members repository.MemberRepository) {
	repos := *e.repos
	repos.Members = members
	e.core.Repos = &repos
}

func (e *testEnv) activeMemberships(userID string) int64 {
	e.t.Helper()
	return e.count(&models.CompanyMember{}, "user_id = ? AND status = ?", userID, models.MemberStatusActive)
}
