package sochx_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockIdentity implements sochx.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() sochx.UserRole {
	args := m.Called()
	return args.Get(0).(sochx.UserRole)
}

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// fakeUsers is an in-memory Users store.
type fakeUsers struct {
	mu      sync.Mutex
	records map[string]*sochx.User
}

func newFakeUsers(records ...*sochx.User) *fakeUsers {
	f := &fakeUsers{records: map[string]*sochx.User{}}
	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		f.records[r.ID.String()] = r
	}
	return f
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Email == email {
			return r, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUsers) GetByGoogleID(ctx context.Context, googleID string) (*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.GoogleID == googleID {
			return r, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUsers) Create(ctx context.Context, record *sochx.User) (*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = sochx.RoleStudentResearcher
	}
	f.records[record.ID.String()] = record
	return record, nil
}

func (f *fakeUsers) Update(ctx context.Context, record *sochx.User) (*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID.String()] = record
	return record, nil
}

func (f *fakeUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id.String()]
	if !ok {
		return repository.NewRecordNotFound()
	}
	r.PasswordHash = passwordHash
	return nil
}

func (f *fakeUsers) List(ctx context.Context, limit int) ([]*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*sochx.User, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeUsers) ListOthers(ctx context.Context, exclude uuid.UUID, limit int) ([]*sochx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*sochx.User
	for _, r := range f.records {
		if r.ID != exclude {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, r := range f.records {
		out = append(out, r.ID)
	}
	return out, nil
}

func (f *fakeUsers) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records), nil
}

// fakePasswordResets is an in-memory PasswordResetTokens store.
type fakePasswordResets struct {
	mu      sync.Mutex
	records map[string]*sochx.PasswordResetToken
}

func newFakePasswordResets() *fakePasswordResets {
	return &fakePasswordResets{records: map[string]*sochx.PasswordResetToken{}}
}

func (f *fakePasswordResets) Create(ctx context.Context, record *sochx.PasswordResetToken) (*sochx.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records[record.Token] = record
	return record, nil
}

func (f *fakePasswordResets) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*sochx.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[token]; ok {
		return r, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakePasswordResets) DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, r := range f.records {
		if r.UserID == userID {
			delete(f.records, token)
		}
	}
	return nil
}

func (f *fakePasswordResets) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.records {
		if r.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fakeNotifications is an in-memory Notifications store.
type fakeNotifications struct {
	mu      sync.Mutex
	records []*sochx.Notification
	failing bool
}

func (f *fakeNotifications) Create(ctx context.Context, record *sochx.Notification) (*sochx.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, sql.ErrConnDone
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeNotifications) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*sochx.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*sochx.Notification
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && r.UserID == userID {
			now := time.Now()
			r.ReadAt = &now
			return nil
		}
	}
	return repository.NewRecordNotFound()
}

// fakeRepo wires the in-memory stores behind the RepositoryManager surface.
// RunInTx has no transactional semantics; it just invokes the callback.
type fakeRepo struct {
	users          *fakeUsers
	passwordResets *fakePasswordResets
	notifications  *fakeNotifications
}

func newFakeRepo(users ...*sochx.User) *fakeRepo {
	return &fakeRepo{
		users:          newFakeUsers(users...),
		passwordResets: newFakePasswordResets(),
		notifications:  &fakeNotifications{},
	}
}

func (f *fakeRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func (f *fakeRepo) Users() sochx.Users                             { return f.users }
func (f *fakeRepo) PasswordResetTokens() sochx.PasswordResetTokens { return f.passwordResets }
func (f *fakeRepo) Notifications() sochx.Notifications             { return f.notifications }
func (f *fakeRepo) Projects() sochx.Projects                       { return nil }
func (f *fakeRepo) Community() sochx.Community                     { return nil }
func (f *fakeRepo) Resources() sochx.Resources                     { return nil }

// fakeMailer records deliveries and can be made to fail.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	email string
	token string
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{email: email, token: token})
	return nil
}

// fakeBroadcaster records emitted events.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	group   string
	event   string
	payload any
}

func (f *fakeBroadcaster) Emit(group, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emittedEvent{group: group, event: event, payload: payload})
}

func (f *fakeBroadcaster) emitted() []emittedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]emittedEvent, len(f.events))
	copy(out, f.events)
	return out
}

// fixedSecrets returns a predetermined token.
type fixedSecrets struct {
	token string
}

func (f fixedSecrets) Generate(n int) (string, error) {
	return f.token, nil
}
