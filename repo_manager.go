package sochx

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories plus transaction scope.
type RepositoryManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	PasswordResetTokens() PasswordResetTokens
	Notifications() Notifications
	Projects() Projects
	Community() Community
	Resources() Resources
}

type mngr struct {
	db             *bun.DB
	users          Users
	passwordResets PasswordResetTokens
	notifications  Notifications
	projects       Projects
	community      Community
	resources      Resources
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		passwordResets: NewPasswordResetTokensRepository(db),
		notifications:  NewNotificationsRepository(db),
		projects:       NewProjectsRepository(db),
		community:      NewCommunityRepository(db),
		resources:      NewResourcesRepository(db),
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users                             { return m.users }
func (m mngr) PasswordResetTokens() PasswordResetTokens { return m.passwordResets }
func (m mngr) Notifications() Notifications             { return m.notifications }
func (m mngr) Projects() Projects                       { return m.projects }
func (m mngr) Community() Community                     { return m.community }
func (m mngr) Resources() Resources                     { return m.resources }

// CreateSchema creates all tables and indexes. It is idempotent and intended
// for startup against the embedded sqlite database.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("database handle is required")
	}

	models := []any{
		(*User)(nil),
		(*PasswordResetToken)(nil),
		(*Notification)(nil),
		(*Project)(nil),
		(*StageProgress)(nil),
		(*DiscussionThread)(nil),
		(*DiscussionPost)(nil),
		(*Resource)(nil),
		(*ResourceBookmark)(nil),
		(*ResourceView)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
