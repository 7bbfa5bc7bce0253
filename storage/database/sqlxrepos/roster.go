package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
)

type rosterRepository struct {
	repo
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{repo{db: db}}
}

type userRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Roles     pq.StringArray `db:"roles"`
	CreatedAt time.Time      `db:"created_at"`
}

func (row userRow) user() roster.User {
	return roster.User{ID: row.ID, Name: row.Name, Roles: []string(row.Roles), CreatedAt: row.CreatedAt}
}

func (r rosterRepository) CreateUser(ctx context.Context, usr roster.User, exec ...core.DBExecutor) (roster.User, error) {
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now().UTC()
	}
	_, err := r.getExec(exec).ExecContext(ctx,
		`INSERT INTO "user" (id, name, roles, created_at) VALUES ($1, $2, $3, $4)`,
		usr.ID, usr.Name, pq.StringArray(usr.Roles), usr.CreatedAt)
	if err != nil {
		return roster.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (r rosterRepository) GetUser(ctx context.Context, id string, exec ...core.DBExecutor) (roster.User, error) {
	if !isUUID(id) {
		return roster.User{}, roster.ErrUserNotFound
	}
	var row userRow
	err := sqlx.GetContext(ctx, r.getExec(exec), &row, `SELECT id, name, roles, created_at FROM "user" WHERE id = $1`, id)
	if err != nil {
		return roster.User{}, trapNoRowsErr(err, roster.ErrUserNotFound, "getting user")
	}
	return row.user(), nil
}

func (r rosterRepository) CreateClassroom(ctx context.Context, cls roster.Classroom, exec ...core.DBExecutor) (roster.Classroom, error) {
	if cls.CreatedAt.IsZero() {
		cls.CreatedAt = time.Now().UTC()
	}
	_, err := r.getExec(exec).ExecContext(ctx,
		`INSERT INTO classroom (id, name, created_at) VALUES ($1, $2, $3)`, cls.ID, cls.Name, cls.CreatedAt)
	if err != nil {
		return roster.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	return cls, nil
}

func (r rosterRepository) GetClassroom(ctx context.Context, id string, exec ...core.DBExecutor) (roster.Classroom, error) {
	if !isUUID(id) {
		return roster.Classroom{}, roster.ErrClassroomNotFound
	}
	var cls roster.Classroom
	err := r.getExec(exec).QueryRowxContext(ctx, `SELECT id, name, created_at FROM classroom WHERE id = $1`, id).
		Scan(&cls.ID, &cls.Name, &cls.CreatedAt)
	if err != nil {
		return roster.Classroom{}, trapNoRowsErr(err, roster.ErrClassroomNotFound, "getting classroom")
	}
	return cls, nil
}

func (r rosterRepository) AddMember(ctx context.Context, classroomID, userID string, exec ...core.DBExecutor) error {
	_, err := r.getExec(exec).ExecContext(ctx,
		`INSERT INTO classroom_member (classroom_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, classroomID, userID)
	return errors.Wrap(err, "adding classroom member")
}

func (r rosterRepository) IsInClassroom(ctx context.Context, classroomID, userID string, exec ...core.DBExecutor) (bool, error) {
	if !isUUID(classroomID) || !isUUID(userID) {
		return false, nil
	}
	var ok bool
	err := sqlx.GetContext(ctx, r.getExec(exec), &ok,
		`SELECT EXISTS (SELECT 1 FROM classroom_member WHERE classroom_id = $1 AND user_id = $2)`, classroomID, userID)
	return ok, errors.Wrap(err, "checking classroom membership")
}

func (r rosterRepository) CreateSubject(ctx context.Context, subj roster.Subject, exec ...core.DBExecutor) (roster.Subject, error) {
	if subj.CreatedAt.IsZero() {
		subj.CreatedAt = time.Now().UTC()
	}
	_, err := r.getExec(exec).ExecContext(ctx,
		`INSERT INTO subject (id, classroom_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		subj.ID, subj.ClassroomID, subj.Name, subj.CreatedAt)
	if err != nil {
		return roster.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (r rosterRepository) GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (roster.Subject, error) {
	if !isUUID(id) {
		return roster.Subject{}, roster.ErrSubjectNotFound
	}
	var subj roster.Subject
	err := r.getExec(exec).QueryRowxContext(ctx,
		`SELECT id, classroom_id, name, created_at FROM subject WHERE id = $1`, id).
		Scan(&subj.ID, &subj.ClassroomID, &subj.Name, &subj.CreatedAt)
	if err != nil {
		return roster.Subject{}, trapNoRowsErr(err, roster.ErrSubjectNotFound, "getting subject")
	}
	return subj, nil
}
