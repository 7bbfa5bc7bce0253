package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
)

type rosterRepository struct {
	db *DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) *rosterRepository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) CreateUser(_ context.Context, usr roster.User, exec ...core.DBExecutor) (roster.User, error) {
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now().UTC()
	}
	err := repo.db.do(exec, func(t *tables) error {
		t.users[usr.ID] = usr
		return nil
	})
	return usr, err
}

func (repo *rosterRepository) GetUser(_ context.Context, id string, exec ...core.DBExecutor) (usr roster.User, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if usr, ok = t.users[id]; !ok {
			return roster.ErrUserNotFound
		}
		return nil
	})
	return usr, err
}

func (repo *rosterRepository) CreateClassroom(_ context.Context, cls roster.Classroom, exec ...core.DBExecutor) (roster.Classroom, error) {
	if cls.CreatedAt.IsZero() {
		cls.CreatedAt = time.Now().UTC()
	}
	err := repo.db.do(exec, func(t *tables) error {
		t.classrooms[cls.ID] = cls
		return nil
	})
	return cls, err
}

func (repo *rosterRepository) GetClassroom(_ context.Context, id string, exec ...core.DBExecutor) (cls roster.Classroom, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if cls, ok = t.classrooms[id]; !ok {
			return roster.ErrClassroomNotFound
		}
		return nil
	})
	return cls, err
}

func (repo *rosterRepository) AddMember(_ context.Context, classroomID, userID string, exec ...core.DBExecutor) error {
	return repo.db.do(exec, func(t *tables) error {
		if _, ok := t.classrooms[classroomID]; !ok {
			return roster.ErrClassroomNotFound
		}
		if _, ok := t.users[userID]; !ok {
			return roster.ErrUserNotFound
		}
		t.members[memberKey{classroomID, userID}] = struct{}{}
		return nil
	})
}

func (repo *rosterRepository) IsInClassroom(_ context.Context, classroomID, userID string, exec ...core.DBExecutor) (ok bool, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		_, ok = t.members[memberKey{classroomID, userID}]
		return nil
	})
	return ok, err
}

func (repo *rosterRepository) CreateSubject(_ context.Context, subj roster.Subject, exec ...core.DBExecutor) (roster.Subject, error) {
	if subj.CreatedAt.IsZero() {
		subj.CreatedAt = time.Now().UTC()
	}
	err := repo.db.do(exec, func(t *tables) error {
		if _, ok := t.classrooms[subj.ClassroomID]; !ok {
			return roster.ErrClassroomNotFound
		}
		t.subjects[subj.ID] = subj
		return nil
	})
	return subj, err
}

func (repo *rosterRepository) GetSubject(_ context.Context, id string, exec ...core.DBExecutor) (subj roster.Subject, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if subj, ok = t.subjects[id]; !ok {
			return roster.ErrSubjectNotFound
		}
		return nil
	})
	return subj, err
}
