// Package roster is the identity & membership port of the progress engine.
// Users, classrooms and subjects are managed elsewhere; the engine only reads them.
package roster

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/trezcool/maendeleo/core"
)

// Roles
const (
	RoleAdmin   = "admin:"
	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

	// errors
	ErrUserNotFound      = errors.New("user not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrSubjectNotFound   = errors.New("subject not found")
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (u User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool   { return u.RoleStartsWith(RoleAdmin) }
func (u User) IsTeacher() bool { return u.RoleStartsWith(RoleTeacher) }
func (u User) IsStudent() bool { return u.RoleStartsWith(RoleStudent) }

type Classroom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Subject struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Repository interface {
	CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	GetUser(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
	CreateClassroom(ctx context.Context, cls Classroom, exec ...core.DBExecutor) (Classroom, error)
	GetClassroom(ctx context.Context, id string, exec ...core.DBExecutor) (Classroom, error)
	AddMember(ctx context.Context, classroomID, userID string, exec ...core.DBExecutor) error
	IsInClassroom(ctx context.Context, classroomID, userID string, exec ...core.DBExecutor) (bool, error)
	CreateSubject(ctx context.Context, subj Subject, exec ...core.DBExecutor) (Subject, error)
	GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
}
