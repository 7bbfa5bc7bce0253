// Package testutil wires the engine on the in-memory database for tests.
package testutil

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/chart"
	"github.com/trezcool/maendeleo/core/goal"
	"github.com/trezcool/maendeleo/core/progress"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	inmemdb "github.com/trezcool/maendeleo/storage/database/inmem"
)

// Engine holds the services of the engine on a fresh in-memory database.
type Engine struct {
	Conf        *core.Config
	Logger      core.Logger
	DB          *inmemdb.DB
	Invalidated *SpyInvalidator
	Cache       *MemCache

	Roster      roster.Repository
	TermRepo    term.Repository
	ProgRepo    progress.Repository
	GoalRepo    goal.Repository
	TermSvc     *term.Service
	ProgressSvc *progress.Service
	GoalSvc     *goal.Service
	ChartSvc    *chart.Service
}

func NewConfig() *core.Config {
	return &core.Config{
		Debug:     true,
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Maendeleo",
		SecretKey: "test-secret-key",
		Server: core.ServerConfig{
			RequestTimeout:     5 * time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Chart: core.ChartConfig{StepSize: chart.DefaultStepSize, Concurrency: 4},
	}
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logsvc.NewRollbarLogger(l, conf)
}

func NewEngine(t *testing.T) *Engine {
	t.Helper()

	conf := NewConfig()
	db := inmemdb.Open()
	cache := NewMemCache()
	e := &Engine{
		Conf:        conf,
		Logger:      NewLogger(conf),
		DB:          db,
		Invalidated: &SpyInvalidator{Next: cache},
		Cache:       cache,
		Roster:      inmemdb.NewRosterRepository(db),
		TermRepo:    inmemdb.NewTermRepository(db),
		ProgRepo:    inmemdb.NewProgressRepository(db),
		GoalRepo:    inmemdb.NewGoalRepository(db),
	}
	tx := inmemdb.NewTransactor(db)
	e.TermSvc = term.NewService(tx, e.TermRepo, e.Invalidated, e.Logger)
	e.ProgressSvc = progress.NewService(tx, e.ProgRepo, e.Roster, e.TermSvc, e.Invalidated, e.Logger)
	e.GoalSvc = goal.NewService(e.GoalRepo, e.TermSvc, e.Invalidated, e.Logger)
	e.ChartSvc = chart.NewService(
		e.GoalSvc,
		e.ProgressSvc,
		e.Roster,
		cache,
		chart.Settings{StepSize: conf.Chart.StepSize, Concurrency: conf.Chart.Concurrency},
		e.Logger,
	)
	return e
}

// Date parses an ISO date or fails the test.
func Date(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func CreateUser(t *testing.T, repo roster.Repository, name string, roles ...string) roster.User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), roster.User{
		ID:        uuid.New().String(),
		Name:      name,
		Roles:     roles,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateClassroom creates a classroom with the given members.
func CreateClassroom(t *testing.T, repo roster.Repository, name string, members ...roster.User) roster.Classroom {
	t.Helper()
	ctx := context.Background()
	cls, err := repo.CreateClassroom(ctx, roster.Classroom{ID: uuid.New().String(), Name: name})
	if err != nil {
		t.Fatalf("CreateClassroom() failed: %v", err)
	}
	for _, usr := range members {
		if err = repo.AddMember(ctx, cls.ID, usr.ID); err != nil {
			t.Fatalf("AddMember() failed: %v", err)
		}
	}
	return cls
}

func CreateSubject(t *testing.T, repo roster.Repository, classroomID, name string) roster.Subject {
	t.Helper()
	subj, err := repo.CreateSubject(context.Background(), roster.Subject{
		ID:          uuid.New().String(),
		ClassroomID: classroomID,
		Name:        name,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

// CreateTerm creates a school-days term from ISO dates.
func CreateTerm(t *testing.T, svc *term.Service, classroomID, start, end string) term.Term {
	t.Helper()
	trm, err := svc.Create(context.Background(), term.NewTerm{
		ClassroomID: classroomID,
		Start:       Date(t, start),
		End:         Date(t, end),
		AllowedDays: term.SchoolDays,
	})
	if err != nil {
		t.Fatalf("CreateTerm() failed: %v", err)
	}
	return trm
}

// Fixture is a classroom with a teacher, a student and a subject.
type Fixture struct {
	Teacher   roster.User
	Student   roster.User
	Classroom roster.Classroom
	Subject   roster.Subject
}

func (e *Engine) NewFixture(t *testing.T) Fixture {
	t.Helper()
	f := Fixture{
		Teacher: CreateUser(t, e.Roster, "Teacher", roster.RoleTeacher),
		Student: CreateUser(t, e.Roster, "Student", roster.RoleStudent),
	}
	f.Classroom = CreateClassroom(t, e.Roster, "Classroom", f.Teacher, f.Student)
	f.Subject = CreateSubject(t, e.Roster, f.Classroom.ID, "Reading")
	return f
}

// SpyInvalidator records the invalidated terms before passing them on to Next, if any.
type SpyInvalidator struct {
	Next core.Invalidator

	mu    sync.Mutex
	terms []string
}

var _ core.Invalidator = (*SpyInvalidator)(nil)

func (s *SpyInvalidator) InvalidateTerm(ctx context.Context, termID string) error {
	s.mu.Lock()
	s.terms = append(s.terms, termID)
	s.mu.Unlock()
	if s.Next != nil {
		return s.Next.InvalidateTerm(ctx, termID)
	}
	return nil
}

func (s *SpyInvalidator) Terms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.terms...)
}

func (s *SpyInvalidator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = nil
}

// MemCache is a chart.Cache in a map. Invalidating a term bumps its version and drops its entries.
type MemCache struct {
	mu       sync.Mutex
	versions map[string]int64
	entries  map[string]map[string][]byte
	Hits     int
}

var (
	_ chart.Cache      = (*MemCache)(nil)
	_ core.Invalidator = (*MemCache)(nil)
)

func NewMemCache() *MemCache {
	return &MemCache{versions: make(map[string]int64), entries: make(map[string]map[string][]byte)}
}

func (c *MemCache) Get(_ context.Context, termID, key string) ([]byte, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[termID][key]
	if ok {
		c.Hits++
	}
	return data, c.versions[termID], ok, nil
}

func (c *MemCache) Set(_ context.Context, termID, key string, version int64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.versions[termID] {
		return nil // invalidated since
	}
	if c.entries[termID] == nil {
		c.entries[termID] = make(map[string][]byte)
	}
	c.entries[termID][key] = data
	return nil
}

func (c *MemCache) InvalidateTerm(_ context.Context, termID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[termID]++
	delete(c.entries, termID)
	return nil
}
