package chart

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

// Cache stores built chart configs per term.
// Entries of a term are dropped when the term is invalidated (see core.Invalidator).
type Cache interface {
	// Get returns the entry under key, if any, and the version of the term's entries it looked at.
	Get(ctx context.Context, termID, key string) (data []byte, version int64, ok bool, err error)
	// Set stores data at version. If the term was invalidated since, the entry is never read.
	Set(ctx context.Context, termID, key string, version int64, data []byte) error
}

// Service builds the charts of a term.
type Service struct {
	goals    GoalGetter
	pages    PagesCounter
	roster   roster.Repository
	cache    Cache
	settings Settings
	logger   core.Logger
}

func NewService(
	goals GoalGetter,
	pages PagesCounter,
	rosterRepo roster.Repository,
	cache Cache,
	settings Settings,
	logger core.Logger,
) *Service {
	return &Service{goals: goals, pages: pages, roster: rosterRepo, cache: cache, settings: settings, logger: logger}
}

// GoalChart charts the weekly goals of t.
func (svc *Service) GoalChart(ctx context.Context, t term.Term) (Config, error) {
	return svc.cached(ctx, t.ID, "goals", func() (Config, error) {
		return NewGoalSeries(t, svc.goals, svc.settings).Config(ctx)
	})
}

// ProgressChart charts the weekly goals of t along with the progress of each student, in order.
// Every student must be a student of the term's classroom.
func (svc *Service) ProgressChart(ctx context.Context, t term.Term, studentIDs []string) (Config, error) {
	students := make([]roster.User, 0, len(studentIDs))
	for _, id := range studentIDs {
		usr, err := svc.checkStudent(ctx, t.ClassroomID, id)
		if err != nil {
			return Config{}, err
		}
		students = append(students, usr)
	}

	return svc.cached(ctx, t.ID, "progress:"+strings.Join(studentIDs, ","), func() (Config, error) {
		series := NewProgressSeries(t, svc.goals, svc.pages, svc.settings)
		for _, usr := range students {
			series.AddStudent(usr)
		}
		return series.Config(ctx)
	})
}

func (svc *Service) checkStudent(ctx context.Context, classroomID, id string) (roster.User, error) {
	usr, err := svc.roster.GetUser(ctx, id)
	if err != nil {
		if errors.Cause(err) == roster.ErrUserNotFound {
			return roster.User{}, core.NewFieldError("student", "student not found: "+id)
		}
		return roster.User{}, errors.Wrap(err, "getting student")
	}
	if !usr.IsStudent() {
		return roster.User{}, core.NewFieldError("student", "user is not a student: "+id)
	}
	member, err := svc.roster.IsInClassroom(ctx, classroomID, id)
	if err != nil {
		return roster.User{}, errors.Wrap(err, "checking membership")
	}
	if !member {
		return roster.User{}, core.NewFieldError("student", "student is not in the term's classroom: "+id)
	}
	return usr, nil
}

// cached returns the config stored under key, building and storing it on a miss.
// Cache failures are logged and the config built anyway.
func (svc *Service) cached(ctx context.Context, termID, key string, build func() (Config, error)) (Config, error) {
	if svc.cache == nil {
		return build()
	}

	// stored at the version read before building
	data, version, ok, err := svc.cache.Get(ctx, termID, key)
	if err != nil {
		svc.logError("reading chart cache", err)
	} else if ok {
		var cfg Config
		if err = json.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		svc.logError("decoding cached chart", err)
	}

	cfg, err := build()
	if err != nil {
		return Config{}, err
	}
	if data, err = json.Marshal(cfg); err == nil {
		err = svc.cache.Set(ctx, termID, key, version, data)
	}
	if err != nil {
		svc.logError("writing chart cache", err)
	}
	return cfg, nil
}

func (svc *Service) logError(msg string, err error) {
	if svc.logger != nil {
		svc.logger.Error(msg, err)
	}
}
