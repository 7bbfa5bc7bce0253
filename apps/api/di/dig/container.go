package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/chart"
	"github.com/trezcool/maendeleo/core/goal"
	"github.com/trezcool/maendeleo/core/progress"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/cache"
	"github.com/trezcool/maendeleo/storage/database"
	"github.com/trezcool/maendeleo/storage/database/sqlxrepos"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// CacheResult provides the chart cache along with the invalidator notified by the write services.
type CacheResult struct {
	dig.Out
	Cache       chart.Cache
	Invalidator core.Invalidator
}

func newLogger(std logrus.FieldLogger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(std.WithField("component", "api"), conf)
}

func newDBLogger(std logrus.FieldLogger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(std.WithField("component", "db"), conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newCache(conf *core.Config, logger core.Logger) CacheResult {
	if conf.Redis.Addr == "" {
		return CacheResult{Cache: cache.Nop{}, Invalidator: cache.Nop{}}
	}
	c := cache.NewChartCache(conf)
	if err := c.Ping(context.Background()); err != nil {
		logger.Warn("chart cache disabled", err)
		return CacheResult{Cache: cache.Nop{}, Invalidator: cache.Nop{}}
	}
	return CacheResult{Cache: c, Invalidator: c}
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newChartSettings(conf *core.Config) chart.Settings {
	return chart.Settings{StepSize: conf.Chart.StepSize, Concurrency: conf.Chart.Concurrency}
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	rosterRepo roster.Repository,
	termSvc *term.Service,
	progressSvc *progress.Service,
	goalSvc *goal.Service,
	chartSvc *chart.Service,
) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		Roster:      rosterRepo,
		TermSvc:     termSvc,
		ProgressSvc: progressSvc,
		GoalSvc:     goalSvc,
		ChartSvc:    chartSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(logsvc.NewLogrus))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newCache))
	must(c.Provide(database.NewTransactor))
	must(c.Provide(sqlxrepos.NewRosterRepository, dig.As(new(roster.Repository))))
	must(c.Provide(sqlxrepos.NewTermRepository, dig.As(new(term.Repository))))
	must(c.Provide(sqlxrepos.NewProgressRepository, dig.As(new(progress.Repository))))
	must(c.Provide(sqlxrepos.NewGoalRepository, dig.As(new(goal.Repository))))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))

	must(c.Provide(term.NewService))
	must(c.Provide(func(svc *term.Service) progress.TermFinder { return svc }))
	must(c.Provide(func(svc *term.Service) goal.TermGetter { return svc }))
	must(c.Provide(progress.NewService))
	must(c.Provide(goal.NewService))
	must(c.Provide(func(svc *goal.Service) chart.GoalGetter { return svc }))
	must(c.Provide(func(svc *progress.Service) chart.PagesCounter { return svc }))
	must(c.Provide(newChartSettings))
	must(c.Provide(chart.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
