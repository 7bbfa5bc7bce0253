package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progress"
)

type progressRepository struct {
	repo
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{repo{db: db}}
}

const progressColumns = "id, subject_id, student_id, date, page_from, page_set, page_done, homework_done, created_at, updated_at"

var progressOrdering = map[string]string{
	"date":       "date",
	"subject_id": "subject_id",
	"student_id": "student_id",
	"created_at": "created_at",
}

type progressRow struct {
	ID           string    `db:"id"`
	SubjectID    string    `db:"subject_id"`
	StudentID    string    `db:"student_id"`
	Date         core.Date `db:"date"`
	PageFrom     null.Int  `db:"page_from"`
	PageSet      null.Int  `db:"page_set"`
	PageDone     null.Int  `db:"page_done"`
	HomeworkDone bool      `db:"homework_done"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row progressRow) progress() progress.Progress {
	return progress.Progress{
		ID:           row.ID,
		SubjectID:    row.SubjectID,
		StudentID:    row.StudentID,
		Date:         row.Date,
		PageFrom:     row.PageFrom,
		PageSet:      row.PageSet,
		PageDone:     row.PageDone,
		HomeworkDone: row.HomeworkDone,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// GetOrCreateProgress inserts the row unless the key exists, then reads it FOR UPDATE.
// Concurrent calls on one key all end up with the same row.
func (r progressRepository) GetOrCreateProgress(ctx context.Context, key progress.Key, exec ...core.DBExecutor) (progress.Progress, error) {
	exe := r.getExec(exec)
	now := time.Now().UTC()
	_, err := exe.ExecContext(ctx, `
		INSERT INTO progress (id, subject_id, student_id, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (subject_id, student_id, date) DO NOTHING`,
		uuid.New().String(), key.SubjectID, key.StudentID, key.Date, now)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "inserting progress")
	}

	var row progressRow
	err = sqlx.GetContext(ctx, exe, &row, `
		SELECT `+progressColumns+` FROM progress
		WHERE subject_id = $1 AND student_id = $2 AND date = $3
		FOR UPDATE`,
		key.SubjectID, key.StudentID, key.Date)
	if err != nil {
		return progress.Progress{}, trapNoRowsErr(err, progress.ErrNotFound, "getting progress by key")
	}
	return row.progress(), nil
}

func (r progressRepository) GetProgress(ctx context.Context, id string, exec ...core.DBExecutor) (progress.Progress, error) {
	if !isUUID(id) {
		return progress.Progress{}, progress.ErrNotFound
	}
	q := `SELECT ` + progressColumns + ` FROM progress WHERE id = $1`
	if len(exec) > 0 && exec[0] != nil {
		q += ` FOR UPDATE`
	}
	var row progressRow
	if err := sqlx.GetContext(ctx, r.getExec(exec), &row, q, id); err != nil {
		return progress.Progress{}, trapNoRowsErr(err, progress.ErrNotFound, "getting progress")
	}
	return row.progress(), nil
}

func (r progressRepository) UpdateProgress(ctx context.Context, p progress.Progress, exec ...core.DBExecutor) (progress.Progress, error) {
	res, err := r.getExec(exec).ExecContext(ctx, `
		UPDATE progress
		SET page_from = $2, page_set = $3, page_done = $4, homework_done = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.PageFrom, p.PageSet, p.PageDone, p.HomeworkDone, p.UpdatedAt)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "updating progress")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return progress.Progress{}, progress.ErrNotFound
	}
	return p, nil
}

func (r progressRepository) QueryProgress(ctx context.Context, filter progress.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]progress.Progress, error) {
	q := `SELECT ` + progressColumns + ` FROM progress WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.SubjectID != "" {
		if !isUUID(filter.SubjectID) {
			return []progress.Progress{}, nil
		}
		q += ` AND subject_id = ` + arg(filter.SubjectID)
	}
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []progress.Progress{}, nil
		}
		q += ` AND student_id = ` + arg(filter.StudentID)
	}
	if !filter.From.IsZero() {
		q += ` AND date >= ` + arg(filter.From)
	}
	if !filter.To.IsZero() {
		q += ` AND date <= ` + arg(filter.To)
	}
	if ord := orderBy(ordering, progressOrdering); ord != "" {
		q += ord + `, subject_id ASC`
	} else {
		q += ` ORDER BY date ASC, subject_id ASC`
	}

	var rows []progressRow
	if err := sqlx.SelectContext(ctx, r.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	res := make([]progress.Progress, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.progress())
	}
	return res, nil
}

func (r progressRepository) SumPagesDone(ctx context.Context, classroomID, studentID string, from, to core.Date, exec ...core.DBExecutor) (null.Int, error) {
	if !isUUID(classroomID) || !isUUID(studentID) {
		return null.Int{}, nil
	}
	var sum null.Int
	err := sqlx.GetContext(ctx, r.getExec(exec), &sum, `
		SELECT SUM(p.page_done - p.page_from) FROM progress p
		JOIN subject s ON s.id = p.subject_id AND s.classroom_id = $1
		WHERE p.student_id = $2 AND p.date BETWEEN $3 AND $4 AND p.page_done IS NOT NULL`,
		classroomID, studentID, from, to)
	if err != nil {
		return null.Int{}, errors.Wrap(err, "summing pages done")
	}
	return sum, nil
}
