package progress

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
)

const (
	fieldPageFrom = "page_from"
	fieldPageSet  = "page_set"
	fieldPageDone = "page_done"
)

// PageField is a page number of a Patch.
// Set tells a field absent from the request apart from a field explicitly set to null.
type PageField struct {
	Value null.Int
	Set   bool
}

// SetPage returns a field setting the page to n.
func SetPage(n int) PageField {
	return PageField{Value: null.IntFrom(n), Set: true}
}

// UnsetPage returns a field clearing the page.
func UnsetPage() PageField {
	return PageField{Set: true}
}

func (f *PageField) UnmarshalJSON(data []byte) error {
	f.Set = true
	return f.Value.UnmarshalJSON(data)
}

func (f PageField) MarshalJSON() ([]byte, error) {
	return f.Value.MarshalJSON()
}

// Patch holds the fields of a Progress to change. Fields left unset are not touched.
type Patch struct {
	PageFrom     PageField `json:"page_from"`
	PageSet      PageField `json:"page_set"`
	PageDone     PageField `json:"page_done"`
	HomeworkDone *bool     `json:"homework_done"`
}

// IsEmpty reports whether the patch changes nothing.
func (pt Patch) IsEmpty() bool {
	return !pt.PageFrom.Set && !pt.PageSet.Set && !pt.PageDone.Set && pt.HomeworkDone == nil
}

// Apply returns p with the patch applied, or a *core.ValidationError if the result would break
// the page invariants:
//   page_set requires page_from, page_done requires page_set,
//   page_from <= page_set, page_from <= page_done <= page_set.
// Errors are reported on the patched field responsible for the violation.
func (pt Patch) Apply(p Progress) (Progress, error) {
	var errs fieldErrors
	for _, f := range []struct {
		name string
		fld  PageField
	}{{fieldPageFrom, pt.PageFrom}, {fieldPageSet, pt.PageSet}, {fieldPageDone, pt.PageDone}} {
		if f.fld.Set && f.fld.Value.Valid && f.fld.Value.Int < 0 {
			errs.add(f.name, "must not be negative")
		}
	}
	if len(errs) > 0 {
		return p, core.NewValidationError(nil, errs...)
	}

	if pt.PageFrom.Set {
		p.PageFrom = pt.PageFrom.Value
	}
	if pt.PageSet.Set {
		p.PageSet = pt.PageSet.Value
	}
	if pt.PageDone.Set {
		p.PageDone = pt.PageDone.Value
	}
	if pt.HomeworkDone != nil {
		p.HomeworkDone = *pt.HomeworkDone
	}

	from, set, done := p.PageFrom, p.PageSet, p.PageDone

	if set.Valid && !from.Valid {
		errs.add(pt.blame(fieldPageSet, fieldPageFrom), "page_set requires page_from")
	}
	if done.Valid && !set.Valid {
		errs.add(pt.blame(fieldPageDone, fieldPageSet), "page_done requires page_set")
	}
	if from.Valid && set.Valid && from.Int > set.Int {
		errs.add(pt.blame(fieldPageSet, fieldPageFrom), "page_set must not be less than page_from")
	}
	if done.Valid && from.Valid && set.Valid && (done.Int < from.Int || done.Int > set.Int) {
		errs.add(pt.blame(fieldPageDone, fieldPageFrom, fieldPageSet), "page_done must be between page_from and page_set")
	}

	if len(errs) > 0 {
		return p, core.NewValidationError(nil, errs...)
	}
	return p, nil
}

// blame returns the first of fields present in the patch, or the first one if none is.
func (pt Patch) blame(fields ...string) string {
	for _, f := range fields {
		if pt.has(f) {
			return f
		}
	}
	return fields[0]
}

func (pt Patch) has(field string) bool {
	switch field {
	case fieldPageFrom:
		return pt.PageFrom.Set
	case fieldPageSet:
		return pt.PageSet.Set
	case fieldPageDone:
		return pt.PageDone.Set
	}
	return false
}

type fieldErrors []core.FieldError

// add keeps the first error reported on a field.
func (errs *fieldErrors) add(field, msg string) {
	for _, fe := range *errs {
		if fe.Field == field {
			return
		}
	}
	*errs = append(*errs, core.FieldError{Field: field, Error: msg})
}
