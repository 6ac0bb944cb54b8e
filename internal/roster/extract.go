package roster

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/dutyroster/internal/models"
)

// ErrNoRecognizableSheets is returned when a workbook has none of the configured department sheets.
var ErrNoRecognizableSheets = errors.New("no recognizable department sheets")

// DepartmentSheet maps a worksheet name to the department name shown to readers.
type DepartmentSheet struct {
	Sheet string `yaml:"sheet" json:"sheet"`
	Name  string `yaml:"name" json:"name"`
}

// Record is one employee row for the target day. It is built and consumed inside
// ExtractSheet and never retained.
type Record struct {
	Name     string
	RawCode  string
	Label    string
	Category models.Category
}

// Entry returns the bucket entry for the record.
func (r Record) Entry() models.Entry {
	return models.Entry{Name: r.Name, Label: r.Label}
}

// Extractor builds the day roster for a workbook.
type Extractor struct {
	mapper      *Mapper
	limits      Limits
	weekdays    Weekdays
	departments []DepartmentSheet
	locator     *Locator
	logger      *zap.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLimits overrides the scan bounds.
func WithLimits(l Limits) ExtractorOption {
	return func(e *Extractor) {
		e.limits = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithDepartments sets the ordered department table. Without it every sheet is
// processed in workbook order under its own name.
func WithDepartments(d []DepartmentSheet) ExtractorOption {
	return func(e *Extractor) {
		e.departments = d
	}
}

// WithWeekdays replaces the weekday header vocabulary.
func WithWeekdays(w Weekdays) ExtractorOption {
	return func(e *Extractor) {
		e.weekdays = w
	}
}

// NewExtractor creates an extractor. A nil mapper uses the default code table.
func NewExtractor(mapper *Mapper, opts ...ExtractorOption) *Extractor {
	if mapper == nil {
		mapper = NewMapper(nil)
	}
	e := &Extractor{
		mapper: mapper,
		limits: DefaultLimits(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.locator = NewLocator(e.limits, e.weekdays)
	return e
}

// ExtractSheet builds one department's buckets for date. Entries whose category
// equals active are also collected in Active. When the layout cannot be resolved
// the department is returned empty together with an *AnchorError.
func (e *Extractor) ExtractSheet(sheet *models.Sheet, date time.Time, active models.Category) (models.Department, error) {
	dept := models.Department{Buckets: models.Buckets{}, Active: []models.Entry{}}
	if sheet != nil {
		dept.Name = sheet.Name
		dept.Sheet = sheet.Name
	}

	anchor, err := e.locator.Locate(sheet, date)
	if err != nil {
		return dept, err
	}
	if !anchor.Usable() {
		return dept, &AnchorError{Sheet: dept.Sheet, Anchor: "today column"}
	}
	e.logger.Debug("Resolved sheet layout",
		zap.String("sheet", dept.Sheet),
		zap.Int("day_header_row", anchor.DayHeaderRow),
		zap.Int("date_row", anchor.DateRow),
		zap.Int("today_column", anchor.TodayColumn),
		zap.Int("employee_header_row", anchor.EmployeeHeaderRow),
		zap.Int("employee_column", anchor.EmployeeColumn))

	for r := anchor.EmployeeHeaderRow + 1; r <= sheet.MaxRow(); r++ {
		name := Normalize(sheet.Cell(r, anchor.EmployeeColumn))
		if !e.locator.IsEmployeeName(name) {
			continue
		}
		raw := Normalize(sheet.Cell(r, anchor.TodayColumn))
		if !IsShiftCodeLike(raw) && !e.mapper.Known(raw) {
			continue
		}
		label, category := e.mapper.Map(raw)
		rec := Record{Name: name, RawCode: raw, Label: label, Category: category}
		if rec.Category == models.Other {
			e.logger.Debug("Unmapped duty code",
				zap.String("sheet", dept.Sheet),
				zap.String("employee", rec.Name),
				zap.String("code", rec.RawCode))
		}
		dept.Buckets.Add(rec.Category, rec.Entry())
		if rec.Category == active {
			dept.Active = append(dept.Active, rec.Entry())
		}
	}
	return dept, nil
}

// Extract builds the roster for date across the department table. now selects the
// active category. Sheets whose layout cannot be resolved contribute an empty
// department and a Problem.
func (e *Extractor) Extract(wb *models.Workbook, date, now time.Time) (*models.Roster, error) {
	type job struct {
		dept  DepartmentSheet
		sheet *models.Sheet
	}

	var jobs []job
	if len(e.departments) == 0 {
		if wb != nil {
			for _, s := range wb.Sheets {
				jobs = append(jobs, job{dept: DepartmentSheet{Sheet: s.Name, Name: s.Name}, sheet: s})
			}
		}
	} else {
		for _, d := range e.departments {
			s := wb.Sheet(d.Sheet)
			if s == nil {
				e.logger.Debug("Department sheet not in workbook", zap.String("sheet", d.Sheet))
				continue
			}
			jobs = append(jobs, job{dept: d, sheet: s})
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: workbook sheets %v", ErrNoRecognizableSheets, wb.SheetNames())
	}

	active := CurrentShiftKey(now)
	depts := make([]models.Department, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, j := range jobs {
		g.Go(func() error {
			dept, err := e.ExtractSheet(j.sheet, date, active)
			dept.Name = j.dept.Name
			dept.Sheet = j.sheet.Name
			depts[i] = dept
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	roster := &models.Roster{
		Date:           time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		ActiveCategory: active,
		Departments:    depts,
	}
	for i, err := range errs {
		if err == nil {
			continue
		}
		e.logger.Warn("Skipping sheet layout",
			zap.String("sheet", jobs[i].sheet.Name),
			zap.Error(err))
		roster.Problems = append(roster.Problems, models.Problem{Sheet: jobs[i].sheet.Name, Err: err.Error()})
	}
	return roster, nil
}

// CurrentShiftKey returns the category of the shift running at t:
// Night from 21:00 until 05:00, Afternoon from 14:00 until 21:00, otherwise Morning.
func CurrentShiftKey(t time.Time) models.Category {
	h := t.Hour()
	switch {
	case h >= 21 || h < 5:
		return models.Night
	case h >= 14:
		return models.Afternoon
	default:
		return models.Morning
	}
}
