package timesheet_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"peopledesk/internal/timesheet"
	timesheeterrors "peopledesk/internal/timesheet/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeTimesheetRepository struct {
	timesheets       map[string]*timesheet.Timesheet
	companyEmployees map[string]bool
}

func newFakeTimesheetRepository() *fakeTimesheetRepository {
	return &fakeTimesheetRepository{
		timesheets:       map[string]*timesheet.Timesheet{},
		companyEmployees: map[string]bool{},
	}
}

func (f *fakeTimesheetRepository) WithTx(tx *sql.Tx) timesheet.Repository { return f }

func (f *fakeTimesheetRepository) Create(ctx context.Context, t *timesheet.Timesheet) error {
	cp := *t
	f.timesheets[t.ID.String()] = &cp
	return nil
}

func (f *fakeTimesheetRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*timesheet.Timesheet, error) {
	t, ok := f.timesheets[id]
	if !ok || t.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTimesheetRepository) FindByEmployeeAndWeek(ctx context.Context, companyID, employeeID string, weekStart time.Time) (*timesheet.Timesheet, error) {
	for _, t := range f.timesheets {
		if t.CompanyID.String() == companyID && t.EmployeeID.String() == employeeID && t.WeekStart.Equal(weekStart) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTimesheetRepository) FindAllByCompany(ctx context.Context, companyID string, filter timesheet.ListFilter) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, t := range f.timesheets {
		if t.CompanyID.String() == companyID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTimesheetRepository) ReplaceEntries(ctx context.Context, t *timesheet.Timesheet, entries []timesheet.TimesheetEntry) error {
	stored := f.timesheets[t.ID.String()]
	stored.Entries = entries
	t.Entries = entries
	return nil
}

func (f *fakeTimesheetRepository) TransitionStatus(ctx context.Context, companyID, id, fromStatus, toStatus string, fields map[string]any) (bool, error) {
	t, ok := f.timesheets[id]
	if !ok || t.CompanyID.String() != companyID || t.Status != fromStatus {
		return false, nil
	}
	t.Status = toStatus
	return true, nil
}

func (f *fakeTimesheetRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return f.companyEmployees[companyID+"/"+employeeID], nil
}

type timesheetFixture struct {
	companyID  uuid.UUID
	employeeID uuid.UUID
	approverID uuid.UUID
	repo       *fakeTimesheetRepository
	svc        timesheet.Service
}

func newTimesheetFixture(t *testing.T) *timesheetFixture {
	t.Helper()

	repo := newFakeTimesheetRepository()
	fx := &timesheetFixture{
		companyID:  uuid.New(),
		employeeID: uuid.New(),
		approverID: uuid.New(),
		repo:       repo,
		svc:        timesheet.NewService(repo),
	}
	repo.companyEmployees[fx.companyID.String()+"/"+fx.employeeID.String()] = true
	return fx
}

// 2026-06-01 is a Monday.
func (fx *timesheetFixture) create(t *testing.T) timesheet.TimesheetResponse {
	t.Helper()
	resp, err := fx.svc.Create(context.Background(), fx.companyID.String(), timesheet.CreateTimesheetRequest{
		EmployeeID: fx.employeeID.String(),
		WeekStart:  "2026-06-01",
		Entries: []timesheet.EntryInput{
			{WorkDate: "2026-06-01", Hours: "8"},
			{WorkDate: "2026-06-02", Hours: "7.5", ProjectCode: "INT-12"},
		},
	})
	assert.NoError(t, err)
	return resp
}

func TestTimesheetService_Create(t *testing.T) {
	t.Run("success sums entry hours", func(t *testing.T) {
		fx := newTimesheetFixture(t)

		resp := fx.create(t)

		assert.Equal(t, timesheet.StatusDraft, resp.Status)
		assert.Equal(t, "15.5", resp.TotalHours)
		assert.Len(t, resp.Entries, 2)
	})

	t.Run("negative duplicate week", func(t *testing.T) {
		fx := newTimesheetFixture(t)
		fx.create(t)

		_, err := fx.svc.Create(context.Background(), fx.companyID.String(), timesheet.CreateTimesheetRequest{
			EmployeeID: fx.employeeID.String(),
			WeekStart:  "2026-06-01",
			Entries:    []timesheet.EntryInput{{WorkDate: "2026-06-01", Hours: "8"}},
		})

		assert.ErrorIs(t, err, timesheeterrors.ErrWeekAlreadyExists)
	})

	t.Run("negative week start not a monday", func(t *testing.T) {
		fx := newTimesheetFixture(t)

		_, err := fx.svc.Create(context.Background(), fx.companyID.String(), timesheet.CreateTimesheetRequest{
			EmployeeID: fx.employeeID.String(),
			WeekStart:  "2026-06-03",
			Entries:    []timesheet.EntryInput{{WorkDate: "2026-06-03", Hours: "8"}},
		})

		assert.ErrorIs(t, err, timesheeterrors.ErrInvalidWeekStart)
	})

	t.Run("negative entry outside the week", func(t *testing.T) {
		fx := newTimesheetFixture(t)

		_, err := fx.svc.Create(context.Background(), fx.companyID.String(), timesheet.CreateTimesheetRequest{
			EmployeeID: fx.employeeID.String(),
			WeekStart:  "2026-06-01",
			Entries:    []timesheet.EntryInput{{WorkDate: "2026-06-09", Hours: "8"}},
		})

		assert.ErrorIs(t, err, timesheeterrors.ErrEntryOutsideWeek)
	})

	t.Run("negative more than 24 hours in a day", func(t *testing.T) {
		fx := newTimesheetFixture(t)

		_, err := fx.svc.Create(context.Background(), fx.companyID.String(), timesheet.CreateTimesheetRequest{
			EmployeeID: fx.employeeID.String(),
			WeekStart:  "2026-06-01",
			Entries:    []timesheet.EntryInput{{WorkDate: "2026-06-01", Hours: "25"}},
		})

		assert.ErrorIs(t, err, timesheeterrors.ErrInvalidHours)
	})
}

func TestTimesheetService_Workflow(t *testing.T) {
	t.Run("draft submit approve round trip", func(t *testing.T) {
		fx := newTimesheetFixture(t)
		created := fx.create(t)

		submitted, err := fx.svc.Submit(context.Background(), fx.companyID.String(), created.ID)
		assert.NoError(t, err)
		assert.Equal(t, timesheet.StatusSubmitted, submitted.Status)

		decided, err := fx.svc.Decide(context.Background(), fx.companyID.String(), fx.approverID.String(), created.ID, timesheet.DecideTimesheetRequest{
			Status: timesheet.StatusApproved,
		})
		assert.NoError(t, err)
		assert.Equal(t, timesheet.StatusApproved, decided.Status)
		assert.Equal(t, fx.approverID.String(), *decided.ApprovedBy)
	})

	t.Run("negative submitted timesheet is frozen", func(t *testing.T) {
		fx := newTimesheetFixture(t)
		created := fx.create(t)

		_, err := fx.svc.Submit(context.Background(), fx.companyID.String(), created.ID)
		assert.NoError(t, err)

		_, err = fx.svc.Update(context.Background(), fx.companyID.String(), created.ID, timesheet.UpdateTimesheetRequest{
			Entries: []timesheet.EntryInput{{WorkDate: "2026-06-01", Hours: "1"}},
		})
		assert.ErrorIs(t, err, timesheeterrors.ErrTimesheetNotEditable)
	})

	t.Run("negative second decision", func(t *testing.T) {
		fx := newTimesheetFixture(t)
		created := fx.create(t)

		_, err := fx.svc.Submit(context.Background(), fx.companyID.String(), created.ID)
		assert.NoError(t, err)

		_, err = fx.svc.Decide(context.Background(), fx.companyID.String(), fx.approverID.String(), created.ID, timesheet.DecideTimesheetRequest{
			Status: timesheet.StatusApproved,
		})
		assert.NoError(t, err)

		_, err = fx.svc.Decide(context.Background(), fx.companyID.String(), fx.approverID.String(), created.ID, timesheet.DecideTimesheetRequest{
			Status: timesheet.StatusRejected,
			Reason: "changed my mind",
		})
		assert.ErrorIs(t, err, timesheeterrors.ErrInvalidStatusTransition)
	})

	t.Run("negative rejection without reason", func(t *testing.T) {
		fx := newTimesheetFixture(t)
		created := fx.create(t)

		_, err := fx.svc.Submit(context.Background(), fx.companyID.String(), created.ID)
		assert.NoError(t, err)

		_, err = fx.svc.Decide(context.Background(), fx.companyID.String(), fx.approverID.String(), created.ID, timesheet.DecideTimesheetRequest{
			Status: timesheet.StatusRejected,
		})
		assert.ErrorIs(t, err, timesheeterrors.ErrRejectionReasonRequired)
	})
}
