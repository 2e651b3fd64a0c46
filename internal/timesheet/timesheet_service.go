package timesheet

import (
	"context"
	"errors"
	"time"

	timesheeterrors "peopledesk/internal/timesheet/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var maxDailyHours = decimal.NewFromInt(24)

func canTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusApproved || to == StatusRejected
	default:
		return false
	}
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateTimesheetRequest) (TimesheetResponse, error)
	Update(ctx context.Context, companyID, timesheetID string, req UpdateTimesheetRequest) (TimesheetResponse, error)
	Submit(ctx context.Context, companyID, timesheetID string) (TimesheetResponse, error)
	Decide(ctx context.Context, companyID, approverID, timesheetID string, req DecideTimesheetRequest) (TimesheetResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]TimesheetResponse, error)
	GetByID(ctx context.Context, companyID, timesheetID string) (TimesheetResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("timesheet.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timesheet.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateTimesheetRequest) (TimesheetResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidEmployeeID
	}

	weekStart, err := time.Parse(dateLayout, req.WeekStart)
	if err != nil || weekStart.Weekday() != time.Monday {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidWeekStart
	}

	ok, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return TimesheetResponse{}, err
	}
	if !ok {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidEmployeeID
	}

	if _, err := s.repo.FindByEmployeeAndWeek(ctx, companyID, req.EmployeeID, weekStart); err == nil {
		return TimesheetResponse{}, timesheeterrors.ErrWeekAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return TimesheetResponse{}, err
	}

	t := &Timesheet{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		WeekStart:  weekStart,
		Status:     StatusDraft,
	}

	entries, err := buildEntries(t.ID, weekStart, req.Entries)
	if err != nil {
		return TimesheetResponse{}, err
	}
	t.Entries = entries

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("timesheet create failed", zap.Error(err))
		return TimesheetResponse{}, err
	}

	s.logger.Info("timesheet created",
		zap.String("timesheet_id", t.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("week_start", req.WeekStart),
	)
	return mapToResponse(*t), nil
}

func (s *service) Update(ctx context.Context, companyID, timesheetID string, req UpdateTimesheetRequest) (TimesheetResponse, error) {
	t, err := s.findTimesheet(ctx, companyID, timesheetID)
	if err != nil {
		return TimesheetResponse{}, err
	}
	if t.Status != StatusDraft {
		return TimesheetResponse{}, timesheeterrors.ErrTimesheetNotEditable
	}

	entries, err := buildEntries(t.ID, t.WeekStart, req.Entries)
	if err != nil {
		return TimesheetResponse{}, err
	}

	if err := s.repo.ReplaceEntries(ctx, t, entries); err != nil {
		return TimesheetResponse{}, err
	}
	return mapToResponse(*t), nil
}

func (s *service) Submit(ctx context.Context, companyID, timesheetID string) (TimesheetResponse, error) {
	t, err := s.findTimesheet(ctx, companyID, timesheetID)
	if err != nil {
		return TimesheetResponse{}, err
	}
	if !canTransition(t.Status, StatusSubmitted) {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	moved, err := s.repo.TransitionStatus(ctx, companyID, timesheetID, StatusDraft, StatusSubmitted, map[string]any{
		"submitted_at": now,
	})
	if err != nil {
		return TimesheetResponse{}, err
	}
	if !moved {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidStatusTransition
	}

	t.Status = StatusSubmitted
	t.SubmittedAt = &now
	s.logger.Info("timesheet submitted", zap.String("timesheet_id", timesheetID))
	return mapToResponse(*t), nil
}

// Decide settles a submitted timesheet with the same guarded transition the
// leave workflow uses.
func (s *service) Decide(ctx context.Context, companyID, approverID, timesheetID string, req DecideTimesheetRequest) (TimesheetResponse, error) {
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidEmployeeID
	}
	if req.Status == StatusRejected && req.Reason == "" {
		return TimesheetResponse{}, timesheeterrors.ErrRejectionReasonRequired
	}

	t, err := s.findTimesheet(ctx, companyID, timesheetID)
	if err != nil {
		return TimesheetResponse{}, err
	}
	if !canTransition(t.Status, req.Status) {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"approved_by": approverUUID,
		"approved_at": now,
	}
	if req.Reason != "" {
		fields["decision_reason"] = req.Reason
	}

	moved, err := s.repo.TransitionStatus(ctx, companyID, timesheetID, StatusSubmitted, req.Status, fields)
	if err != nil {
		return TimesheetResponse{}, err
	}
	if !moved {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidStatusTransition
	}

	t.Status = req.Status
	t.ApprovedBy = &approverUUID
	t.ApprovedAt = &now
	if req.Reason != "" {
		t.DecisionReason = &req.Reason
	}

	s.logger.Info("timesheet decided",
		zap.String("timesheet_id", timesheetID),
		zap.String("decision", req.Status),
	)
	return mapToResponse(*t), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]TimesheetResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, timesheeterrors.ErrInvalidCompanyID
	}

	timesheets, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]TimesheetResponse, len(timesheets))
	for i, t := range timesheets {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, timesheetID string) (TimesheetResponse, error) {
	t, err := s.findTimesheet(ctx, companyID, timesheetID)
	if err != nil {
		return TimesheetResponse{}, err
	}
	return mapToResponse(*t), nil
}

func (s *service) findTimesheet(ctx context.Context, companyID, timesheetID string) (*Timesheet, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, timesheeterrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(timesheetID); err != nil {
		return nil, timesheeterrors.ErrTimesheetNotFound
	}
	t, err := s.repo.FindByIDAndCompany(ctx, companyID, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timesheeterrors.ErrTimesheetNotFound
		}
		return nil, err
	}
	return t, nil
}

func buildEntries(timesheetID uuid.UUID, weekStart time.Time, inputs []EntryInput) ([]TimesheetEntry, error) {
	weekEnd := weekStart.AddDate(0, 0, 6)

	entries := make([]TimesheetEntry, len(inputs))
	for i, in := range inputs {
		workDate, err := time.Parse(dateLayout, in.WorkDate)
		if err != nil {
			return nil, timesheeterrors.ErrInvalidWeekStart
		}
		if workDate.Before(weekStart) || workDate.After(weekEnd) {
			return nil, timesheeterrors.ErrEntryOutsideWeek
		}

		hours, err := decimal.NewFromString(in.Hours)
		if err != nil || hours.IsNegative() || hours.GreaterThan(maxDailyHours) {
			return nil, timesheeterrors.ErrInvalidHours
		}

		entries[i] = TimesheetEntry{
			ID:          uuid.New(),
			TimesheetID: timesheetID,
			WorkDate:    workDate,
			Hours:       hours,
			ProjectCode: in.ProjectCode,
			Notes:       in.Notes,
		}
	}
	return entries, nil
}

func mapToResponse(t Timesheet) TimesheetResponse {
	resp := TimesheetResponse{
		ID:         t.ID.String(),
		CompanyID:  t.CompanyID.String(),
		EmployeeID: t.EmployeeID.String(),
		WeekStart:  t.WeekStart.Format(dateLayout),
		Status:     t.Status,
		TotalHours: t.TotalHours().String(),
		Entries:    make([]EntryResponse, len(t.Entries)),
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
	for i, e := range t.Entries {
		resp.Entries[i] = EntryResponse{
			ID:          e.ID.String(),
			WorkDate:    e.WorkDate.Format(dateLayout),
			Hours:       e.Hours.String(),
			ProjectCode: e.ProjectCode,
			Notes:       e.Notes,
		}
	}
	if t.SubmittedAt != nil {
		v := t.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	if t.ApprovedBy != nil {
		v := t.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if t.ApprovedAt != nil {
		v := t.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.DecisionReason = t.DecisionReason
	return resp
}
