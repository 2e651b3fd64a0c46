package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"peopledesk/internal/events"
	leaveerrors "peopledesk/internal/leave/errors"
	"peopledesk/internal/messaging/kafka"
	"peopledesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

const dateLayout = "2006-01-02"

// canTransition encodes the request lifecycle. Approved and rejected are
// terminal.
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
	Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Update(ctx context.Context, companyID, requestID string, req UpdateLeaveRequest) (LeaveRequestResponse, error)
	Submit(ctx context.Context, companyID, requestID string) (LeaveRequestResponse, error)
	Decide(ctx context.Context, companyID, approverID, requestID string, req DecideLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, companyID, requestID string) (LeaveRequestResponse, error)
	BalanceSummary(ctx context.Context, companyID, employeeID string) (BalanceSummaryResponse, error)

	CreatePolicy(ctx context.Context, companyID string, req CreatePolicyRequest) (PolicyResponse, error)
	UpdatePolicy(ctx context.Context, companyID, policyID string, req CreatePolicyRequest) (PolicyResponse, error)
	GetPolicies(ctx context.Context, companyID string) ([]PolicyResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, logger: l}
}

type requestInput struct {
	policy   *LeavePolicy
	start    time.Time
	end      time.Time
	quantity decimal.Decimal
}

func (s *service) validateInput(ctx context.Context, companyID uuid.UUID, policyID, startDate, endDate, unit, quantity string) (requestInput, error) {
	var in requestInput

	if _, err := uuid.Parse(policyID); err != nil {
		return in, leaveerrors.ErrInvalidPolicyID
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return in, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return in, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return in, leaveerrors.ErrInvalidDateRange
	}

	qty, err := decimal.NewFromString(quantity)
	if err != nil || !qty.IsPositive() {
		return in, leaveerrors.ErrInvalidQuantity
	}

	policy, err := s.repo.FindPolicy(ctx, companyID.String(), policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return in, leaveerrors.ErrPolicyNotFound
		}
		return in, err
	}
	if policy.Unit != unit {
		return in, leaveerrors.ErrUnitMismatch
	}

	in.policy = policy
	in.start = start
	in.end = end
	in.quantity = qty
	return in, nil
}

// Create records a new leave request. A request asking for more than the
// current closing balance is still created; it carries the exceeds_balance
// flag so the approver decides with eyes open.
func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveRequestResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	ok, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if !ok {
		return LeaveRequestResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	in, err := s.validateInput(ctx, companyUUID, req.PolicyID, req.StartDate, req.EndDate, req.Unit, req.Quantity)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	status := StatusSubmitted
	if req.Draft {
		status = StatusDraft
	}

	l := &LeaveRequest{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		PolicyID:   in.policy.ID,
		StartDate:  in.start,
		EndDate:    in.end,
		Unit:       req.Unit,
		Quantity:   in.quantity,
		Reason:     req.Reason,
		Status:     status,
		CreatedBy:  actorUUID,
	}
	l.ExceedsBalance = s.exceedsBalance(ctx, l)

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("leave create failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("leave_request_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("status", status),
		zap.Bool("exceeds_balance", l.ExceedsBalance),
	)
	return mapRequestToResponse(*l), nil
}

func (s *service) exceedsBalance(ctx context.Context, l *LeaveRequest) bool {
	b, err := s.repo.FindBalanceForPeriod(ctx, l.CompanyID.String(), l.EmployeeID.String(), l.PolicyID.String(), l.StartDate, l.EndDate)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("balance lookup failed", zap.Error(err))
		}
		return false
	}
	if l.Quantity.GreaterThan(b.Closing) {
		s.logger.Warn("requested quantity exceeds closing balance",
			zap.String("employee_id", l.EmployeeID.String()),
			zap.String("requested", l.Quantity.String()),
			zap.String("closing", b.Closing.String()),
		)
		return true
	}
	return false
}

// Update replaces the mutable fields of a draft. Submitted requests are
// frozen; the caller must wait for a decision.
func (s *service) Update(ctx context.Context, companyID, requestID string, req UpdateLeaveRequest) (LeaveRequestResponse, error) {
	l, err := s.findRequest(ctx, companyID, requestID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if l.Status != StatusDraft {
		return LeaveRequestResponse{}, leaveerrors.ErrRequestNotEditable
	}

	in, err := s.validateInput(ctx, l.CompanyID, req.PolicyID, req.StartDate, req.EndDate, req.Unit, req.Quantity)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	l.PolicyID = in.policy.ID
	l.StartDate = in.start
	l.EndDate = in.end
	l.Unit = req.Unit
	l.Quantity = in.quantity
	l.Reason = req.Reason
	l.ExceedsBalance = s.exceedsBalance(ctx, l)

	if err := s.repo.Update(ctx, l); err != nil {
		return LeaveRequestResponse{}, err
	}
	return mapRequestToResponse(*l), nil
}

func (s *service) Submit(ctx context.Context, companyID, requestID string) (LeaveRequestResponse, error) {
	l, err := s.findRequest(ctx, companyID, requestID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if !canTransition(l.Status, StatusSubmitted) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	moved, err := s.repo.TransitionStatus(ctx, companyID, requestID, StatusDraft, StatusSubmitted, nil)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if !moved {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	l.Status = StatusSubmitted
	s.logger.Info("leave request submitted", zap.String("leave_request_id", requestID))
	return mapRequestToResponse(*l), nil
}

// Decide settles a submitted request. The status flip is a conditional
// update, so a concurrent second decision observes an invalid state instead
// of deducting the balance twice. Approval and the balance mutation commit
// in one transaction.
func (s *service) Decide(ctx context.Context, companyID, approverID, requestID string, req DecideLeaveRequest) (LeaveRequestResponse, error) {
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidActorID
	}
	if req.Status != StatusApproved && req.Status != StatusRejected {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidDecision
	}
	if req.Status == StatusRejected && req.Reason == "" {
		return LeaveRequestResponse{}, leaveerrors.ErrRejectionReasonRequired
	}

	l, err := s.findRequest(ctx, companyID, requestID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if !canTransition(l.Status, req.Status) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"approved_by": approverUUID,
		"approved_at": now,
	}
	if req.Reason != "" {
		fields["decision_reason"] = req.Reason
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	moved, err := qtx.TransitionStatus(ctx, companyID, requestID, StatusSubmitted, req.Status, fields)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if !moved {
		// Another decision landed first.
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if req.Status == StatusApproved {
		if err := s.deductBalance(ctx, qtx, l); err != nil {
			return LeaveRequestResponse{}, err
		}

		if s.outbox != nil {
			payload, perr := json.Marshal(events.LeaveApprovedEvent{
				EventType:      "leave.approved",
				LeaveRequestID: l.ID.String(),
				CompanyID:      l.CompanyID.String(),
				EmployeeID:     l.EmployeeID.String(),
				PolicyID:       l.PolicyID.String(),
				Quantity:       l.Quantity.String(),
				Unit:           l.Unit,
				ApprovedBy:     approverID,
				OccurredAt:     now,
			})
			if perr != nil {
				return LeaveRequestResponse{}, perr
			}
			if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
				ID:            uuid.New().String(),
				RequestID:     contextutil.GetRequestID(ctx),
				AggregateType: "leave_request",
				AggregateID:   l.ID.String(),
				EventType:     "leave.approved",
				Topic:         events.LeaveLifecycleTopic,
				Payload:       payload,
				Status:        kafka.OutboxStatusPending,
			}); err != nil {
				// The event shares the approval tx; losing it silently would
				// strand downstream consumers, so the decision backs out.
				s.logger.Error("leave outbox persist failed", zap.Error(err))
				return LeaveRequestResponse{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	l.Status = req.Status
	l.ApprovedBy = &approverUUID
	l.ApprovedAt = &now
	if req.Reason != "" {
		l.DecisionReason = &req.Reason
	}

	s.logger.Info("leave request decided",
		zap.String("leave_request_id", requestID),
		zap.String("decision", req.Status),
		zap.String("approved_by", approverID),
	)
	return mapRequestToResponse(*l), nil
}

// deductBalance books the approved quantity against the matching balance
// period. A missing period is not an error; the approval stands and the
// ledger simply records nothing.
func (s *service) deductBalance(ctx context.Context, qtx Repository, l *LeaveRequest) error {
	b, err := qtx.FindBalanceForPeriod(ctx, l.CompanyID.String(), l.EmployeeID.String(), l.PolicyID.String(), l.StartDate, l.EndDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("no balance period covers the approved request",
				zap.String("leave_request_id", l.ID.String()),
				zap.String("employee_id", l.EmployeeID.String()),
			)
			return nil
		}
		return err
	}

	b.Taken = b.Taken.Add(l.Quantity)
	b.Recompute()
	return qtx.UpdateBalance(ctx, b)
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequestResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, leaveerrors.ErrInvalidCompanyID
	}
	if filter.EmployeeID != "" {
		if _, err := uuid.Parse(filter.EmployeeID); err != nil {
			return nil, leaveerrors.ErrInvalidEmployeeID
		}
	}

	requests, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveRequestResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapRequestToResponse(l)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, requestID string) (LeaveRequestResponse, error) {
	l, err := s.findRequest(ctx, companyID, requestID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	return mapRequestToResponse(*l), nil
}

func (s *service) BalanceSummary(ctx context.Context, companyID, employeeID string) (BalanceSummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceSummaryResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	ok, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, employeeID)
	if err != nil {
		return BalanceSummaryResponse{}, err
	}
	if !ok {
		return BalanceSummaryResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	balances, err := s.repo.FindBalancesByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return BalanceSummaryResponse{}, err
	}

	resp := BalanceSummaryResponse{
		EmployeeID: employeeID,
		Configured: len(balances) > 0,
		Balances:   make([]LeaveBalanceResponse, len(balances)),
	}
	for i, b := range balances {
		resp.Balances[i] = LeaveBalanceResponse{
			ID:          b.ID.String(),
			PolicyID:    b.PolicyID.String(),
			PeriodStart: b.PeriodStart.Format(dateLayout),
			PeriodEnd:   b.PeriodEnd.Format(dateLayout),
			Opening:     b.Opening.String(),
			Accrued:     b.Accrued.String(),
			Taken:       b.Taken.String(),
			Adjusted:    b.Adjusted.String(),
			Closing:     b.Closing.String(),
		}
	}
	return resp, nil
}

func (s *service) CreatePolicy(ctx context.Context, companyID string, req CreatePolicyRequest) (PolicyResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PolicyResponse{}, leaveerrors.ErrInvalidCompanyID
	}

	amount, err := decimal.NewFromString(req.AccrualAmount)
	if err != nil || amount.IsNegative() {
		return PolicyResponse{}, leaveerrors.ErrInvalidQuantity
	}
	cap := decimal.Zero
	if req.CarryOverCap != "" {
		cap, err = decimal.NewFromString(req.CarryOverCap)
		if err != nil || cap.IsNegative() {
			return PolicyResponse{}, leaveerrors.ErrInvalidQuantity
		}
	}

	p := &LeavePolicy{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		Code:          req.Code,
		Name:          req.Name,
		Unit:          req.Unit,
		AccrualAmount: amount,
		AccrualPeriod: req.AccrualPeriod,
		CarryOverCap:  cap,
	}

	if err := s.repo.CreatePolicy(ctx, p); err != nil {
		return PolicyResponse{}, err
	}

	s.logger.Info("leave policy created",
		zap.String("policy_id", p.ID.String()),
		zap.String("code", p.Code),
	)
	return mapPolicyToResponse(*p), nil
}

func (s *service) UpdatePolicy(ctx context.Context, companyID, policyID string, req CreatePolicyRequest) (PolicyResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return PolicyResponse{}, leaveerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(policyID); err != nil {
		return PolicyResponse{}, leaveerrors.ErrInvalidPolicyID
	}

	p, err := s.repo.FindPolicy(ctx, companyID, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PolicyResponse{}, leaveerrors.ErrPolicyNotFound
		}
		return PolicyResponse{}, err
	}

	amount, err := decimal.NewFromString(req.AccrualAmount)
	if err != nil || amount.IsNegative() {
		return PolicyResponse{}, leaveerrors.ErrInvalidQuantity
	}
	cap := p.CarryOverCap
	if req.CarryOverCap != "" {
		cap, err = decimal.NewFromString(req.CarryOverCap)
		if err != nil || cap.IsNegative() {
			return PolicyResponse{}, leaveerrors.ErrInvalidQuantity
		}
	}

	p.Code = req.Code
	p.Name = req.Name
	p.Unit = req.Unit
	p.AccrualAmount = amount
	p.AccrualPeriod = req.AccrualPeriod
	p.CarryOverCap = cap

	if err := s.repo.UpdatePolicy(ctx, p); err != nil {
		return PolicyResponse{}, err
	}
	return mapPolicyToResponse(*p), nil
}

func (s *service) GetPolicies(ctx context.Context, companyID string) ([]PolicyResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, leaveerrors.ErrInvalidCompanyID
	}

	policies, err := s.repo.FindAllPolicies(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]PolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = mapPolicyToResponse(p)
	}
	return resp, nil
}

func (s *service) findRequest(ctx context.Context, companyID, requestID string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, leaveerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, leaveerrors.ErrRequestNotFound
	}
	l, err := s.repo.FindByIDAndCompany(ctx, companyID, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrRequestNotFound
		}
		return nil, err
	}
	return l, nil
}

func mapRequestToResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             l.ID.String(),
		CompanyID:      l.CompanyID.String(),
		EmployeeID:     l.EmployeeID.String(),
		PolicyID:       l.PolicyID.String(),
		StartDate:      l.StartDate.Format(dateLayout),
		EndDate:        l.EndDate.Format(dateLayout),
		Unit:           l.Unit,
		Quantity:       l.Quantity.String(),
		Reason:         l.Reason,
		Status:         l.Status,
		ExceedsBalance: l.ExceedsBalance,
		CreatedBy:      l.CreatedBy.String(),
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.DecisionReason = l.DecisionReason
	return resp
}

func mapPolicyToResponse(p LeavePolicy) PolicyResponse {
	return PolicyResponse{
		ID:            p.ID.String(),
		CompanyID:     p.CompanyID.String(),
		Code:          p.Code,
		Name:          p.Name,
		Unit:          p.Unit,
		AccrualAmount: p.AccrualAmount.String(),
		AccrualPeriod: p.AccrualPeriod,
		CarryOverCap:  p.CarryOverCap.String(),
	}
}
