package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"peopledesk/internal/leave"
	leaveerrors "peopledesk/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveService struct {
	createFn func(ctx context.Context, companyID, actorID string, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error)
	decideFn func(ctx context.Context, companyID, approverID, requestID string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, companyID, actorID string, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	return f.createFn(ctx, companyID, actorID, req)
}
func (f *fakeLeaveService) Update(ctx context.Context, companyID, requestID string, req leave.UpdateLeaveRequest) (leave.LeaveRequestResponse, error) {
	return leave.LeaveRequestResponse{}, nil
}
func (f *fakeLeaveService) Submit(ctx context.Context, companyID, requestID string) (leave.LeaveRequestResponse, error) {
	return leave.LeaveRequestResponse{}, nil
}
func (f *fakeLeaveService) Decide(ctx context.Context, companyID, approverID, requestID string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	return f.decideFn(ctx, companyID, approverID, requestID, req)
}
func (f *fakeLeaveService) GetAll(ctx context.Context, companyID string, filter leave.ListFilter) ([]leave.LeaveRequestResponse, error) {
	return nil, nil
}
func (f *fakeLeaveService) GetByID(ctx context.Context, companyID, requestID string) (leave.LeaveRequestResponse, error) {
	return leave.LeaveRequestResponse{}, nil
}
func (f *fakeLeaveService) BalanceSummary(ctx context.Context, companyID, employeeID string) (leave.BalanceSummaryResponse, error) {
	return leave.BalanceSummaryResponse{}, nil
}
func (f *fakeLeaveService) CreatePolicy(ctx context.Context, companyID string, req leave.CreatePolicyRequest) (leave.PolicyResponse, error) {
	return leave.PolicyResponse{}, nil
}
func (f *fakeLeaveService) UpdatePolicy(ctx context.Context, companyID, policyID string, req leave.CreatePolicyRequest) (leave.PolicyResponse, error) {
	return leave.PolicyResponse{}, nil
}
func (f *fakeLeaveService) GetPolicies(ctx context.Context, companyID string) ([]leave.PolicyResponse, error) {
	return nil, nil
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		actorID := uuid.New().String()
		employeeID := uuid.New().String()

		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, cid, aid string, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, actorID, aid)
				assert.Equal(t, employeeID, req.EmployeeID)
				return leave.LeaveRequestResponse{
					ID:         uuid.New().String(),
					EmployeeID: req.EmployeeID,
					Status:     leave.StatusSubmitted,
					Quantity:   req.Quantity,
				}, nil
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + employeeID + `","policy_id":"` + uuid.New().String() + `","start_date":"2026-06-01","end_date":"2026-06-05","unit":"DAYS","quantity":"3"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Set("account_id", actorID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leave.StatusSubmitted, got.Status)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{"unit":"WEEKS"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
	})
}

func TestLeaveHandler_Decide(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		requestID := uuid.New().String()
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, cid, aid, rid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				assert.Equal(t, requestID, rid)
				assert.Equal(t, leave.StatusApproved, req.Status)
				return leave.LeaveRequestResponse{ID: rid, Status: req.Status}, nil
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: requestID}}
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/decision", strings.NewReader(`{"status":"APPROVED"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Set("account_id", uuid.New().String())

		h.Decide(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("already decided maps to 409", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, cid, aid, rid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				return leave.LeaveRequestResponse{}, leaveerrors.ErrInvalidStatusTransition
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/decision", strings.NewReader(`{"status":"APPROVED"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Set("account_id", uuid.New().String())

		h.Decide(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("negative unknown decision", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/decision", strings.NewReader(`{"status":"MAYBE"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Decide(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
