package leavepolicy_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-webtrack/internal/access"
	"go-webtrack/internal/leavepolicy"
	leavepolicyerrors "go-webtrack/internal/leavepolicy/errors"
	"go-webtrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type fakePolicyService struct {
	leavepolicy.Service
	createFn     func(ctx context.Context, actor access.Actor, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error)
	byLeaveType  func(ctx context.Context, actor access.Actor, leaveTypeID string) (leavepolicy.LeavePolicyResponse, error)
	patchFn      func(ctx context.Context, actor access.Actor, id string, req leavepolicy.PatchLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error)
	createCalled bool
}

func (f *fakePolicyService) Create(ctx context.Context, actor access.Actor, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
	f.createCalled = true
	return f.createFn(ctx, actor, req)
}

func (f *fakePolicyService) GetByLeaveType(ctx context.Context, actor access.Actor, leaveTypeID string) (leavepolicy.LeavePolicyResponse, error) {
	return f.byLeaveType(ctx, actor, leaveTypeID)
}

func (f *fakePolicyService) Patch(ctx context.Context, actor access.Actor, id string, req leavepolicy.PatchLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
	return f.patchFn(ctx, actor, id, req)
}

func setupRoutes(t *testing.T, actor access.Actor, svc leavepolicy.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	policy, err := access.NewRolePolicy()
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetActor(c, actor)
		c.Next()
	})
	leavepolicy.RegisterRoutes(r.Group(""), leavepolicy.NewHandler(svc), policy)
	return r
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestLeavePolicyHandler_Create(t *testing.T) {
	companyID := uuid.New().String()
	leaveTypeID := uuid.New().String()
	body := `{"leave_type_id":"` + leaveTypeID + `","min_days_notice":7,"max_consecutive_days":20}`

	t.Run("admin creates", func(t *testing.T) {
		admin := access.Actor{EmployeeID: uuid.New().String(), CompanyID: companyID, Role: access.RoleAdmin}
		svc := &fakePolicyService{
			createFn: func(ctx context.Context, a access.Actor, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				assert.Equal(t, admin, a)
				assert.Equal(t, 7, req.MinDaysNotice)
				require.NotNil(t, req.MaxConsecutiveDays)
				assert.Equal(t, 20, *req.MaxConsecutiveDays)
				return leavepolicy.LeavePolicyResponse{ID: "lp-1", LeaveTypeID: req.LeaveTypeID, MinDaysNotice: 7, MaxConsecutiveDays: 20}, nil
			},
		}

		w, env := do(setupRoutes(t, admin, svc), http.MethodPost, "/leave-policies", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Ok)
		var got leavepolicy.LeavePolicyResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leaveTypeID, got.LeaveTypeID)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		employee := access.Actor{EmployeeID: uuid.New().String(), CompanyID: companyID, Role: access.RoleEmployee}
		svc := &fakePolicyService{}

		w, env := do(setupRoutes(t, employee, svc), http.MethodPost, "/leave-policies", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
		assert.False(t, svc.createCalled)
	})

	t.Run("second policy for a type", func(t *testing.T) {
		admin := access.Actor{EmployeeID: uuid.New().String(), CompanyID: companyID, Role: access.RoleAdmin}
		svc := &fakePolicyService{
			createFn: func(context.Context, access.Actor, leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				return leavepolicy.LeavePolicyResponse{}, leavepolicyerrors.ErrLeavePolicyExists
			},
		}

		w, env := do(setupRoutes(t, admin, svc), http.MethodPost, "/leave-policies", body)

		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("missing leave type", func(t *testing.T) {
		admin := access.Actor{EmployeeID: uuid.New().String(), CompanyID: companyID, Role: access.RoleAdmin}
		svc := &fakePolicyService{}

		w, env := do(setupRoutes(t, admin, svc), http.MethodPost, "/leave-policies", `{"min_days_notice":7}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.False(t, svc.createCalled)
	})
}

func TestLeavePolicyHandler_GetByLeaveType(t *testing.T) {
	employee := access.Actor{EmployeeID: uuid.New().String(), CompanyID: uuid.New().String(), Role: access.RoleEmployee}
	leaveTypeID := uuid.New().String()

	svc := &fakePolicyService{
		byLeaveType: func(ctx context.Context, a access.Actor, id string) (leavepolicy.LeavePolicyResponse, error) {
			if id != leaveTypeID {
				return leavepolicy.LeavePolicyResponse{}, leavepolicyerrors.ErrLeavePolicyNotFound
			}
			return leavepolicy.LeavePolicyResponse{ID: "lp-1", LeaveTypeID: id, MaxConsecutiveDays: 30, RequiresApproval: true}, nil
		},
	}
	r := setupRoutes(t, employee, svc)

	w, env := do(r, http.MethodGet, "/leave-types/"+leaveTypeID+"/policy", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var got leavepolicy.LeavePolicyResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.RequiresApproval)
	assert.Equal(t, 30, got.MaxConsecutiveDays)

	w, env = do(r, http.MethodGet, "/leave-types/"+uuid.New().String()+"/policy", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestLeavePolicyHandler_Patch(t *testing.T) {
	admin := access.Actor{EmployeeID: uuid.New().String(), CompanyID: uuid.New().String(), Role: access.RoleAdmin}

	t.Run("partial body", func(t *testing.T) {
		svc := &fakePolicyService{
			patchFn: func(ctx context.Context, a access.Actor, id string, req leavepolicy.PatchLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				assert.Equal(t, "lp-1", id)
				assert.Nil(t, req.LeaveTypeID)
				assert.Nil(t, req.MaxConsecutiveDays)
				require.NotNil(t, req.MinDaysNotice)
				assert.Equal(t, 3, *req.MinDaysNotice)
				return leavepolicy.LeavePolicyResponse{ID: id, MinDaysNotice: 3, MaxConsecutiveDays: 30}, nil
			},
		}

		w, _ := do(setupRoutes(t, admin, svc), http.MethodPatch, "/leave-policies/lp-1", `{"min_days_notice":3}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("out of range", func(t *testing.T) {
		w, env := do(setupRoutes(t, admin, &fakePolicyService{}), http.MethodPatch, "/leave-policies/lp-1", `{"max_consecutive_days":400}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}
