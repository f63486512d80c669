package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"freelancehub/internal/auth"
	apperrors "freelancehub/internal/errors"
	"freelancehub/internal/model"
	"freelancehub/internal/repository"
	"freelancehub/internal/service"
)

// MockProjectService is a mock implementation of ProjectService.
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, userID uuid.UUID, input service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, userID uuid.UUID, id string, input service.UpdateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Complete(ctx context.Context, userID uuid.UUID, id string) (*model.Project, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func authenticateAs(c echo.Context, userID uuid.UUID) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: userID.String(),
	})
	c.Set("user", token)
}

func TestProjectHandler_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("creates and returns 201", func(t *testing.T) {
		mockSvc := new(MockProjectService)
		mockSvc.On("Create", mock.Anything, userID, service.CreateProjectInput{
			Title:       "Landing page",
			Description: "Marketing site",
			Budget:      300,
			TechStack:   []string{"React"},
		}).Return(&model.Project{Title: "Landing page", Status: model.ProjectOpen}, nil)

		h := NewProjectHandler(mockSvc)
		c, rec := newTestContext(http.MethodPost, "/projects",
			`{"title":"Landing page","description":"Marketing site","budget":300,"tech_stack":["React"]}`)
		authenticateAs(c, userID)

		err := h.Create(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("rejects invalid payload", func(t *testing.T) {
		mockSvc := new(MockProjectService)
		h := NewProjectHandler(mockSvc)
		c, _ := newTestContext(http.MethodPost, "/projects", `{"title":"","budget":-1}`)
		authenticateAs(c, userID)

		err := h.Create(c)

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		h := NewProjectHandler(new(MockProjectService))
		c, _ := newTestContext(http.MethodPost, "/projects", `{}`)

		err := h.Create(c)

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestProjectHandler_Update_NotOwner(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New().String()

	mockSvc := new(MockProjectService)
	mockSvc.On("Update", mock.Anything, userID, projectID, mock.AnythingOfType("service.UpdateProjectInput")).
		Return(nil, apperrors.ErrNotProjectOwner)

	h := NewProjectHandler(mockSvc)
	c, _ := newTestContext(http.MethodPut, "/projects/"+projectID, `{"title":"New"}`)
	c.SetParamNames("id")
	c.SetParamValues(projectID)
	authenticateAs(c, userID)

	err := h.Update(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestProjectHandler_Complete_Conflict(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New().String()

	mockSvc := new(MockProjectService)
	mockSvc.On("Complete", mock.Anything, userID, projectID).Return(nil, apperrors.ErrProjectCompleted)

	h := NewProjectHandler(mockSvc)
	c, _ := newTestContext(http.MethodPatch, "/projects/"+projectID+"/complete", "")
	c.SetParamNames("id")
	c.SetParamValues(projectID)
	authenticateAs(c, userID)

	err := h.Complete(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestProjectHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockProjectService)
	mockSvc.On("Get", mock.Anything, "missing").Return(nil, apperrors.ErrProjectNotFound)

	h := NewProjectHandler(mockSvc)
	c, _ := newTestContext(http.MethodGet, "/projects/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	body, ok := httpErr.Message.(apperrors.ErrorResponse)
	assert.True(t, ok)
	assert.Equal(t, "project not found", body.Detail)
}

func TestProjectHandler_List_PassesFilter(t *testing.T) {
	mockSvc := new(MockProjectService)
	mockSvc.On("List", mock.Anything, repository.ProjectFilter{
		Status: "OPEN",
		Skip:   20,
		Limit:  10,
	}).Return([]model.Project{{Title: "One"}, {Title: "Two"}}, nil)

	h := NewProjectHandler(mockSvc)
	c, rec := newTestContext(http.MethodGet, "/projects?status=OPEN&skip=20&limit=10", "")

	err := h.List(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var projects []model.Project
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	assert.Len(t, projects, 2)
	mockSvc.AssertExpectations(t)
}
