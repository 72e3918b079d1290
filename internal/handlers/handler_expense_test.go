package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
	portssvc "github.com/theVJagrawal/expense-tracker/internal/core/ports/services"
	"github.com/theVJagrawal/expense-tracker/internal/dto"
	"github.com/theVJagrawal/expense-tracker/internal/handlers"
)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*domain.Expense, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Expense), args.Bool(1), args.Error(2)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseService) CountExpenses(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Test Suite ---
type ExpenseHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockExpenseService *MockExpenseService
}

func (suite *ExpenseHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterCustomValidators()

	suite.router = gin.New()
	suite.mockExpenseService = new(MockExpenseService)
	handlers.RegisterExpenseRoutes(&suite.router.RouterGroup, suite.mockExpenseService)
}

// sampleExpense returns a stored expense as the service would hand it back.
func sampleExpense() *domain.Expense {
	return &domain.Expense{
		ExpenseID:       uuid.NewString(),
		Amount:          decimal.RequireFromString("100.50"),
		Category:        "Food",
		Description:     "Lunch",
		ExpenseDate:     domain.NewDate(2024, 1, 15),
		CreatedAt:       time.Now().UTC(),
		ClientRequestID: "client-req-0001",
	}
}

func (suite *ExpenseHandlerTestSuite) postExpense(body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ExpenseHandlerTestSuite) TestCreateExpense_Success() {
	expected := sampleExpense()
	suite.mockExpenseService.On("CreateExpense",
		mock.Anything,
		mock.MatchedBy(func(r dto.CreateExpenseRequest) bool {
			return r.ClientRequestID == expected.ClientRequestID && r.Amount.Equal(expected.Amount)
		}),
	).Return(expected, true, nil).Once()

	w := suite.postExpense(`{"amount":100.50,"category":"Food","description":"Lunch","date":"2024-01-15","clientRequestId":"client-req-0001"}`)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Empty(w.Header().Get("X-Idempotent-Replay"), "a first submission must not be marked as a replay")

	var resp dto.ExpenseResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.ExpenseID, resp.ID)
	suite.True(expected.Amount.Equal(resp.Amount))
	suite.Equal("Food", resp.Category)
	suite.Equal("2024-01-15", resp.Date.String())
	suite.Equal(expected.ClientRequestID, resp.ClientRequestID)

	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestCreateExpense_ReplayReturnsOriginal() {
	original := sampleExpense()
	suite.mockExpenseService.On("CreateExpense", mock.Anything, mock.Anything).
		Return(original, false, nil).Once()

	// Retry with a different amount but the same client request ID.
	w := suite.postExpense(`{"amount":999.00,"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("true", w.Header().Get("X-Idempotent-Replay"))

	var resp dto.ExpenseResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(original.ExpenseID, resp.ID)
	suite.True(resp.Amount.Equal(decimal.RequireFromString("100.50")), "replay must return the originally stored amount")

	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestCreateExpense_ValidationErrors() {
	futureDate := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")

	testCases := []struct {
		name        string
		body        string
		field       string
		expectedMsg string
	}{
		{
			name:        "missing amount",
			body:        `{"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "amount",
			expectedMsg: "Amount is required",
		},
		{
			name:        "null amount",
			body:        `{"amount":null,"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "amount",
			expectedMsg: "Amount is required",
		},
		{
			name:        "zero amount",
			body:        `{"amount":0,"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "amount",
			expectedMsg: "Amount must be greater than 0",
		},
		{
			name:        "negative amount",
			body:        `{"amount":-5.00,"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "amount",
			expectedMsg: "Amount must be greater than 0",
		},
		{
			name:        "too many decimal places",
			body:        `{"amount":10.123,"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "amount",
			expectedMsg: "Amount must have at most 2 decimal places",
		},
		{
			name:        "missing category",
			body:        `{"amount":100.50,"date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "category",
			expectedMsg: "Category is required",
		},
		{
			name:        "blank category",
			body:        `{"amount":100.50,"category":"   ","date":"2024-01-15","clientRequestId":"client-req-0001"}`,
			field:       "category",
			expectedMsg: "Category is required",
		},
		{
			name:        "category too long",
			body:        fmt.Sprintf(`{"amount":100.50,"category":%q,"date":"2024-01-15","clientRequestId":"client-req-0001"}`, strings.Repeat("a", 101)),
			field:       "category",
			expectedMsg: "Category must not exceed 100 characters",
		},
		{
			name:        "description too long",
			body:        fmt.Sprintf(`{"amount":100.50,"category":"Food","description":%q,"date":"2024-01-15","clientRequestId":"client-req-0001"}`, strings.Repeat("d", 501)),
			field:       "description",
			expectedMsg: "Description must not exceed 500 characters",
		},
		{
			name:        "missing date",
			body:        `{"amount":100.50,"category":"Food","clientRequestId":"client-req-0001"}`,
			field:       "date",
			expectedMsg: "Date is required",
		},
		{
			name:        "null date",
			body:        `{"amount":100.50,"category":"Food","date":null,"clientRequestId":"client-req-0001"}`,
			field:       "date",
			expectedMsg: "Date is required",
		},
		{
			name:        "future date",
			body:        fmt.Sprintf(`{"amount":100.50,"category":"Food","date":%q,"clientRequestId":"client-req-0001"}`, futureDate),
			field:       "date",
			expectedMsg: "Date cannot be in the future",
		},
		{
			name:        "missing client request ID",
			body:        `{"amount":100.50,"category":"Food","date":"2024-01-15"}`,
			field:       "clientRequestId",
			expectedMsg: "Client request ID is required",
		},
		{
			name:        "client request ID too short",
			body:        `{"amount":100.50,"category":"Food","date":"2024-01-15","clientRequestId":"short"}`,
			field:       "clientRequestId",
			expectedMsg: "Client request ID must be between 10 and 100 characters",
		},
		{
			name:        "client request ID too long",
			body:        fmt.Sprintf(`{"amount":100.50,"category":"Food","date":"2024-01-15","clientRequestId":%q}`, strings.Repeat("x", 101)),
			field:       "clientRequestId",
			expectedMsg: "Client request ID must be between 10 and 100 characters",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			w := suite.postExpense(tc.body)

			suite.Equal(http.StatusBadRequest, w.Code)

			var resp struct {
				Error            string            `json:"error"`
				ValidationErrors map[string]string `json:"validationErrors"`
			}
			suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			suite.Equal("Validation failed", resp.Error)
			suite.Equal(tc.expectedMsg, resp.ValidationErrors[tc.field])
		})
	}

	suite.mockExpenseService.AssertNotCalled(suite.T(), "CreateExpense")
}

func (suite *ExpenseHandlerTestSuite) TestCreateExpense_MalformedBody() {
	testCases := []struct {
		name string
		body string
	}{
		{name: "truncated JSON", body: `{"amount":`},
		{name: "non numeric amount", body: `{"amount":"abc","category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`},
		{name: "wrong date layout", body: `{"amount":100.50,"category":"Food","date":"15/01/2024","clientRequestId":"client-req-0001"}`},
		{name: "timestamp instead of date", body: `{"amount":100.50,"category":"Food","date":"2024-01-15T10:00:00Z","clientRequestId":"client-req-0001"}`},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			w := suite.postExpense(tc.body)

			suite.Equal(http.StatusBadRequest, w.Code)

			var resp map[string]any
			suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			suite.Equal("Invalid request body", resp["error"])
		})
	}

	suite.mockExpenseService.AssertNotCalled(suite.T(), "CreateExpense")
}

func (suite *ExpenseHandlerTestSuite) TestCreateExpense_ServiceFailure() {
	suite.mockExpenseService.On("CreateExpense", mock.Anything, mock.Anything).
		Return(nil, false, errors.New("storage unavailable")).Once()

	w := suite.postExpense(`{"amount":100.50,"category":"Food","date":"2024-01-15","clientRequestId":"client-req-0001"}`)

	suite.Equal(http.StatusInternalServerError, w.Code)

	var resp map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Internal server error", resp["error"])

	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestListExpenses_Success() {
	first := sampleExpense()
	second := sampleExpense()
	second.ClientRequestID = "client-req-0002"
	expenses := []domain.Expense{*first, *second}

	suite.mockExpenseService.On("ListExpenses", mock.Anything, dto.ListExpensesParams{}).
		Return(expenses, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/expenses", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp []dto.ExpenseResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 2)
	suite.Equal(first.ExpenseID, resp[0].ID)
	suite.Equal(second.ExpenseID, resp[1].ID)

	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestListExpenses_PassesFilterAndSort() {
	suite.mockExpenseService.On("ListExpenses", mock.Anything, dto.ListExpensesParams{Category: "Food", Sort: "date_desc"}).
		Return([]domain.Expense{*sampleExpense()}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/expenses?category=Food&sort=date_desc", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestListExpenses_EmptyResultIsJSONArray() {
	suite.mockExpenseService.On("ListExpenses", mock.Anything, dto.ListExpensesParams{}).
		Return([]domain.Expense{}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/expenses", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String(), "an empty listing must be [] rather than null")
}

func (suite *ExpenseHandlerTestSuite) TestListExpenses_RejectsUnknownSort() {
	req, _ := http.NewRequest(http.MethodGet, "/expenses?sort=amount_asc", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp struct {
		Error            string            `json:"error"`
		ValidationErrors map[string]string `json:"validationErrors"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Validation failed", resp.Error)
	suite.Equal("Sort must be one of: date_desc", resp.ValidationErrors["sort"])

	suite.mockExpenseService.AssertNotCalled(suite.T(), "ListExpenses")
}

func (suite *ExpenseHandlerTestSuite) TestListExpenses_ServiceFailure() {
	suite.mockExpenseService.On("ListExpenses", mock.Anything, dto.ListExpensesParams{}).
		Return(nil, errors.New("storage unavailable")).Once()

	req, _ := http.NewRequest(http.MethodGet, "/expenses", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestHealthCheck_ReportsCount() {
	suite.mockExpenseService.On("CountExpenses", mock.Anything).Return(int64(42), nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/expenses/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("UP", resp["status"])
	suite.EqualValues(42, resp["expenseCount"])
	suite.Contains(resp, "timestamp")

	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestHealthCheck_ServiceFailure() {
	suite.mockExpenseService.On("CountExpenses", mock.Anything).
		Return(int64(0), errors.New("storage unavailable")).Once()

	req, _ := http.NewRequest(http.MethodGet, "/expenses/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestExpenseHandler(t *testing.T) {
	suite.Run(t, new(ExpenseHandlerTestSuite))
}
