package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theVJagrawal/expense-tracker/internal/apperrors"
	portssvc "github.com/theVJagrawal/expense-tracker/internal/core/ports/services"
	"github.com/theVJagrawal/expense-tracker/internal/dto"
	"github.com/theVJagrawal/expense-tracker/internal/middleware"
)

var (
	expensesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "expense_tracker_expenses_created_total",
		Help: "Number of expenses created for a previously unseen client request ID.",
	})
	expenseReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "expense_tracker_expense_replays_total",
		Help: "Number of create requests answered with an already stored expense.",
	})
)

// replayHeader marks responses served from an earlier submission with the
// same client request ID.
const replayHeader = "X-Idempotent-Replay"

// expenseHandler handles HTTP requests related to expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

// RegisterExpenseRoutes registers all expense-related routes on the given
// router group. The optional middleware is applied to the data routes only,
// leaving the health probe unthrottled.
func RegisterExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, mw ...gin.HandlerFunc) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	expenses.GET("/health", h.healthCheck)

	data := expenses.Group("", mw...)
	data.POST("", h.createExpense)
	data.GET("", h.listExpenses)
}

// createExpense godoc
// @Summary Create a new expense
// @Description Records an expense. Submissions are idempotent: resending the same clientRequestId returns the originally stored expense instead of creating a duplicate.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Header 201 {string} X-Idempotent-Replay "Set to true when the response replays an earlier submission"
// @Failure 400 {object} map[string]interface{} "Validation failed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fieldErrors := validationErrorsToFieldMap(verrs)
			logger.Warn("Validation failed for create expense request", slog.Any("validation_errors", fieldErrors))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":            "Validation failed",
				"validationErrors": fieldErrors,
			})
			return
		}
		logger.Warn("Failed to bind JSON for create expense request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	logger.Info("Creating expense",
		slog.String("amount", req.Amount.String()),
		slog.String("category", req.Category),
		slog.String("client_request_id", req.ClientRequestID))

	expense, created, err := h.expenseService.CreateExpense(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to create expense", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if created {
		expensesCreatedTotal.Inc()
	} else {
		expenseReplaysTotal.Inc()
		c.Header(replayHeader, "true")
	}

	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Retrieves expenses in creation order, optionally filtered by category (case-insensitive) and sorted newest first.
// @Tags expenses
// @Produce json
// @Param category query string false "Only return expenses with this category"
// @Param sort query string false "Sort mode" Enums(date_desc)
// @Success 200 {array} dto.ExpenseResponse
// @Failure 400 {object} map[string]interface{} "Validation failed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fieldErrors := validationErrorsToFieldMap(verrs)
			logger.Warn("Validation failed for list expenses request", slog.Any("validation_errors", fieldErrors))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":            "Validation failed",
				"validationErrors": fieldErrors,
			})
			return
		}
		logger.Warn("Failed to bind query for list expenses request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	logger.Debug("Fetching expenses",
		slog.String("category", params.Category),
		slog.String("sort", params.Sort))

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rejected list expenses request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list expenses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListExpenseResponse(expenses))
}

// healthCheck godoc
// @Summary Expense service health
// @Description Reports service status together with the number of stored expenses.
// @Tags expenses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /expenses/health [get]
func (h *expenseHandler) healthCheck(c *gin.Context) {
	count, err := h.expenseService.CountExpenses(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to count expenses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "UP",
		"timestamp":    time.Now().UTC(),
		"expenseCount": count,
	})
}
