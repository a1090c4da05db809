package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finance-dashboard/internal/cache"
	"finance-dashboard/internal/core"
	"finance-dashboard/internal/events"
	applog "finance-dashboard/internal/log"
	"finance-dashboard/internal/report"
	"finance-dashboard/internal/store"
)

const (
	// MaxListLimit caps the limit query parameter of the transaction list.
	MaxListLimit = 500
	// exportLimit bounds a single spreadsheet export.
	exportLimit = 10000
)

type transactionRequest struct {
	UserID      *int64               `json:"user_id"`
	Name        string               `json:"name"`
	Amount      json.Number          `json:"amount"`
	CategoryID  int64                `json:"category_id"`
	Type        core.TransactionType `json:"transaction_type"`
	Description *string              `json:"description"`
	Date        string               `json:"date"`
}

// toTransaction accepts the amount as a JSON number or string and dates as
// YYYY-MM-DD or RFC 3339. An empty date is left zero for the store to fill in.
func (r transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(r.Amount.String())
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		UserID:      r.UserID,
		Name:        r.Name,
		Amount:      amount,
		CategoryID:  r.CategoryID,
		Type:        r.Type,
		Description: r.Description,
	}
	if r.Date == "" {
		return t, nil
	}
	if d, err := time.Parse("2006-01-02", r.Date); err == nil {
		t.Date = d
		return t, nil
	}
	d, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return t, errInvalidDate{r.Date}
	}
	t.Date = d
	return t, nil
}

type errInvalidDate struct{ value string }

func (e errInvalidDate) Error() string {
	return fmt.Sprintf("invalid date %q: use YYYY-MM-DD or RFC 3339", e.value)
}

type categoryRequest struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	IsIncome bool   `json:"is_income"`
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "unhealthy",
			"database": s.repo.Driver(),
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "finance-dashboard",
		"database": s.repo.Driver(),
	})
}

// getDashboard serves the dashboard context, from cache when possible.
func (s *Server) getDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	if data, ok := s.cache.Get(ctx, cache.KeyDashboard); ok {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	snap, err := s.dashboard.Snapshot(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	view, err := snap.Context()
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := cache.SetJSON(ctx, s.cache, cache.KeyDashboard, view, s.cacheTTL); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Cache write failed", applog.FieldCacheKey, cache.KeyDashboard, applog.FieldError, err)
	}
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, view)
}

// getTransactions lists the newest transactions. The default page is cached.
func (s *Server) getTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	limit := store.DefaultListLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, MaxListLimit)
	}
	cacheable := limit == store.DefaultListLimit

	if cacheable {
		var cached []core.TransactionWithCategory
		if cache.GetJSON(ctx, s.cache, cache.KeyTransactions, &cached) {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	transactions, err := s.repo.ListTransactions(ctx, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	if cacheable {
		if err := cache.SetJSON(ctx, s.cache, cache.KeyTransactions, transactions, s.cacheTTL); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Cache write failed", applog.FieldCacheKey, cache.KeyTransactions, applog.FieldError, err)
		}
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, transactions)
}

func (s *Server) getTransaction(c *gin.Context) {
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}
	t, err := s.repo.GetTransaction(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// addTransaction creates a new transaction
func (s *Server) addTransaction(c *gin.Context) {
	t, ok := bindTransaction(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.invalidate(ctx)
	e := events.NewEvent(events.TransactionCreated, created.ID, created.Name)
	e.Amount = created.Amount.StringFixed(2)
	s.notify(c, e)
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}
	t, ok := bindTransaction(c)
	if !ok {
		return
	}
	t.ID = id

	ctx := c.Request.Context()
	updated, err := s.repo.UpdateTransaction(ctx, t)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.invalidate(ctx)
	e := events.NewEvent(events.TransactionUpdated, updated.ID, updated.Name)
	e.Amount = updated.Amount.StringFixed(2)
	s.notify(c, e)
	c.JSON(http.StatusOK, updated)
}

// deleteTransaction removes a transaction by ID
func (s *Server) deleteTransaction(c *gin.Context) {
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		s.fail(c, err)
		return
	}

	s.invalidate(ctx)
	s.notify(c, events.NewEvent(events.TransactionDeleted, id, ""))
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

func (s *Server) exportTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	transactions, err := s.repo.ListTransactions(ctx, exportLimit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Type", report.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := report.WriteTransactionsXLSX(c.Writer, transactions); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		}
	}
}

// getCategories retrieves all categories
func (s *Server) getCategories(c *gin.Context) {
	categories, err := s.repo.ListCategories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) addCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	created, err := s.repo.CreateCategory(ctx, core.Category{
		Name:     req.Name,
		Color:    req.Color,
		Icon:     req.Icon,
		IsIncome: req.IsIncome,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	s.invalidate(ctx)
	s.notify(c, events.NewEvent(events.CategoryCreated, created.ID, created.Name))
	c.JSON(http.StatusCreated, created)
}

// deleteCategory refuses to remove a category that still has transactions
// unless cascade=true is given.
func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}
	policy := store.DeleteRestrict
	if raw := c.Query("cascade"); raw != "" {
		cascade, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cascade must be true or false"})
			return
		}
		if cascade {
			policy = store.DeleteCascade
		}
	}

	ctx := c.Request.Context()
	removed, err := s.repo.DeleteCategory(ctx, id, policy)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.invalidate(ctx)
	e := events.NewEvent(events.CategoryDeleted, id, "")
	e.Removed = removed
	s.notify(c, e)
	c.JSON(http.StatusOK, gin.H{
		"message":              "Category deleted",
		"transactions_removed": removed,
	})
}

func (s *Server) notify(c *gin.Context, e events.Event) {
	ctx := c.Request.Context()
	events.Notify(ctx, s.events, applog.FromContext(ctx), e)
}

func bindTransaction(c *gin.Context) (core.Transaction, bool) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return core.Transaction{}, false
	}
	t, err := req.toTransaction()
	if err != nil {
		var dateErr errInvalidDate
		if errors.As(err, &dateErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		}
		return core.Transaction{}, false
	}
	return t, true
}

func pathID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return 0, false
	}
	return id, true
}

var validationErrors = []error{
	core.ErrInvalidType,
	core.ErrInvalidAmount,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrInvalidColor,
	core.ErrInvalidIcon,
	core.ErrMissingCategory,
}

// fail maps a domain or storage error onto a status code and error body.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, core.ErrCategoryInUse), errors.Is(err, core.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	applog.FromContext(ctx).ErrorContext(ctx, "Request failed", applog.FieldError, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
