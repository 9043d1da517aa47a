package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"workforce-lodging/internal/accounts"
	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/auth"
	"workforce-lodging/internal/employers"
	"workforce-lodging/internal/hotels"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/reporting"
	"workforce-lodging/internal/rooms"
	"workforce-lodging/internal/workers"
	"workforce-lodging/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Accounts  *accounts.Service
	Employers *employers.Service
	Rooms     *rooms.Engine
	Hotels    hotels.Store
	Reports   *reporting.Service
	Workers   *workers.Service
	Cookie    auth.CookieOptions
	// Ready probes backing stores. Nil reports ready.
	Ready func(ctx context.Context) error
}

// --- Session ---

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Readiness(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("readiness check failed", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Signup(c *gin.Context) {
	var req accounts.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	token, _, err := h.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auth.SetSessionCookie(c.Writer, h.Cookie, token)
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func (h *Handlers) Login(c *gin.Context) {
	var req accounts.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	token, err := h.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthenticated) {
			logger.FromGin(c).Info("login rejected")
		}
		respondError(c, err)
		return
	}
	auth.SetSessionCookie(c.Writer, h.Cookie, token)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c.Writer, h.Cookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- Account ---

func (h *Handlers) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	u, err := h.Accounts.Profile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handlers) GetAccount(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	h.Me(c)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) UpdateAccount(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	u, err := h.Accounts.Rename(c.Request.Context(), p, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handlers) ChangePassword(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req accounts.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), p, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) ListHotels(c *gin.Context) {
	list, err := h.Hotels.List(c.Request.Context())
	if err != nil {
		respondError(c, apperr.Internal("list hotels", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotels": list})
}

// --- Employer account ---

func (h *Handlers) GetEmployer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	e, err := h.Employers.Get(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employer": e})
}

func (h *Handlers) CreateEmployer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req employers.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	e, err := h.Employers.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"employer": e})
}

func (h *Handlers) UpdateEmployer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req employers.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	e, err := h.Employers.Update(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employer": e})
}

// --- Worker roster ---

func (h *Handlers) ListWorkers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Workers.Roster(c.Request.Context(), p, workers.Filter{
		Q:       c.Query("q"),
		HotelID: c.Query("hotel_id"),
		Status:  c.Query("status"),
		Start:   c.Query("start"),
		End:     c.Query("end"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type importRequest struct {
	Workers []workers.Input `json:"workers"`
}

func (h *Handlers) ImportWorkers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	n, err := h.Workers.Import(c.Request.Context(), p, req.Workers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": n})
}

// --- Dashboards ---

func (h *Handlers) EmployerSummary(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Reports.EmployerSummary(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) FrontdeskSummary(c *gin.Context) {
	out, err := h.Reports.FrontdeskSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) AdminSummary(c *gin.Context) {
	out, err := h.Reports.AdminSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Room requests ---

func (h *Handlers) CreateRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req rooms.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	rr, err := h.Rooms.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rr.ID, "status": rr.Status})
}

func (h *Handlers) ListRequests(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Validation("limit", "must be an integer"))
			return
		}
		limit = n
	}
	items, err := h.Rooms.List(c.Request.Context(), p, strings.TrimSpace(c.Query("status")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handlers) GetRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	rr, err := h.Rooms.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": rr})
}

// stepFunc is the shape of the single-step lifecycle operations, taken as
// method expressions such as (*rooms.Engine).Assign.
type stepFunc func(*rooms.Engine, context.Context, identity.Principal, string) (rooms.RoomRequest, error)

func (h *Handlers) step(op stepFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		rr, err := op(h.Rooms, c.Request.Context(), p, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": rr.Status})
	}
}

func (h *Handlers) SubmitRequest() gin.HandlerFunc { return h.step((*rooms.Engine).Submit) }
func (h *Handlers) CancelRequest() gin.HandlerFunc { return h.step((*rooms.Engine).Cancel) }
func (h *Handlers) AssignRequest() gin.HandlerFunc { return h.step((*rooms.Engine).Assign) }
func (h *Handlers) CheckIn() gin.HandlerFunc       { return h.step((*rooms.Engine).CheckIn) }
func (h *Handlers) CheckOut() gin.HandlerFunc      { return h.step((*rooms.Engine).CheckOut) }

type decisionRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (h *Handlers) DecideRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	rr, err := h.Rooms.Decide(c.Request.Context(), p, c.Param("id"), rooms.Decision(req.Decision), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": rr.Status})
}

// --- Extensions ---

func (h *Handlers) RequestExtension(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req rooms.ExtensionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	ext, err := h.Rooms.RequestExtension(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": ext.ID})
}

func (h *Handlers) ListExtensions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.Rooms.ListExtensions(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handlers) DecideExtension(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	ext, err := h.Rooms.DecideExtension(c.Request.Context(), p, c.Param("id"), rooms.Decision(req.Decision))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": ext.Status})
}

// --- Admin ---

func (h *Handlers) ListUsers(c *gin.Context) {
	items, err := h.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handlers) ChangeRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if err := h.Accounts.ChangeRole(c.Request.Context(), p, c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
