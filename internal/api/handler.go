package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/api/dto"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/scheduler"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/store"
)

// ContactStore is the slice of the contact store the HTTP surface needs.
type ContactStore interface {
	List() []domain.Contact
	Add(c domain.Contact) (domain.Contact, error)
	Edit(i int, c domain.Contact) (domain.Contact, error)
	Remove(i int) (domain.Contact, error)
}

// SchedulerControl exposes the scheduler's lifecycle to the HTTP surface.
type SchedulerControl interface {
	Start(ctx context.Context) error
	Stop()
	Pause()
	Resume()
	State() scheduler.State
}

// HistoryReader reads the send log.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]store.SendRecord, error)
}

type Handler struct {
	contacts ContactStore
	sched    SchedulerControl
	history  HistoryReader
	log      *zap.Logger
	appCtx   context.Context
	now      func() time.Time
}

func NewHandler(contacts ContactStore, sched SchedulerControl, history HistoryReader, log *zap.Logger, appCtx context.Context) *Handler {
	return &Handler{
		contacts: contacts,
		sched:    sched,
		history:  history,
		log:      log,
		appCtx:   appCtx,
		now:      time.Now,
	}
}

func (h *Handler) listContactsHandler(c *gin.Context) {
	list := h.contacts.List()
	resp := dto.ContactsResponse{Contacts: make([]dto.ContactResponse, len(list)), Total: len(list)}
	for i, contact := range list {
		resp.Contacts[i] = toContactResponse(i, contact)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) addContactHandler(c *gin.Context) {
	contact, ok := h.bindContact(c)
	if !ok {
		return
	}
	added, err := h.contacts.Add(contact)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContactResponse(len(h.contacts.List())-1, added))
}

func (h *Handler) editContactHandler(c *gin.Context) {
	index, ok := h.bindIndex(c)
	if !ok {
		return
	}
	contact, ok := h.bindContact(c)
	if !ok {
		return
	}
	edited, err := h.contacts.Edit(index, contact)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(index, edited))
}

func (h *Handler) removeContactHandler(c *gin.Context) {
	index, ok := h.bindIndex(c)
	if !ok {
		return
	}
	removed, err := h.contacts.Remove(index)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(index, removed))
}

func (h *Handler) schedulerStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SchedulerStatusResponse{
		State:    h.sched.State().String(),
		Upcoming: domain.SummarizeUpcoming(h.now(), h.contacts.List()),
	})
}

func (h *Handler) startSchedulerHandler(c *gin.Context) {
	// The scheduler outlives the request; start it on the application context.
	if err := h.sched.Start(h.appCtx); err != nil {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.sched.State().String()})
}

func (h *Handler) stopSchedulerHandler(c *gin.Context) {
	h.sched.Stop()
	c.JSON(http.StatusOK, gin.H{"state": h.sched.State().String()})
}

func (h *Handler) pauseSchedulerHandler(c *gin.Context) {
	h.sched.Pause()
	c.JSON(http.StatusOK, gin.H{"state": h.sched.State().String()})
}

func (h *Handler) resumeSchedulerHandler(c *gin.Context) {
	h.sched.Resume()
	c.JSON(http.StatusOK, gin.H{"state": h.sched.State().String()})
}

func (h *Handler) historyHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		return
	}
	recs, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("history query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read send history"})
		return
	}
	resp := make([]dto.SendRecordResponse, len(recs))
	for i, r := range recs {
		resp[i] = dto.SendRecordResponse{
			ID:        r.ID,
			Phone:     r.Phone,
			Recipient: r.Recipient,
			Text:      r.Text,
			Status:    r.Status,
			Error:     r.Error,
			FiredAt:   r.FiredAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bindContact(c *gin.Context) (domain.Contact, bool) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request: " + err.Error()})
		return domain.Contact{}, false
	}
	weekdays, err := domain.ExpandWeekdays(req.Weekdays)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return domain.Contact{}, false
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return domain.Contact{
		Phone:     req.Phone,
		Recipient: req.Recipient,
		Hour:      req.Hour,
		Minute:    req.Minute,
		Weekdays:  weekdays,
		Enabled:   enabled,
	}, true
}

func (h *Handler) bindIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid contact index"})
		return 0, false
	}
	return index, true
}

func (h *Handler) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("contact store error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func toContactResponse(index int, c domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		Index:     index,
		ID:        c.ID,
		Phone:     c.Phone,
		Recipient: c.Recipient,
		Hour:      c.Hour,
		Minute:    c.Minute,
		Weekdays:  c.Weekdays,
		Enabled:   c.Enabled,
	}
}
