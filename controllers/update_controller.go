package controllers

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/avtoyurist/docbot/gateway"
	"github.com/avtoyurist/docbot/orders"
	"github.com/avtoyurist/docbot/utils"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler receives webhook updates and dispatches them to the menu,
// confirmation and generation flows.
type UpdateHandler struct {
	gw            gateway.Gateway
	store         *orders.Store
	lifecycle     *orders.Lifecycle
	gate          *GenerationGate
	payout        string
	operatorEmail string
	seen          *seenSet
}

// NewUpdateHandler wires the update dispatcher
func NewUpdateHandler(gw gateway.Gateway, store *orders.Store, lifecycle *orders.Lifecycle, gate *GenerationGate, payout, operatorEmail string) *UpdateHandler {
	return &UpdateHandler{
		gw:            gw,
		store:         store,
		lifecycle:     lifecycle,
		gate:          gate,
		payout:        payout,
		operatorEmail: operatorEmail,
		seen:          newSeenSet(1024),
	}
}

// POST /telegram/webhook
func (h *UpdateHandler) HandleWebhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.LogError("Failed to decode webhook update: %v", err)
		utils.BadRequest(c, "Invalid update", err.Error())
		return
	}

	// The transport is at-least-once: reconnects redeliver updates with the
	// same id. Replays are acknowledged and dropped.
	if !h.seen.Add(update.UpdateID) {
		utils.LogDebug("Duplicate update %d dropped", update.UpdateID)
		utils.Success(c, "Duplicate update", nil)
		return
	}

	// Acknowledge immediately; the work runs on its own goroutine so one
	// slow drafting call never blocks other users' updates.
	go h.Dispatch(update)
	utils.Success(c, "Update accepted", nil)
}

// Dispatch routes one update. Safe to call concurrently; per-key atomicity
// lives in the order store, single-flight in the generation gate.
func (h *UpdateHandler) Dispatch(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogErrorWithStack(fmt.Errorf("panic in update dispatch: %v", r), debug.Stack())
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		h.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		h.HandleText(update.Message)
	default:
		utils.LogDebug("Ignoring update %d with no actionable content", update.UpdateID)
	}
}

// seenSet is a bounded set of recently processed update ids.
type seenSet struct {
	mu    sync.Mutex
	ids   map[int]struct{}
	queue []int
	cap   int
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		ids: make(map[int]struct{}, capacity),
		cap: capacity,
	}
}

// Add records the id and reports whether it was new.
func (s *seenSet) Add(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.queue = append(s.queue, id)
	if len(s.queue) > s.cap {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.ids, oldest)
	}
	return true
}
