package controllers

import (
	"fmt"
	"strings"

	"github.com/avtoyurist/docbot/gateway"
	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const menuText = "АВТОЮРИСТ 2025\n\nВыберите документ:"

func (h *UpdateHandler) handleCommand(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	utils.LogInfo("Command /%s from user %d", msg.Command(), userID)

	switch msg.Command() {
	case "start":
		if _, err := h.gw.SendMenu(chatID, menuText, categoryButtons()); err != nil {
			utils.LogError("Failed to send menu to user %d: %v", userID, err)
		}
	case "rekvizity":
		// Explicit regeneration of payment details for the active category.
		category, ok, err := h.store.ActiveCategory(userID)
		if err != nil {
			utils.LogError("Failed to load state for user %d: %v", userID, err)
			h.sendPlain(chatID, replyStorageError)
			return
		}
		if !ok {
			h.sendPlain(chatID, replyPressStart)
			return
		}
		cat, found := models.CategoryByKey(category)
		if !found {
			h.sendPlain(chatID, replyPressStart)
			return
		}
		h.issueChallenge(chatID, 0, userID, cat)
	default:
		h.sendPlain(chatID, replyPressStart)
	}
}

func (h *UpdateHandler) handleCallback(cq *tgbotapi.CallbackQuery) {
	if err := h.gw.AnswerCallback(cq.ID); err != nil {
		utils.LogError("Failed to answer callback %s: %v", cq.ID, err)
	}
	if cq.Message == nil {
		utils.LogDebug("Callback %s without message, ignoring", cq.ID)
		return
	}

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	key := cq.Data
	if strings.HasPrefix(key, "regen:") {
		key = strings.TrimPrefix(key, "regen:")
	}
	cat, found := models.CategoryByKey(key)
	if !found {
		utils.LogError("Unknown category %q selected by user %d", cq.Data, userID)
		h.sendPlain(chatID, replyPressStart)
		return
	}
	utils.LogInfo("User %d selected category %s", userID, cat.Key)

	if err := h.store.SetActiveCategory(userID, cat.Key); err != nil {
		utils.LogError("Failed to save state for user %d: %v", userID, err)
		h.sendPlain(chatID, replyStorageError)
		return
	}

	h.issueChallenge(chatID, messageID, userID, cat)
}

// issueChallenge replaces the user's challenge for the category and shows the
// payment instructions. messageID 0 sends a new message instead of editing.
func (h *UpdateHandler) issueChallenge(chatID int64, messageID int, userID int64, cat models.Category) {
	order, err := h.lifecycle.SelectCategory(userID, cat.Key, cat.BasePrice)
	if err != nil {
		utils.LogError("Failed to issue challenge for user %d category %s: %v", userID, cat.Key, err)
		h.sendPlain(chatID, replyStorageError)
		return
	}

	text := paymentInstructions(cat, order, h.payout)
	buttons := []gateway.Button{{Label: "Новые реквизиты", Data: "regen:" + cat.Key}}

	if messageID != 0 {
		if err := h.gw.EditMenu(chatID, messageID, text, buttons); err != nil {
			utils.LogError("Failed to edit menu for user %d: %v", userID, err)
		}
		return
	}
	if _, err := h.gw.SendMenu(chatID, text, buttons); err != nil {
		utils.LogError("Failed to send instructions to user %d: %v", userID, err)
	}
}

func categoryButtons() []gateway.Button {
	buttons := make([]gateway.Button, 0, len(models.Categories))
	for _, c := range models.Categories {
		buttons = append(buttons, gateway.Button{
			Label: fmt.Sprintf("%s — %d ₽", c.Name, c.BasePrice),
			Data:  c.Key,
		})
	}
	return buttons
}

func paymentInstructions(cat models.Category, order models.Order, payout string) string {
	return fmt.Sprintf(
		"<b>%s</b>\n"+
			"Цена: <b>%s ₽</b>\n\n"+
			"Переведите точную сумму на счёт:\n"+
			"<code>%s</code>\n\n"+
			"Код заявки: <code>%s</code>\n\n"+
			"Реквизиты действительны 30 минут. После перевода отправьте одним сообщением сумму и код, например:\n"+
			"<code>%s %s</code>",
		cat.Name, order.AmountRubles(), payout, order.Code, order.AmountRubles(), order.Code)
}

func (h *UpdateHandler) sendPlain(chatID int64, text string) {
	if _, err := h.gw.SendText(chatID, text); err != nil {
		utils.LogError("Failed to send message to chat %d: %v", chatID, err)
	}
}
