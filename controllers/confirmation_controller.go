package controllers

import (
	"fmt"

	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/orders"
	"github.com/avtoyurist/docbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	replyPressStart   = "Нажмите /start и выберите документ."
	replyStorageError = "Техническая ошибка. Попробуйте позже."
	replyPayExpired   = "Срок оплаты истёк. Выберите документ заново: /start"
	replyAccessLapsed = "Доступ по этой оплате истёк, требуется новая оплата. Выберите документ заново: /start"
	replyVerified     = "Оплата получена! Теперь опишите вашу ситуацию подробно одним сообщением."
	replyAlreadyPaid  = "Оплата уже подтверждена. Опишите вашу ситуацию подробно одним сообщением."
)

// HandleText routes a free-text message: while the active order is unpaid the
// text is treated as a payment confirmation, once verified it is the
// situation description for drafting.
func (h *UpdateHandler) HandleText(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	utils.LogDebug("Text message from user %d (%d chars)", userID, len(msg.Text))

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
		utils.LogError("User %d has unknown active category %q", userID, category)
		h.sendPlain(chatID, replyPressStart)
		return
	}

	res, err := h.lifecycle.Submit(userID, cat.Key, msg.Text)
	if err != nil {
		utils.LogError("Submit failed for user %d category %s: %v", userID, cat.Key, err)
		h.sendPlain(chatID, replyStorageError)
		return
	}

	switch res.Status {
	case orders.SubmitNoOrder:
		h.sendPlain(chatID, replyPressStart)
	case orders.SubmitPayExpired:
		h.sendPlain(chatID, replyPayExpired)
	case orders.SubmitAccessLapsed:
		h.sendPlain(chatID, replyAccessLapsed)
	case orders.SubmitMismatch:
		if _, err := h.gw.SendHTML(chatID, mismatchReply(res.Order)); err != nil {
			utils.LogError("Failed to send mismatch reply to user %d: %v", userID, err)
		}
	case orders.SubmitVerified:
		h.notifyOperator(userID, cat, res.Order)
		h.sendPlain(chatID, replyVerified)
	case orders.SubmitAlreadyVerified:
		h.sendPlain(chatID, replyAlreadyPaid)
	case orders.SubmitReady:
		h.gate.Generate(chatID, userID, cat, res.Order, msg.Text)
	}
}

// mismatchReply states the exact expected amount and code so the user can
// correct the confirmation message.
func mismatchReply(order models.Order) string {
	return fmt.Sprintf(
		"Не удалось подтвердить оплату.\n\n"+
			"Ожидается перевод на сумму <b>%s ₽</b> с кодом <code>%s</code>.\n"+
			"Отправьте сумму и код одним сообщением, например:\n"+
			"<code>%s %s</code>",
		order.AmountRubles(), order.Code, order.AmountRubles(), order.Code)
}

func (h *UpdateHandler) notifyOperator(userID int64, cat models.Category, order models.Order) {
	// Best effort: the user's flow does not depend on the operator email.
	go func() {
		if err := utils.NotifyOperatorPayment(h.operatorEmail, userID, cat.Key, order.Amount, order.Code); err != nil {
			utils.LogError("Failed to notify operator about payment from user %d: %v", userID, err)
		}
	}()
}
