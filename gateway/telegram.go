// Package gateway wraps the messaging transport behind a narrow interface so
// handlers can be tested against a fake.
package gateway

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avtoyurist/docbot/utils"
)

// Button is one inline menu button
type Button struct {
	Label string
	Data  string
}

// Gateway is the outbound messaging surface the handlers depend on.
// Failures are transport errors: logged by callers, never fatal, and core
// order state is unaffected (the transport redelivers inbound updates).
type Gateway interface {
	SendText(chatID int64, text string) (int, error)
	SendHTML(chatID int64, text string) (int, error)
	EditText(chatID int64, messageID int, text string) error
	EditHTML(chatID int64, messageID int, text string) error
	SendFile(chatID int64, name string, data []byte, caption string) error
	SendMenu(chatID int64, text string, buttons []Button) (int, error)
	EditMenu(chatID int64, messageID int, text string, buttons []Button) error
	AnswerCallback(callbackID string) error
}

// Telegram implements Gateway over the Telegram Bot API
type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram authenticates against the Bot API
func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, utils.TransportError("failed to authenticate bot", err)
	}
	utils.LogInfo("Authorized on bot account %s", bot.Self.UserName)
	return &Telegram{bot: bot}, nil
}

// RegisterWebhook points the Bot API at our webhook endpoint
func (t *Telegram) RegisterWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return utils.TransportError("failed to build webhook config", err)
	}
	if _, err := t.bot.Request(wh); err != nil {
		return utils.TransportError("failed to register webhook", err)
	}
	return nil
}

// SendText sends a plain text message and returns its message id
func (t *Telegram) SendText(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := t.bot.Send(msg)
	if err != nil {
		return 0, utils.TransportError("failed to send message", err)
	}
	return sent.MessageID, nil
}

// SendHTML sends a message with HTML parse mode; the caller must escape
// untrusted content first.
func (t *Telegram) SendHTML(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := t.bot.Send(msg)
	if err != nil {
		return 0, utils.TransportError("failed to send message", err)
	}
	return sent.MessageID, nil
}

// EditText replaces the text of a previously sent message
func (t *Telegram) EditText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := t.bot.Send(edit); err != nil {
		return utils.TransportError("failed to edit message", err)
	}
	return nil
}

// EditHTML replaces the text of a previously sent message, HTML parse mode
func (t *Telegram) EditHTML(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(edit); err != nil {
		return utils.TransportError("failed to edit message", err)
	}
	return nil
}

// SendFile delivers a document as a file attachment
func (t *Telegram) SendFile(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := t.bot.Send(doc); err != nil {
		return utils.TransportError("failed to send file", err)
	}
	return nil
}

// SendMenu sends a message with an inline keyboard, one button per row,
// HTML parse mode
func (t *Telegram) SendMenu(chatID int64, text string, buttons []Button) (int, error) {
	sent, err := t.bot.Send(menuMessage(chatID, text, buttons))
	if err != nil {
		return 0, utils.TransportError("failed to send menu", err)
	}
	return sent.MessageID, nil
}

// EditMenu replaces a message's text and keyboard, HTML parse mode
func (t *Telegram) EditMenu(chatID int64, messageID int, text string, buttons []Button) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, inlineKeyboard(buttons))
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(edit); err != nil {
		return utils.TransportError("failed to edit menu", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so the client stops spinning
func (t *Telegram) AnswerCallback(callbackID string) error {
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return utils.TransportError("failed to answer callback", err)
	}
	return nil
}

// menuMessage builds the menu send config. Parse mode matches EditMenu, so a
// menu renders the same whether it is sent fresh or edited in place.
func menuMessage(chatID int64, text string, buttons []Button) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = inlineKeyboard(buttons)
	return msg
}

func inlineKeyboard(buttons []Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
