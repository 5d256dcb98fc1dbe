package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/avtoyurist/docbot/gateway"
	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/utils"
)

// Drafter is the text-generation backend the gate calls.
type Drafter interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

const (
	// inlineLimit is the transport threshold above which the draft is
	// delivered as a file attachment instead of inline text.
	inlineLimit = 3800

	classifyTimeout = 15 * time.Second

	draftTemperature = 0.3
	draftMaxTokens   = 4000

	draftSystemPrompt    = "Ты — профессиональный российский юрист. Пиши ТОЛЬКО чистый текст документа без пояснений."
	classifySystemPrompt = "Ты определяешь тип юридического документа. Ответь ровно одной строкой из предложенного списка, без пояснений."

	replyGenerating = "Генерирую документ…"
	replyDraftError = "Ошибка генерации. Ваша оплата действительна, отправьте описание ещё раз чуть позже."
	replyInFlight   = "Документ уже генерируется, дождитесь результата."
	replyFileDone   = "Готово! Документ во вложении."
	disclaimerLine  = "Документ подготовлен автоматически и не является юридической консультацией."
)

// GenerationGate forwards a verified user's situation text to the drafting
// backend and routes the result back, inline or as a file. At most one
// drafting call may be in flight per (user, category); a second submission is
// rejected while one runs.
type GenerationGate struct {
	gw      gateway.Gateway
	drafter Drafter
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGenerationGate wires the gate
func NewGenerationGate(gw gateway.Gateway, drafter Drafter, timeout time.Duration) *GenerationGate {
	return &GenerationGate{
		gw:       gw,
		drafter:  drafter,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Generate runs the whole drafting flow for one submission. Failures of the
// drafting backend are reported as retryable and never touch order state, so
// the user can resubmit without paying again.
func (g *GenerationGate) Generate(chatID, userID int64, cat models.Category, order models.Order, situation string) {
	key := fmt.Sprintf("%d:%s", userID, cat.Key)
	if !g.acquire(key) {
		utils.LogInfo("Rejecting concurrent draft request for %s", key)
		if _, err := g.gw.SendText(chatID, replyInFlight); err != nil {
			utils.LogError("Failed to send in-flight reply to chat %d: %v", chatID, err)
		}
		return
	}
	defer g.release(key)

	placeholderID, err := g.gw.SendText(chatID, replyGenerating)
	if err != nil {
		utils.LogError("Failed to send placeholder to chat %d: %v", chatID, err)
		placeholderID = 0
	}

	label := g.classify(cat, situation)
	utils.LogInfo("Drafting %q for user %d category %s", label, userID, cat.Key)

	doc, err := g.draft(label, situation)
	if err != nil {
		utils.LogError("Drafting failed for user %d category %s: %v", userID, cat.Key, err)
		g.replyOrEdit(chatID, placeholderID, replyDraftError)
		return
	}

	g.deliver(chatID, placeholderID, cat, doc)
}

// classify picks the document subtype with one constrained completion. Any
// output outside the category's fixed label set falls back to the default.
func (g *GenerationGate) classify(cat models.Category, situation string) string {
	if len(cat.Labels) <= 1 {
		return cat.DefaultLabel
	}

	ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
	defer cancel()

	prompt := "Варианты:\n"
	for _, l := range cat.Labels {
		prompt += "- " + l + "\n"
	}
	prompt += "\nСитуация:\n" + situation

	out, err := g.drafter.Complete(ctx, classifySystemPrompt, prompt, 0, 50)
	if err != nil {
		utils.LogError("Classification failed, using default label %q: %v", cat.DefaultLabel, err)
		return cat.DefaultLabel
	}
	for _, l := range cat.Labels {
		if out == l {
			return l
		}
	}
	utils.LogInfo("Classifier output %q not in label set, using default %q", out, cat.DefaultLabel)
	return cat.DefaultLabel
}

func (g *GenerationGate) draft(label, situation string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Составь: %s\n\n"+
			"Шапка: плейсхолдеры [НАИМЕНОВАНИЕ И АДРЕС ПОЛУЧАТЕЛЯ] и [ФИО, АДРЕС, ТЕЛЕФОН ЗАЯВИТЕЛЯ].\n\n"+
			"Обстоятельства — используй ТОЛЬКО изложенные ниже факты, ничего не добавляй от себя:\n%s\n\n"+
			"Затем раздел \"ПРОШУ:\" с пронумерованными требованиями, "+
			"раздел \"Приложения:\" с плейсхолдером списка документов, "+
			"дата и подпись [ФИО].\n\n"+
			"Последней строкой добавь: \"%s\"",
		label, situation, disclaimerLine)

	return g.drafter.Complete(ctx, draftSystemPrompt, prompt, draftTemperature, draftMaxTokens)
}

// deliver sends the finished draft: inline (HTML-escaped) when it fits the
// transport threshold, as a text file attachment otherwise.
func (g *GenerationGate) deliver(chatID int64, placeholderID int, cat models.Category, doc string) {
	if utf8.RuneCountInString(doc) > inlineLimit {
		caption := cat.Name + " готов!"
		if err := g.gw.SendFile(chatID, "document.txt", []byte(doc), caption); err != nil {
			utils.LogError("Failed to send document file to chat %d: %v", chatID, err)
			g.replyOrEdit(chatID, placeholderID, replyDraftError)
			return
		}
		g.replyOrEdit(chatID, placeholderID, replyFileDone)
		return
	}

	text := fmt.Sprintf("<b>ГОТОВО!</b>\n\n<b>%s</b>\n\n%s", cat.Name, utils.EscapeHTML(doc))
	if placeholderID != 0 {
		if err := g.gw.EditHTML(chatID, placeholderID, text); err != nil {
			utils.LogError("Failed to edit draft into chat %d: %v", chatID, err)
		}
		return
	}
	if _, err := g.gw.SendHTML(chatID, text); err != nil {
		utils.LogError("Failed to send draft to chat %d: %v", chatID, err)
	}
}

func (g *GenerationGate) replyOrEdit(chatID int64, placeholderID int, text string) {
	if placeholderID != 0 {
		if err := g.gw.EditText(chatID, placeholderID, text); err != nil {
			utils.LogError("Failed to edit message %d in chat %d: %v", placeholderID, chatID, err)
		}
		return
	}
	if _, err := g.gw.SendText(chatID, text); err != nil {
		utils.LogError("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (g *GenerationGate) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *GenerationGate) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}
