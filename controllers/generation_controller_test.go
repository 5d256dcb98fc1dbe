package controllers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategory() models.Category {
	return models.Category{
		Key:          "court",
		Name:         "Исковое заявление в суд",
		BasePrice:    1500,
		Labels:       []string{"Исковое заявление"},
		DefaultLabel: "Исковое заявление",
	}
}

func verifiedOrder() models.Order {
	return models.Order{UserID: 42, Category: "court", Amount: 150023, Code: "DOC-COURT-42", Verified: true}
}

func TestGenerationGateDeliversInline(t *testing.T) {
	gw := newFakeGateway()
	drafter := &fakeDrafter{fn: func(system, user string) (string, error) {
		return "ИСКОВОЕ ЗАЯВЛЕНИЕ\n<текст с разметкой>", nil
	}}
	gate := NewGenerationGate(gw, drafter, time.Minute)

	gate.Generate(100, 42, testCategory(), verifiedOrder(), "сосед затопил квартиру")

	// Placeholder first, then edited in place with the escaped draft.
	require.NotEmpty(t, gw.texts)
	assert.Equal(t, replyGenerating, gw.texts[0])
	require.Len(t, gw.editHTMLs, 1)
	assert.Contains(t, gw.editHTMLs[0], "ГОТОВО!")
	assert.Contains(t, gw.editHTMLs[0], "&lt;текст с разметкой&gt;")
	assert.Empty(t, gw.files)
}

func TestGenerationGateDeliversLongDraftAsFile(t *testing.T) {
	longDoc := strings.Repeat("а", 5000)
	gw := newFakeGateway()
	drafter := &fakeDrafter{fn: func(system, user string) (string, error) {
		return longDoc, nil
	}}
	gate := NewGenerationGate(gw, drafter, time.Minute)

	gate.Generate(100, 42, testCategory(), verifiedOrder(), "описание ситуации")

	require.Len(t, gw.files, 1)
	assert.Equal(t, "document.txt", gw.files[0].name)
	assert.Equal(t, longDoc, string(gw.files[0].data))
	assert.Empty(t, gw.editHTMLs, "long drafts must not be sent inline")
}

func TestGenerationGateDraftingFailureIsRetryable(t *testing.T) {
	gw := newFakeGateway()
	drafter := &fakeDrafter{fn: func(system, user string) (string, error) {
		return "", utils.DraftingError("drafting backend error (500)", nil)
	}}
	gate := NewGenerationGate(gw, drafter, time.Minute)

	gate.Generate(100, 42, testCategory(), verifiedOrder(), "описание ситуации")

	require.Len(t, gw.edits, 1)
	assert.Equal(t, replyDraftError, gw.edits[0])
	assert.Empty(t, gw.files)
	assert.Empty(t, gw.editHTMLs)
}

func TestGenerationGateSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gw := newFakeGateway()
	drafter := &fakeDrafter{fn: func(system, user string) (string, error) {
		close(started)
		<-release
		return "документ", nil
	}}
	gate := NewGenerationGate(gw, drafter, time.Minute)

	done := make(chan struct{})
	go func() {
		gate.Generate(100, 42, testCategory(), verifiedOrder(), "первая заявка")
		close(done)
	}()
	<-started

	// Second submission for the same (user, category) while one is in
	// flight is rejected, never run concurrently.
	gate.Generate(100, 42, testCategory(), verifiedOrder(), "вторая заявка")
	assert.Contains(t, gw.texts, replyInFlight)

	close(release)
	<-done

	drafter.mu.Lock()
	defer drafter.mu.Unlock()
	assert.Len(t, drafter.calls, 1, "only one drafting call may run")
}

func TestGenerationGateClassification(t *testing.T) {
	multiLabel := models.Category{
		Key:          "court",
		Name:         "Исковое заявление в суд",
		Labels:       []string{"Исковое заявление", "Ходатайство"},
		DefaultLabel: "Исковое заявление",
	}

	t.Run("in-set label is used for the draft", func(t *testing.T) {
		gw := newFakeGateway()
		drafter := &fakeDrafter{}
		drafter.fn = func(system, user string) (string, error) {
			if system == classifySystemPrompt {
				return "Ходатайство", nil
			}
			return "документ", nil
		}
		gate := NewGenerationGate(gw, drafter, time.Minute)

		gate.Generate(100, 42, multiLabel, verifiedOrder(), "прошу отложить заседание")

		require.Len(t, drafter.calls, 2)
		assert.Contains(t, drafter.calls[1], "Составь: Ходатайство")
	})

	t.Run("out-of-set output falls back to the default label", func(t *testing.T) {
		gw := newFakeGateway()
		drafter := &fakeDrafter{}
		drafter.fn = func(system, user string) (string, error) {
			if system == classifySystemPrompt {
				return "Какой-то неожиданный ответ", nil
			}
			return "документ", nil
		}
		gate := NewGenerationGate(gw, drafter, time.Minute)

		gate.Generate(100, 42, multiLabel, verifiedOrder(), "ситуация")

		require.Len(t, drafter.calls, 2)
		assert.Contains(t, drafter.calls[1], "Составь: Исковое заявление")
	})

	t.Run("classifier failure falls back to the default label", func(t *testing.T) {
		gw := newFakeGateway()
		drafter := &fakeDrafter{}
		drafter.fn = func(system, user string) (string, error) {
			if system == classifySystemPrompt {
				return "", errors.New("boom")
			}
			return "документ", nil
		}
		gate := NewGenerationGate(gw, drafter, time.Minute)

		gate.Generate(100, 42, multiLabel, verifiedOrder(), "ситуация")

		require.Len(t, drafter.calls, 2)
		assert.Contains(t, drafter.calls[1], "Составь: Исковое заявление")
	})
}
