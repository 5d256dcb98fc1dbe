package controllers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avtoyurist/docbot/gateway"
	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/orders"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testPayTTL    = 30 * time.Minute
	testAccessTTL = 24 * time.Hour
)

type sentFile struct {
	name    string
	data    []byte
	caption string
}

// fakeGateway records outbound traffic for assertions.
type fakeGateway struct {
	mu        sync.Mutex
	texts     []string
	htmls     []string
	edits     []string
	editHTMLs []string
	menus     []string
	files     []sentFile
	nextID    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{}
}

func (f *fakeGateway) SendText(chatID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeGateway) SendHTML(chatID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.htmls = append(f.htmls, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeGateway) EditText(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeGateway) EditHTML(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editHTMLs = append(f.editHTMLs, text)
	return nil
}

func (f *fakeGateway) SendFile(chatID int64, name string, data []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, sentFile{name: name, data: data, caption: caption})
	return nil
}

func (f *fakeGateway) SendMenu(chatID int64, text string, buttons []gateway.Button) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menus = append(f.menus, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeGateway) EditMenu(chatID int64, messageID int, text string, buttons []gateway.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menus = append(f.menus, text)
	return nil
}

func (f *fakeGateway) AnswerCallback(callbackID string) error { return nil }

func (f *fakeGateway) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.texts)
	return f.texts[len(f.texts)-1]
}

// fakeDrafter answers completion calls with a canned function.
type fakeDrafter struct {
	mu    sync.Mutex
	fn    func(system, user string) (string, error)
	calls []string // user prompts, in order
}

func (f *fakeDrafter) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, user)
	fn := f.fn
	f.mu.Unlock()
	return fn(system, user)
}

func newTestOrders(t *testing.T) (*orders.Store, *orders.Lifecycle) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.UserState{}))

	store := orders.NewStore(db)
	return store, orders.NewLifecycle(store, testPayTTL, testAccessTTL)
}
