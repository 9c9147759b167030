// Package mocks provides mock implementations for testing bot handlers.
package mocks

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI defines the interface for Telegram bot operations.
// This interface is defined here to avoid import cycles between bot and mocks packages.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// SentMessage captures a message sent via MockBot.
type SentMessage struct {
	ChatID    any
	Text      string
	ParseMode models.ParseMode
}

// SentDocument captures a document sent via MockBot.
type SentDocument struct {
	ChatID    any
	Caption   string
	ParseMode models.ParseMode
}

// Compile-time check that MockBot implements TelegramAPI.
var _ TelegramAPI = (*MockBot)(nil)

// MockBot simulates Telegram bot operations for testing.
type MockBot struct {
	mu sync.RWMutex

	SentMessages  []SentMessage
	SentDocuments []SentDocument

	// SendMessageError allows simulating SendMessage failures.
	SendMessageError error
	// SendDocumentError allows simulating SendDocument failures.
	SendDocumentError error
	// GetFileError allows simulating GetFile failures.
	GetFileError error

	// FileToReturn is returned by GetFile.
	FileToReturn *models.File
	// FileDownloadLinkToReturn is returned by FileDownloadLink.
	FileDownloadLinkToReturn string

	nextMessageID int
}

// NewMockBot creates a MockBot.
func NewMockBot() *MockBot {
	return &MockBot{nextMessageID: 1}
}

// SendMessage records the message and returns a synthetic Telegram message.
func (m *MockBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendMessageError != nil {
		return nil, m.SendMessageError
	}

	m.SentMessages = append(m.SentMessages, SentMessage{
		ChatID:    params.ChatID,
		Text:      params.Text,
		ParseMode: params.ParseMode,
	})

	id := m.nextMessageID
	m.nextMessageID++
	return &models.Message{ID: id}, nil
}

// SendDocument records the document send.
func (m *MockBot) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendDocumentError != nil {
		return nil, m.SendDocumentError
	}

	m.SentDocuments = append(m.SentDocuments, SentDocument{
		ChatID:    params.ChatID,
		Caption:   params.Caption,
		ParseMode: params.ParseMode,
	})

	id := m.nextMessageID
	m.nextMessageID++
	return &models.Message{ID: id}, nil
}

// GetFile returns the configured file or error.
func (m *MockBot) GetFile(_ context.Context, _ *bot.GetFileParams) (*models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetFileError != nil {
		return nil, m.GetFileError
	}
	if m.FileToReturn != nil {
		return m.FileToReturn, nil
	}
	return &models.File{FileID: "mock-file-id", FilePath: "photos/mock.jpg"}, nil
}

// FileDownloadLink returns a mock download URL.
func (m *MockBot) FileDownloadLink(_ *models.File) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FileDownloadLinkToReturn != "" {
		return m.FileDownloadLinkToReturn
	}
	return "https://example.com/mock-file.jpg"
}

// SentMessageCount returns the number of messages sent.
func (m *MockBot) SentMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentMessages)
}

// LastSentMessage returns the most recently sent message, or a zero value.
func (m *MockBot) LastSentMessage() SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.SentMessages) == 0 {
		return SentMessage{}
	}
	return m.SentMessages[len(m.SentMessages)-1]
}

// SentDocumentCount returns the number of documents sent.
func (m *MockBot) SentDocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentDocuments)
}
