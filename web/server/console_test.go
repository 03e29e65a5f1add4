package server

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewConsoleLogger("test-render-123", nil, messageChan)

	logger.Info("frame", "sample", 4)

	select {
	case msg := <-messageChan:
		if msg.Message != "frame sample=4" {
			t.Errorf("Expected message 'frame sample=4', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestConsoleLogger_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewConsoleLogger("test-render-456", nil, messageChan)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Info(msg)
	}

	for i, want := range messages {
		select {
		case msg := <-messageChan:
			if msg.Message != want {
				t.Errorf("Message %d: expected '%s', got '%s'", i, want, msg.Message)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}
}

func TestConsoleLogger_FullChannelDoesNotBlock(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewConsoleLogger("test-render-789", nil, messageChan)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			logger.Info("spam")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logger blocked on a full channel")
	}
	if len(messageChan) != 1 {
		t.Errorf("Expected 1 buffered message, got %d", len(messageChan))
	}
}

func TestConsoleLogger_ForwardsToServerLog(t *testing.T) {
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewConsoleLogger("abc", next, nil)

	logger.Warn("slow frame", "ms", 250)

	out := buf.String()
	for _, want := range []string{"slow frame", "render=abc", "ms=250", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected server log to contain %q, got %q", want, out)
		}
	}
}

func TestConsoleLogger_WithAttrs(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewConsoleLogger("r", nil, messageChan).With("width", 64)

	logger.Info("reset")
	msg := <-messageChan
	if msg.Message != "reset width=64" {
		t.Errorf("Expected 'reset width=64', got '%s'", msg.Message)
	}
}
