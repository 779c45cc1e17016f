package debug

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

func TestUnloadedMessengerFails(t *testing.T) {
	var nilMessenger *Messenger
	if err := nilMessenger.Create(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("nil messenger: expected ErrNotInitialized, got %v", err)
	}

	logger, _ := test.NewNullLogger()
	m := NewMessenger(logger)
	if m.Loaded() {
		t.Error("fresh messenger should not be loaded")
	}
	if err := m.Create(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := m.Destroy(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		severity ext_debug_utils.DebugUtilsMessageSeverityFlags
		want     logrus.Level
	}{
		{ext_debug_utils.SeverityError, logrus.ErrorLevel},
		{ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning, logrus.ErrorLevel},
		{ext_debug_utils.SeverityWarning, logrus.WarnLevel},
		{ext_debug_utils.SeverityInfo, logrus.InfoLevel},
		{ext_debug_utils.SeverityVerbose, logrus.DebugLevel},
	}

	for _, tt := range tests {
		if got := Level(tt.severity); got != tt.want {
			t.Errorf("severity %v: expected %v, got %v", tt.severity, tt.want, got)
		}
	}
}

func TestCallbackLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewMessenger(logger)

	keepGoing := m.callback(ext_debug_utils.TypeValidation, ext_debug_utils.SeverityWarning, &ext_debug_utils.DebugUtilsMessengerCallbackData{
		Message: "vkCreateSwapchainKHR: imageExtent out of range",
	})
	if keepGoing {
		t.Error("callback must not abort the triggering call")
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level, got %v", entry.Level)
	}
	if entry.Message != "vkCreateSwapchainKHR: imageExtent out of range" {
		t.Errorf("unexpected message %q", entry.Message)
	}
}
