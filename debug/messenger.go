// Package debug forwards validation-layer messages to the application log.
package debug

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

// ErrNotInitialized is returned when the messenger entry points were never loaded
var ErrNotInitialized = errors.New("debug utils entry points were called before they were loaded")

// Messenger owns the debug-utils extension driver for one instance. The zero
// value and a nil *Messenger are both unloaded.
type Messenger struct {
	log logrus.FieldLogger

	driver    ext_debug_utils.ExtensionDriver
	messenger ext_debug_utils.DebugUtilsMessenger
}

func NewMessenger(log logrus.FieldLogger) *Messenger {
	return &Messenger{log: log}
}

// CreateInfo is chained into instance creation as well, so instance
// creation and destruction are validated too.
func (m *Messenger) CreateInfo() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityVerbose | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    m.callback,
	}
}

// Load resolves the extension entry points from the instance
func (m *Messenger) Load(instance core1_0.CoreInstanceDriver) {
	m.driver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(instance)
}

func (m *Messenger) Loaded() bool {
	return m != nil && m.driver != nil
}

func (m *Messenger) Create() error {
	if !m.Loaded() {
		return ErrNotInitialized
	}

	messenger, _, err := m.driver.CreateDebugUtilsMessenger(nil, m.CreateInfo())
	if err != nil {
		return errors.Wrap(err, "debug: could not create messenger")
	}
	m.messenger = messenger
	return nil
}

func (m *Messenger) Destroy() error {
	if !m.Loaded() {
		return ErrNotInitialized
	}

	if m.messenger.Initialized() {
		m.driver.DestroyDebugUtilsMessenger(m.messenger, nil)
		m.messenger = ext_debug_utils.DebugUtilsMessenger{}
	}
	return nil
}

func (m *Messenger) callback(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	m.log.WithFields(logrus.Fields{
		"type":     msgType.String(),
		"severity": severity.String(),
	}).Log(Level(severity), data.Message)
	return false
}

// Level maps the most severe bit of a validation message onto a log level
func Level(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) logrus.Level {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return logrus.ErrorLevel
	case severity&ext_debug_utils.SeverityWarning != 0:
		return logrus.WarnLevel
	case severity&ext_debug_utils.SeverityInfo != 0:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
