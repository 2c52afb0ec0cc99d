package testutil

import (
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/mock"
)

// MockLoggerSink records log calls so tests can assert on what was logged.
type MockLoggerSink struct {
	mock.Mock
}

// NewMockLoggerSink returns a sink that accepts every call at every level.
// Tests inspect the recorded calls with AssertCalled / Calls.
func NewMockLoggerSink() *MockLoggerSink {
	m := &MockLoggerSink{}
	m.On("Init", mock.Anything).Return()
	m.On("Enabled", mock.Anything).Return(true)
	m.On("Info", mock.Anything, mock.Anything, mock.Anything).Return()
	m.On("Error", mock.Anything, mock.Anything, mock.Anything).Return()
	m.On("WithName", mock.Anything).Return(m)
	m.On("WithValues", mock.Anything).Return(m)
	return m
}

func (m *MockLoggerSink) Logger() logr.Logger {
	return logr.New(m)
}

// Messages returns the messages of all Info and Error calls, in order.
func (m *MockLoggerSink) Messages() []string {
	var messages []string
	for _, call := range m.Calls {
		switch call.Method {
		case "Info", "Error":
			messages = append(messages, call.Arguments.String(1))
		}
	}
	return messages
}

func (m *MockLoggerSink) Enabled(level int) bool {
	args := m.Called(level)
	return args.Bool(0)
}

func (m *MockLoggerSink) Error(err error, msg string, keysAndValues ...interface{}) {
	m.Called(err, msg, keysAndValues)
}

func (m *MockLoggerSink) Info(level int, msg string, keysAndValues ...interface{}) {
	m.Called(level, msg, keysAndValues)
}

func (m *MockLoggerSink) Init(info logr.RuntimeInfo) {
	m.Called(info)
}

func (m *MockLoggerSink) WithName(name string) logr.LogSink {
	args := m.Called(name)
	return args.Get(0).(logr.LogSink)
}

func (m *MockLoggerSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	args := m.Called(keysAndValues)
	return args.Get(0).(logr.LogSink)
}

var _ logr.LogSink = (*MockLoggerSink)(nil)
