package omf

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful when the catalog runs without downstream consumers or in tests
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// ProjectCreated does nothing and returns nil
func (n *NoopEventSink) ProjectCreated(ctx context.Context, record *ProjectRecord) error {
	return nil
}

// ProjectUpdated does nothing and returns nil
func (n *NoopEventSink) ProjectUpdated(ctx context.Context, record *ProjectRecord) error {
	return nil
}

// ProjectStored does nothing and returns nil
func (n *NoopEventSink) ProjectStored(ctx context.Context, record *ProjectRecord) error {
	return nil
}

// ProjectDeleted does nothing and returns nil
func (n *NoopEventSink) ProjectDeleted(ctx context.Context, projectID uuid.UUID) error {
	return nil
}

// Logger is the minimal logging surface the event sink needs.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggingEventSink logs catalog events through the provided Logger.
type LoggingEventSink struct {
	logger Logger
}

// NewLoggingEventSink creates an event sink that logs every event
func NewLoggingEventSink(logger Logger) EventSink {
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) ProjectCreated(ctx context.Context, record *ProjectRecord) error {
	l.logger.Printf("project created: %s (%s)", record.ID, record.Name)
	return nil
}

func (l *LoggingEventSink) ProjectUpdated(ctx context.Context, record *ProjectRecord) error {
	l.logger.Printf("project updated: %s", record.ID)
	return nil
}

func (l *LoggingEventSink) ProjectStored(ctx context.Context, record *ProjectRecord) error {
	l.logger.Printf("project stored: %s (%d elements, %d bytes)", record.ID, record.ElementCount, record.SizeBytes)
	return nil
}

func (l *LoggingEventSink) ProjectDeleted(ctx context.Context, projectID uuid.UUID) error {
	l.logger.Printf("project deleted: %s", projectID)
	return nil
}
