package securityevent

import "context"

// Recorder accepts security events fire-and-forget. Implementations must
// never block the caller and must swallow delivery failures; the
// sanitization path cannot be allowed to fail because its audit trail
// did.
type Recorder interface {
	Record(ctx context.Context, evt Event)
}

// Exporter delivers a single event to an external sink. Delivery errors
// are reported to the worker, which counts them but never propagates.
type Exporter interface {
	Name() string
	Handle(ctx context.Context, evt Event) error
	Close()
}

// NoopRecorder discards all events. It is the default when no sink is
// configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Event) {}
