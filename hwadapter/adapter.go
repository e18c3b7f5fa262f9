// Package hwadapter defines the narrow interface the scheduler drives to
// perform the actual hardware work behind an operation. camguard does not
// prescribe how an adapter talks to a camera; it only prescribes the five
// asynchronous operations and the cancellation contract every adapter must
// honour.
package hwadapter

import (
	"context"

	"github.com/camguard/camguard"
)

// Adapter is the abstract operation interface for one bound resource.
// Every method accepts a cancellation-aware context and is expected to
// return promptly once ctx is done, whether by completing or by
// observing the cancellation. A method may block for as long as the
// underlying hardware call takes; the scheduler is the only caller and
// always invokes these off the intake path.
type Adapter interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	UpdateConfiguration(ctx context.Context, cfg camguard.CameraConfiguration) error
}

// Factory produces one Adapter per ResourceId. The scheduler and the host
// façade never construct adapters directly; they always go through a
// Factory so a test double can be substituted uniformly.
type Factory interface {
	NewAdapter(id camguard.ResourceId) (Adapter, error)
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc func(id camguard.ResourceId) (Adapter, error)

func (f FactoryFunc) NewAdapter(id camguard.ResourceId) (Adapter, error) {
	return f(id)
}
