// Package device defines the native-capability interfaces the action
// executor dispatches through, and the providers that implement them.
package device

import (
	"context"
	"errors"
)

// Contact is one entry from the device's contact store.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SMSComposer opens the device's SMS composer. Compose returns as soon as
// the composer is invoked; it does not wait for the user to send.
type SMSComposer interface {
	Available(ctx context.Context) bool
	Compose(ctx context.Context, phoneNumber, body string) error
}

// ContactsReader gates on the contacts-read permission and lists
// contacts (name plus primary phone number).
type ContactsReader interface {
	RequestPermission(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]Contact, error)
}

// CameraGate requests camera permission. Capture itself is a separate
// flow outside the executor.
type CameraGate interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// URIOpener resolves and opens URIs: tel: for the dialer, app schemes,
// media deep links and web URLs.
type URIOpener interface {
	CanOpen(ctx context.Context, uri string) bool
	Open(ctx context.Context, uri string) error
}

// Capabilities bundles the providers the executor dispatches through.
type Capabilities struct {
	SMS      SMSComposer
	Contacts ContactsReader
	Camera   CameraGate
	Opener   URIOpener
}

// ErrUnavailable reports that no device bridge is configured for the
// requested capability.
var ErrUnavailable = errors.New("device capability unavailable")

// Unavailable is the provider used when no device bridge is configured:
// every check answers false and every invocation fails.
type Unavailable struct{}

func (Unavailable) Available(context.Context) bool { return false }

func (Unavailable) Compose(context.Context, string, string) error { return ErrUnavailable }

func (Unavailable) RequestPermission(context.Context) (bool, error) { return false, nil }

func (Unavailable) List(context.Context) ([]Contact, error) { return nil, ErrUnavailable }

func (Unavailable) CanOpen(context.Context, string) bool { return false }

func (Unavailable) Open(context.Context, string) error { return ErrUnavailable }

// None returns a capability set with nothing wired, for running without
// a device bridge.
func None() Capabilities {
	u := Unavailable{}
	return Capabilities{SMS: u, Contacts: u, Camera: u, Opener: u}
}
