// Package action defines device-action requests and the executor that
// dispatches them to device capabilities.
package action

// Kind identifies a device capability to invoke.
type Kind string

const (
	KindSMS      Kind = "sms"
	KindCall     Kind = "call"
	KindContacts Kind = "contacts"
	KindCamera   Kind = "camera"
	KindMusic    Kind = "music"
	KindOpenApp  Kind = "open_app"
	// KindNone is the no-op sentinel. It must be short-circuited by the
	// caller before dispatch.
	KindNone Kind = "none"
)

// Request is a device-action request. Exactly the parameter struct
// matching Kind is set; all others are nil. KindContacts and KindCamera
// carry no parameters.
type Request struct {
	Kind    Kind
	SMS     *SMSParams
	Call    *CallParams
	Music   *MusicParams
	OpenApp *OpenAppParams
}

// SMSParams are the parameters for KindSMS. Message may be empty; an
// empty PhoneNumber means the classifier matched intent but could not
// extract a number, and the executor will reject it.
type SMSParams struct {
	PhoneNumber string
	Message     string
}

// CallParams are the parameters for KindCall.
type CallParams struct {
	PhoneNumber string
}

// MusicParams are the parameters for KindMusic. App is an optional hint
// ("spotify", "youtube"); Query is the optional search text.
type MusicParams struct {
	App   string
	Query string
}

// OpenAppParams are the parameters for KindOpenApp.
type OpenAppParams struct {
	URI string
}

// None is the canonical no-op request.
func None() Request {
	return Request{Kind: KindNone}
}

// Outcome reports the result of executing a Request. Success outcomes
// are silent from the user's point of view; failures are surfaced as a
// synthetic assistant message by the session.
type Outcome struct {
	Succeeded   bool
	Message     string
	ErrorDetail string
}
