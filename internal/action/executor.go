package action

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tharos-ai/superintendent-go/internal/device"
	"github.com/tharos-ai/superintendent-go/internal/logger"
)

// Media deep links. The web fallback is assumed universally openable.
const (
	spotifyLaunchURI    = "spotify:"
	youtubeLaunchURI    = "vnd.youtube://"
	youtubeMusicWebBase = "https://music.youtube.com"
	youtubeSearchWeb    = "https://www.youtube.com/results?search_query="
)

// Executor dispatches device-action requests to the capability
// providers. Execute never returns an error: every fault, expected or
// not, becomes a failure Outcome, so a device-layer problem can never
// abort the chat turn that triggered it.
type Executor struct {
	caps device.Capabilities
}

// NewExecutor creates an executor over the given capability set.
func NewExecutor(caps device.Capabilities) *Executor {
	return &Executor{caps: caps}
}

// Execute performs the request. It may block on OS permission prompts or
// app hand-offs; cancel via ctx is the caller's only recourse.
func (e *Executor) Execute(ctx context.Context, req Request) Outcome {
	logger.L.Debug("executing device action", "kind", req.Kind)
	switch req.Kind {
	case KindSMS:
		return e.executeSMS(ctx, req.SMS)
	case KindCall:
		return e.executeCall(ctx, req.Call)
	case KindContacts:
		return e.executeContacts(ctx)
	case KindCamera:
		return e.executeCamera(ctx)
	case KindMusic:
		return e.executeMusic(ctx, req.Music)
	case KindOpenApp:
		return e.executeOpenApp(ctx, req.OpenApp)
	default:
		// KindNone included: the session never dispatches it, this is a
		// defensive default only.
		return Outcome{Succeeded: false, Message: "Unknown action type"}
	}
}

func (e *Executor) executeSMS(ctx context.Context, p *SMSParams) Outcome {
	if !e.caps.SMS.Available(ctx) {
		return Outcome{Succeeded: false, Message: "SMS is not available on this device"}
	}
	if p == nil || p.PhoneNumber == "" {
		return Outcome{Succeeded: false, Message: "Phone number is required to send an SMS"}
	}
	if err := e.caps.SMS.Compose(ctx, p.PhoneNumber, p.Message); err != nil {
		return failure(err)
	}
	// Success means the composer was opened, not that the user sent it.
	return Outcome{Succeeded: true, Message: fmt.Sprintf("SMS composer opened for %s", p.PhoneNumber)}
}

func (e *Executor) executeCall(ctx context.Context, p *CallParams) Outcome {
	if p == nil || p.PhoneNumber == "" {
		return Outcome{Succeeded: false, Message: "Phone number is required to place a call"}
	}
	uri := "tel:" + p.PhoneNumber
	if !e.caps.Opener.CanOpen(ctx, uri) {
		return Outcome{Succeeded: false, Message: "Calling is not available on this device"}
	}
	if err := e.caps.Opener.Open(ctx, uri); err != nil {
		return failure(err)
	}
	return Outcome{Succeeded: true, Message: fmt.Sprintf("Calling %s", p.PhoneNumber)}
}

func (e *Executor) executeContacts(ctx context.Context) Outcome {
	granted, err := e.caps.Contacts.RequestPermission(ctx)
	if err != nil {
		return failure(err)
	}
	if !granted {
		return Outcome{Succeeded: false, Message: "Contacts permission denied"}
	}
	contacts, err := e.caps.Contacts.List(ctx)
	if err != nil {
		return failure(err)
	}
	if len(contacts) == 0 {
		return Outcome{Succeeded: true, Message: "No contacts found"}
	}
	return Outcome{Succeeded: true, Message: formatContacts(contacts)}
}

// formatContacts lists the first 5 entries but reports the full count.
func formatContacts(contacts []device.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d contacts:", len(contacts))
	shown := contacts
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for i, c := range shown {
		phone := c.Phone
		if phone == "" {
			phone = "No phone"
		}
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, c.Name, phone)
	}
	return b.String()
}

func (e *Executor) executeCamera(ctx context.Context) Outcome {
	granted, err := e.caps.Camera.RequestPermission(ctx)
	if err != nil {
		return failure(err)
	}
	if !granted {
		return Outcome{Succeeded: false, Message: "Camera permission denied. Please enable camera access in settings"}
	}
	// Capture is a separate flow; granting permission is the whole action.
	return Outcome{Succeeded: true, Message: "Camera is ready"}
}

func (e *Executor) executeMusic(ctx context.Context, p *MusicParams) Outcome {
	var app, query string
	if p != nil {
		app, query = p.App, p.Query
	}

	uri, label := musicURI(app, query)
	if !e.caps.Opener.CanOpen(ctx, uri) {
		// Web search fallback instead of failing outright.
		uri = youtubeSearchWeb + url.QueryEscape(query)
		label = "YouTube"
	}
	if err := e.caps.Opener.Open(ctx, uri); err != nil {
		return failure(err)
	}
	if query != "" {
		return Outcome{Succeeded: true, Message: fmt.Sprintf("Playing %s on %s", query, label)}
	}
	return Outcome{Succeeded: true, Message: fmt.Sprintf("Opened %s", label)}
}

// musicURI resolves the deep link for an optional app hint and query.
func musicURI(app, query string) (uri, label string) {
	hint := strings.ToLower(app)
	switch {
	case strings.Contains(hint, "spotify"):
		if query == "" {
			return spotifyLaunchURI, "Spotify"
		}
		return "spotify:search:" + url.QueryEscape(query), "Spotify"
	case strings.Contains(hint, "youtube"):
		if query == "" {
			return youtubeLaunchURI, "YouTube"
		}
		return youtubeLaunchURI + "results?search_query=" + url.QueryEscape(query), "YouTube"
	default:
		if query == "" {
			return youtubeMusicWebBase, "YouTube Music"
		}
		return youtubeMusicWebBase + "/search?q=" + url.QueryEscape(query), "YouTube Music"
	}
}

func (e *Executor) executeOpenApp(ctx context.Context, p *OpenAppParams) Outcome {
	if p == nil || p.URI == "" {
		return Outcome{Succeeded: false, Message: "No app URI provided"}
	}
	if !e.caps.Opener.CanOpen(ctx, p.URI) {
		return Outcome{Succeeded: false, Message: fmt.Sprintf("Unable to open %s", p.URI)}
	}
	if err := e.caps.Opener.Open(ctx, p.URI); err != nil {
		return failure(err)
	}
	return Outcome{Succeeded: true, Message: fmt.Sprintf("Opened %s", p.URI)}
}

// failure converts an unexpected device-layer error into the generic
// failure outcome, keeping the underlying detail.
func failure(err error) Outcome {
	logger.L.Warn("device action failed", "error", err)
	return Outcome{Succeeded: false, Message: "Action failed", ErrorDetail: err.Error()}
}
