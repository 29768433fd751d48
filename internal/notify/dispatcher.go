package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/venuora/venue-reservation/internal/model"
)

// Sender delivers the external message for an event (the "delivery of
// record" channel).  Implementations must honour the context deadline;
// a timeout is reported as an ordinary error.
type Sender interface {
	Send(ctx context.Context, to Recipient, subject, body string) error
}

// Store persists the in-app notification record (the redundant,
// best-effort channel).
type Store interface {
	Create(ctx context.Context, n *model.Notification) error
}

// ChannelResult captures the outcome of one dispatch channel.  Err
// holds the failure reason as text so the result stays a plain value.
type ChannelResult struct {
	OK  bool   `json:"ok"`
	Err string `json:"error,omitempty"`
}

// Result is the composite outcome of dispatching one event to one
// recipient over both channels.  OverallSuccess mirrors the message
// channel alone: the persisted record is redundancy, so its failure
// is recorded but does not flip the overall outcome.
type Result struct {
	Message        ChannelResult `json:"message"`
	Record         ChannelResult `json:"record"`
	NotificationID string        `json:"notification_id,omitempty"`
	OverallSuccess bool          `json:"overall_success"`
}

// Dispatcher sends one logical notification through both channels.
// All collaborators are injected at construction; there is no global
// instance.  Dispatch never panics and never returns an error: every
// failure is captured in the Result.
type Dispatcher struct {
	sender   Sender
	store    Store
	renderer Renderer
	timeout  time.Duration
	log      zerolog.Logger
}

// DefaultTimeout bounds each channel when no explicit timeout is given.
const DefaultTimeout = 5 * time.Second

// NewDispatcher constructs a Dispatcher.  sender and store must be
// non-nil; renderer falls back to PlainTextRenderer when nil, and a
// non-positive timeout falls back to DefaultTimeout.
func NewDispatcher(sender Sender, store Store, renderer Renderer, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if sender == nil || store == nil {
		panic("nil collaborator passed to NewDispatcher")
	}
	if renderer == nil {
		renderer = PlainTextRenderer{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		sender:   sender,
		store:    store,
		renderer: renderer,
		timeout:  timeout,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch delivers one event to one recipient.  Step 1 sends the
// external message; step 2 persists the in-app record.  Step 2 runs
// regardless of step 1's outcome: it is not a continuation gated on
// the message send.  Each step gets its own timeout, so a hung
// channel counts as a failure for that channel only.
func (d *Dispatcher) Dispatch(ctx context.Context, to Recipient, ev Event) Result {
	var res Result

	title, message, metadata, err := render(ev)
	if err != nil {
		// A malformed event can satisfy neither channel.
		d.log.Error().Err(err).Uint64("user_id", to.UserID).Str("type", string(ev.Type)).
			Msg("render failed, dropping dispatch")
		res.Message = ChannelResult{Err: err.Error()}
		res.Record = ChannelResult{Err: err.Error()}
		return res
	}

	// Step 1: external message channel.
	subject, body, rerr := d.renderer.Render(ev)
	if rerr != nil {
		res.Message = ChannelResult{Err: rerr.Error()}
	} else {
		sctx, cancel := context.WithTimeout(ctx, d.timeout)
		if serr := d.sender.Send(sctx, to, subject, body); serr != nil {
			res.Message = ChannelResult{Err: serr.Error()}
		} else {
			res.Message = ChannelResult{OK: true}
		}
		cancel()
	}
	if !res.Message.OK {
		d.log.Warn().Str("reason", res.Message.Err).Uint64("user_id", to.UserID).
			Str("type", string(ev.Type)).Msg("message channel failed")
	}

	// Step 2: persisted in-app record, attempted even after a message
	// failure so the user still sees the event in-app.
	now := time.Now().UTC()
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    to.UserID,
		Type:      ev.Type,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	if perr := d.store.Create(pctx, n); perr != nil {
		res.Record = ChannelResult{Err: perr.Error()}
		d.log.Warn().Err(perr).Uint64("user_id", to.UserID).Str("type", string(ev.Type)).
			Msg("record channel failed")
	} else {
		res.Record = ChannelResult{OK: true}
		res.NotificationID = n.ID
	}
	cancel()

	res.OverallSuccess = res.Message.OK
	return res
}
