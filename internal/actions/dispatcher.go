// Package actions runs the user-facing actions of the event/group pages:
// each action is one backend round trip (two for registration) followed by a
// success hook, an alert or a logged failure.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/simradar/internal/client"
	"github.com/gravadigital/simradar/internal/domain/event"
	"github.com/gravadigital/simradar/internal/domain/membership"
	"github.com/gravadigital/simradar/internal/export"
	"github.com/gravadigital/simradar/internal/locale"
	"github.com/gravadigital/simradar/internal/logger"
)

var (
	// ErrEventFull is returned when the event already holds max participants.
	// No registration request is sent.
	ErrEventFull = errors.New("event has reached the maximum number of participants")
	// ErrDeclined is returned when the user did not confirm a destructive action.
	ErrDeclined = errors.New("action declined")
)

// Backend is the subset of *client.Client the dispatcher calls
type Backend interface {
	ParticipantCount(ctx context.Context, eventID int64) (int, error)
	ParticipationStatus(ctx context.Context, eventID, userID int64) (bool, error)
	AddUserEvent(ctx context.Context, eventID, userID int64) (*membership.Ack, error)
	DeleteUserEvent(ctx context.Context, eventID, userID int64) (*membership.Ack, error)
	DeleteEvent(ctx context.Context, eventID int64) (*membership.Ack, error)
	DeleteUserGroup(ctx context.Context, userID, groupID int64) (*membership.Ack, error)
	DeleteGroup(ctx context.Context, groupID int64) (*membership.Ack, error)
	DeleteUser(ctx context.Context, userID int64) (*membership.Ack, error)
	ExportParticipants(ctx context.Context, eventID int64) (*client.Download, error)
	ExportParticipantsByTitle(ctx context.Context, title string) (*client.Download, error)
}

// Prompter asks the user to confirm a destructive action
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Notifier shows a message the user must see, like a browser alert
type Notifier interface {
	Alert(ctx context.Context, message string)
}

// Rejections counts actions stopped before reaching the backend
type Rejections interface {
	Rejected(reason string)
}

// SuccessFunc runs after a mutating action succeeded; it takes the place of
// reloading the page
type SuccessFunc func(ctx context.Context, action string, ack *membership.Ack)

// Dispatcher runs actions against a backend. It holds no mutable state and is
// safe for concurrent use if its collaborators are.
type Dispatcher struct {
	backend    Backend
	locale     locale.Locale
	prompter   Prompter
	notifier   Notifier
	onSuccess  SuccessFunc
	sink       export.Sink
	rejections Rejections
	log        *log.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLocale sets messages and confirmation behaviour
func WithLocale(l locale.Locale) Option {
	return func(d *Dispatcher) { d.locale = l }
}

// WithPrompter sets who answers confirmations
func WithPrompter(p Prompter) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.prompter = p
		}
	}
}

// WithNotifier sets who shows alerts
func WithNotifier(n Notifier) Option {
	return func(d *Dispatcher) {
		if n != nil {
			d.notifier = n
		}
	}
}

// WithOnSuccess sets the hook run after successful mutations
func WithOnSuccess(fn SuccessFunc) Option {
	return func(d *Dispatcher) { d.onSuccess = fn }
}

// WithSink sets where exports are stored
func WithSink(s export.Sink) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sink = s
		}
	}
}

// WithRejections reports client side rejections, e.g. to metrics
func WithRejections(r Rejections) Option {
	return func(d *Dispatcher) { d.rejections = r }
}

// WithLogger replaces the component logger
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// localized is implemented by backends bound to a locale, like *client.Client
type localized interface {
	Locale() locale.Locale
}

// New creates a dispatcher. Defaults: the backend's locale (English if it has
// none), every confirmation accepted, alerts logged at warn level, exports
// written to the working directory.
func New(backend Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend:  backend,
		locale:   locale.English(),
		prompter: AutoConfirm{},
		sink:     export.NewFileSink("."),
		log:      logger.Actions(),
	}
	if l, ok := backend.(localized); ok {
		d.locale = l.Locale()
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = LogNotifier{Logger: d.log}
	}
	return d
}

// ParticipantCount returns how many users are registered for an event
func (d *Dispatcher) ParticipantCount(ctx context.Context, eventID int64) (int, error) {
	n, err := d.backend.ParticipantCount(ctx, eventID)
	if err != nil {
		return 0, d.fail("participant count", err)
	}
	return n, nil
}

// ParticipationStatus reports whether a user is registered for an event
func (d *Dispatcher) ParticipationStatus(ctx context.Context, eventID, userID int64) (bool, error) {
	ok, err := d.backend.ParticipationStatus(ctx, eventID, userID)
	if err != nil {
		return false, d.fail("participation status", err)
	}
	return ok, nil
}

// Register adds a user to an event if the event still has room. The count and
// the add are two separate requests; a concurrent registration in between is
// not detected. A capacity of zero or less is always full.
func (d *Dispatcher) Register(ctx context.Context, eventID, userID int64, maxParticipants int) (*membership.Ack, error) {
	count, err := d.backend.ParticipantCount(ctx, eventID)
	if err != nil {
		return nil, d.fail("register", err)
	}

	if !event.HasRoom(count, maxParticipants) {
		d.log.Info("Registration rejected", "event_id", eventID, "participants", count, "max", maxParticipants)
		d.reject("event_full")
		d.notifier.Alert(ctx, d.locale.Messages.EventFull)
		return nil, ErrEventFull
	}

	ack, err := d.backend.AddUserEvent(ctx, eventID, userID)
	if err != nil {
		return nil, d.fail("register", err)
	}
	return d.succeed(ctx, "register", ack), nil
}

// Unregister removes a user from an event
func (d *Dispatcher) Unregister(ctx context.Context, eventID, userID int64) (*membership.Ack, error) {
	ack, err := d.backend.DeleteUserEvent(ctx, eventID, userID)
	if err != nil {
		return nil, d.fail("unregister", err)
	}
	return d.succeed(ctx, "unregister", ack), nil
}

// DeleteEvent deletes an event after confirmation
func (d *Dispatcher) DeleteEvent(ctx context.Context, eventID int64) (*membership.Ack, error) {
	return d.confirmed(ctx, "delete event", d.locale.Messages.ConfirmDeleteEvent, func() (*membership.Ack, error) {
		return d.backend.DeleteEvent(ctx, eventID)
	})
}

// RemoveMember takes a user out of a group after confirmation
func (d *Dispatcher) RemoveMember(ctx context.Context, userID, groupID int64) (*membership.Ack, error) {
	return d.confirmed(ctx, "remove member", d.locale.Messages.ConfirmRemoveMember, func() (*membership.Ack, error) {
		return d.backend.DeleteUserGroup(ctx, userID, groupID)
	})
}

// DeleteGroup deletes a group after confirmation
func (d *Dispatcher) DeleteGroup(ctx context.Context, groupID int64) (*membership.Ack, error) {
	return d.confirmed(ctx, "delete group", d.locale.Messages.ConfirmDeleteGroup, func() (*membership.Ack, error) {
		return d.backend.DeleteGroup(ctx, groupID)
	})
}

// DeleteUser deletes a user account after confirmation
func (d *Dispatcher) DeleteUser(ctx context.Context, userID int64) (*membership.Ack, error) {
	return d.confirmed(ctx, "delete user", d.locale.Messages.ConfirmDeleteUser, func() (*membership.Ack, error) {
		return d.backend.DeleteUser(ctx, userID)
	})
}

// ExportParticipants downloads the participant sheet of an event into the sink
// and returns where it was stored
func (d *Dispatcher) ExportParticipants(ctx context.Context, eventID int64) (string, error) {
	dl, err := d.backend.ExportParticipants(ctx, eventID)
	if err != nil {
		return "", d.fail("export", err)
	}
	return d.store(ctx, "export", dl)
}

// ExportByTitle downloads the sheet covering all events with a title
func (d *Dispatcher) ExportByTitle(ctx context.Context, title string) (string, error) {
	dl, err := d.backend.ExportParticipantsByTitle(ctx, title)
	if err != nil {
		return "", d.fail("export by title", err)
	}
	return d.store(ctx, "export by title", dl)
}

func (d *Dispatcher) store(ctx context.Context, action string, dl *client.Download) (string, error) {
	defer dl.Body.Close()

	location, err := d.sink.Store(ctx, dl.Filename, dl.Body, dl.Size, dl.ContentType)
	if err != nil {
		return "", d.fail(action, err)
	}
	d.log.Info("Export saved", "file", dl.Filename, "location", location)
	return location, nil
}

func (d *Dispatcher) confirmed(ctx context.Context, action, question string, send func() (*membership.Ack, error)) (*membership.Ack, error) {
	if d.locale.Confirms {
		ok, err := d.prompter.Confirm(ctx, question)
		if err != nil {
			return nil, d.fail(action, fmt.Errorf("confirmation: %w", err))
		}
		if !ok {
			d.log.Debug("Action declined", "action", action)
			d.reject("declined")
			return nil, ErrDeclined
		}
	}

	ack, err := send()
	if err != nil {
		return nil, d.fail(action, err)
	}
	return d.succeed(ctx, action, ack), nil
}

func (d *Dispatcher) succeed(ctx context.Context, action string, ack *membership.Ack) *membership.Ack {
	d.log.Info(d.locale.Messages.ServerResponse, "action", action, "message", ack.Message)
	if d.onSuccess != nil {
		d.onSuccess(ctx, action, ack)
	}
	return ack
}

func (d *Dispatcher) fail(action string, err error) error {
	d.log.Error("Error:", "action", action, "error", err)
	return fmt.Errorf("%s: %w", action, err)
}

func (d *Dispatcher) reject(reason string) {
	if d.rejections != nil {
		d.rejections.Rejected(reason)
	}
}
