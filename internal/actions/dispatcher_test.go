package actions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/simradar/internal/client"
	"github.com/gravadigital/simradar/internal/domain/membership"
	"github.com/gravadigital/simradar/internal/export"
	"github.com/gravadigital/simradar/internal/locale"
)

// fakeBackend records calls and answers from fixed values
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	count    int
	countErr error
	status   bool
	ackErr   error
	download *client.Download
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) ack(call string) (*membership.Ack, error) {
	f.record(call)
	if f.ackErr != nil {
		return nil, f.ackErr
	}
	return &membership.Ack{Message: call + " ok"}, nil
}

func (f *fakeBackend) ParticipantCount(context.Context, int64) (int, error) {
	f.record("count")
	return f.count, f.countErr
}

func (f *fakeBackend) ParticipationStatus(context.Context, int64, int64) (bool, error) {
	f.record("status")
	return f.status, nil
}

func (f *fakeBackend) AddUserEvent(context.Context, int64, int64) (*membership.Ack, error) {
	return f.ack("add_user_event")
}

func (f *fakeBackend) DeleteUserEvent(context.Context, int64, int64) (*membership.Ack, error) {
	return f.ack("delete_user_event")
}

func (f *fakeBackend) DeleteEvent(context.Context, int64) (*membership.Ack, error) {
	return f.ack("delete_event")
}

func (f *fakeBackend) DeleteUserGroup(context.Context, int64, int64) (*membership.Ack, error) {
	return f.ack("delete_user_group")
}

func (f *fakeBackend) DeleteGroup(context.Context, int64) (*membership.Ack, error) {
	return f.ack("delete_group")
}

func (f *fakeBackend) DeleteUser(context.Context, int64) (*membership.Ack, error) {
	return f.ack("delete_user")
}

func (f *fakeBackend) ExportParticipants(context.Context, int64) (*client.Download, error) {
	f.record("export")
	if f.download == nil {
		return nil, client.NewError(client.ErrorAPI, "forbidden")
	}
	return f.download, nil
}

func (f *fakeBackend) ExportParticipantsByTitle(context.Context, string) (*client.Download, error) {
	f.record("export_by_title")
	if f.download == nil {
		return nil, client.NewError(client.ErrorAPI, "forbidden")
	}
	return f.download, nil
}

type recordingNotifier struct {
	alerts []string
}

func (n *recordingNotifier) Alert(_ context.Context, message string) {
	n.alerts = append(n.alerts, message)
}

type answer struct {
	ok       bool
	err      error
	question string
}

func (a *answer) Confirm(_ context.Context, message string) (bool, error) {
	a.question = message
	return a.ok, a.err
}

type countingRejections map[string]int

func (c countingRejections) Rejected(reason string) { c[reason]++ }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRegister_AddsWhenRoomLeft(t *testing.T) {
	backend := &fakeBackend{count: 4}
	var reloaded []string
	d := New(backend,
		WithLogger(quietLogger()),
		WithOnSuccess(func(_ context.Context, action string, _ *membership.Ack) { reloaded = append(reloaded, action) }),
	)

	ack, err := d.Register(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, "add_user_event ok", ack.Message)
	assert.Equal(t, []string{"count", "add_user_event"}, backend.calls)
	assert.Equal(t, []string{"register"}, reloaded)
}

func TestRegister_ShortCircuitsWhenFull(t *testing.T) {
	for _, l := range locale.All() {
		t.Run(l.Tag.String(), func(t *testing.T) {
			backend := &fakeBackend{count: 5}
			notifier := &recordingNotifier{}
			rejections := countingRejections{}
			reloaded := false
			d := New(backend,
				WithLocale(l),
				WithLogger(quietLogger()),
				WithNotifier(notifier),
				WithRejections(rejections),
				WithOnSuccess(func(context.Context, string, *membership.Ack) { reloaded = true }),
			)

			_, err := d.Register(context.Background(), 1, 2, 5)
			assert.ErrorIs(t, err, ErrEventFull)
			assert.Equal(t, []string{"count"}, backend.calls, "no add request")
			assert.Equal(t, []string{l.Messages.EventFull}, notifier.alerts)
			assert.Equal(t, 1, rejections["event_full"])
			assert.False(t, reloaded)
		})
	}
}

func TestRegister_ZeroCapacity(t *testing.T) {
	backend := &fakeBackend{count: 0}
	d := New(backend, WithLogger(quietLogger()), WithNotifier(&recordingNotifier{}))

	_, err := d.Register(context.Background(), 1, 2, 0)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestRegister_CountFailureStops(t *testing.T) {
	backend := &fakeBackend{countErr: client.NewError(client.ErrorNetwork, "down")}
	var buf bytes.Buffer
	d := New(backend, WithLogger(log.New(&buf)))

	_, err := d.Register(context.Background(), 1, 2, 5)
	assert.True(t, client.IsNetworkError(err))
	assert.Equal(t, []string{"count"}, backend.calls)
	assert.Contains(t, buf.String(), "Error:")
}

func TestRegister_NegativeCapacityIsFull(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &recordingNotifier{}
	d := New(backend, WithLogger(quietLogger()), WithNotifier(notifier))

	_, err := d.Register(context.Background(), 1, 2, -1)
	assert.ErrorIs(t, err, ErrEventFull)
	assert.Equal(t, []string{"count"}, backend.calls, "count is still asked, add is not")
	assert.Equal(t, []string{locale.English().Messages.EventFull}, notifier.alerts)
}

func TestUnregister(t *testing.T) {
	backend := &fakeBackend{}
	var buf bytes.Buffer
	reloaded := false
	d := New(backend,
		WithLogger(log.New(&buf)),
		WithOnSuccess(func(context.Context, string, *membership.Ack) { reloaded = true }),
	)

	_, err := d.Unregister(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete_user_event"}, backend.calls)
	assert.True(t, reloaded)
	assert.Contains(t, buf.String(), "Server response:")
}

func TestUnregister_FailureSkipsReload(t *testing.T) {
	backend := &fakeBackend{ackErr: errors.New("boom")}
	reloaded := false
	d := New(backend,
		WithLogger(quietLogger()),
		WithOnSuccess(func(context.Context, string, *membership.Ack) { reloaded = true }),
	)

	_, err := d.Unregister(context.Background(), 1, 2)
	assert.EqualError(t, err, "unregister: boom")
	assert.False(t, reloaded)
}

func TestDestructiveActions_Confirmation(t *testing.T) {
	actions := []struct {
		name     string
		call     string
		question string
		run      func(d *Dispatcher) error
	}{
		{"delete event", "delete_event", locale.English().Messages.ConfirmDeleteEvent, func(d *Dispatcher) error {
			_, err := d.DeleteEvent(context.Background(), 1)
			return err
		}},
		{"remove member", "delete_user_group", locale.English().Messages.ConfirmRemoveMember, func(d *Dispatcher) error {
			_, err := d.RemoveMember(context.Background(), 1, 2)
			return err
		}},
		{"delete group", "delete_group", locale.English().Messages.ConfirmDeleteGroup, func(d *Dispatcher) error {
			_, err := d.DeleteGroup(context.Background(), 2)
			return err
		}},
		{"delete user", "delete_user", locale.English().Messages.ConfirmDeleteUser, func(d *Dispatcher) error {
			_, err := d.DeleteUser(context.Background(), 1)
			return err
		}},
	}

	for _, a := range actions {
		t.Run(a.name+" accepted", func(t *testing.T) {
			backend := &fakeBackend{}
			prompt := &answer{ok: true}
			d := New(backend, WithLogger(quietLogger()), WithPrompter(prompt))

			require.NoError(t, a.run(d))
			assert.Equal(t, a.question, prompt.question)
			assert.Equal(t, []string{a.call}, backend.calls)
		})

		t.Run(a.name+" declined", func(t *testing.T) {
			backend := &fakeBackend{}
			rejections := countingRejections{}
			d := New(backend, WithLogger(quietLogger()), WithPrompter(&answer{ok: false}), WithRejections(rejections))

			assert.ErrorIs(t, a.run(d), ErrDeclined)
			assert.Empty(t, backend.calls, "declined action sends nothing")
			assert.Equal(t, 1, rejections["declined"])
		})

		t.Run(a.name+" spanish never asks", func(t *testing.T) {
			backend := &fakeBackend{}
			prompt := &answer{ok: false}
			d := New(backend, WithLogger(quietLogger()), WithLocale(locale.Spanish()), WithPrompter(prompt))

			require.NoError(t, a.run(d))
			assert.Empty(t, prompt.question)
			assert.Equal(t, []string{a.call}, backend.calls)
		})
	}
}

type spanishBackend struct{ fakeBackend }

func (*spanishBackend) Locale() locale.Locale { return locale.Spanish() }

func TestNew_TakesBackendLocale(t *testing.T) {
	backend := &spanishBackend{}
	prompt := &answer{ok: false}
	d := New(backend, WithLogger(quietLogger()), WithPrompter(prompt))

	_, err := d.DeleteEvent(context.Background(), 1)
	require.NoError(t, err, "spanish pages never ask")
	assert.Empty(t, prompt.question)
	assert.Equal(t, []string{"delete_event"}, backend.calls)

	d = New(backend, WithLogger(quietLogger()), WithPrompter(prompt), WithLocale(locale.English()))
	_, err = d.DeleteEvent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDeclined, "an explicit locale wins")
}

func TestDestructiveActions_PromptError(t *testing.T) {
	backend := &fakeBackend{}
	d := New(backend, WithLogger(quietLogger()), WithPrompter(&answer{err: io.ErrUnexpectedEOF}))

	_, err := d.DeleteGroup(context.Background(), 1)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Empty(t, backend.calls)
}

func TestQueries(t *testing.T) {
	backend := &fakeBackend{count: 3, status: true}
	d := New(backend, WithLogger(quietLogger()))

	n, err := d.ParticipantCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := d.ParticipationStatus(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExportParticipants(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{download: &client.Download{
		Filename:    "participants_event_4.xlsx",
		ContentType: client.XLSXContentType,
		Size:        5,
		Body:        io.NopCloser(strings.NewReader("sheet")),
	}}
	d := New(backend, WithLogger(quietLogger()), WithSink(export.NewFileSink(dir)))

	location, err := d.ExportParticipants(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "participants_event_4.xlsx"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(data))
}

func TestExportByTitle_Failure(t *testing.T) {
	d := New(&fakeBackend{}, WithLogger(quietLogger()), WithSink(export.NewFileSink(t.TempDir())))

	_, err := d.ExportByTitle(context.Background(), "Yoga")
	assert.True(t, client.IsAPIError(err))
}
