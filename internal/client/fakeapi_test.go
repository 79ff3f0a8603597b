package client_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gravadigital/simradar/internal/client"
	"github.com/gravadigital/simradar/internal/fakeapi"
	"github.com/gravadigital/simradar/internal/locale"
)

func TestClient_AgainstFakeBackend(t *testing.T) {
	store := fakeapi.NewStore()
	user := store.AddUser("Ada", "Lovelace")
	ev := store.AddEvent("Yoga", "morning")
	group := store.AddGroup("Staff")
	require.NoError(t, store.AddMember(group, user))

	srv := fakeapi.NewTestServer(store)
	defer srv.Close()

	ctx := context.Background()
	for _, l := range locale.All() {
		t.Run(l.Tag.String(), func(t *testing.T) {
			c := client.New(srv.URL, client.WithLocale(l))

			ack, err := c.AddUserEvent(ctx, ev, user)
			require.NoError(t, err)
			assert.Equal(t, fakeapi.MsgAdded, ack.Message)

			n, err := c.ParticipantCount(ctx, ev)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			ok, err := c.ParticipationStatus(ctx, ev, user)
			require.NoError(t, err)
			assert.True(t, ok)

			ack, err = c.DeleteUserEvent(ctx, ev, user)
			require.NoError(t, err)
			assert.Equal(t, fakeapi.MsgDeleted, ack.Message)

			ok, err = c.ParticipationStatus(ctx, ev, user)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestClient_ExportAgainstFakeBackend(t *testing.T) {
	store := fakeapi.NewStore()
	user := store.AddUser("Ada", "Lovelace")
	ev := store.AddEvent("Yoga", "morning")
	_, _ = store.Register(ev, user)

	srv := fakeapi.NewTestServer(store)
	defer srv.Close()

	dl, err := client.New(srv.URL).ExportParticipants(context.Background(), ev)
	require.NoError(t, err)
	defer dl.Body.Close()

	assert.Equal(t, "participants_event_2.xlsx", dl.Filename)
	assert.Equal(t, client.XLSXContentType, dl.ContentType)

	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell, err := f.GetCellValue(f.GetSheetName(0), "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", cell)
}

func TestClient_DeletesAgainstFakeBackend(t *testing.T) {
	store := fakeapi.NewStore()
	user := store.AddUser("Ada", "Lovelace")
	ev := store.AddEvent("Yoga", "morning")
	group := store.AddGroup("Staff")
	require.NoError(t, store.AddMember(group, user))

	srv := fakeapi.NewTestServer(store)
	defer srv.Close()
	c := client.New(srv.URL)
	ctx := context.Background()

	ack, err := c.DeleteUserGroup(ctx, user, group)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.MsgDeleted, ack.Message)
	assert.Empty(t, store.Members(group))

	_, err = c.DeleteGroup(ctx, group)
	require.NoError(t, err)
	assert.False(t, store.HasGroup(group))

	_, err = c.DeleteEvent(ctx, ev)
	require.NoError(t, err)
	assert.False(t, store.HasEvent(ev))

	ack, err = c.DeleteUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.MsgDeleted, ack.Message)

	ack, err = c.DeleteEvent(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.MsgNotFound, ack.Message)
}
