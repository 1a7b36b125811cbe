package events

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrhub/avr-hub-go/internal/avr"
)

type stubSession struct{}

func (s *stubSession) IssueCommand(_ context.Context, _ avr.Command) (bool, error) {
	return true, nil
}

func (s *stubSession) FetchReports(_ context.Context) (map[avr.ZoneID]avr.Report, error) {
	return map[avr.ZoneID]avr.Report{}, nil
}

func (s *stubSession) Available() bool { return true }

func boolPtr(v bool) *bool { return &v }

func newTestHub(t *testing.T) (*Hub, *avr.StateStore) {
	t.Helper()
	session := &stubSession{}
	store := avr.NewStateStore([]avr.ZoneID{avr.ZoneMain, avr.Zone2})
	exec := avr.NewExecutor(nil, 1, time.Millisecond)
	recon := avr.NewReconciler(session, store, nil)
	ctrl := avr.NewController(session, store, exec, recon, avr.Options{}, nil)
	return NewHub(ctrl, nil, store, nil), store
}

func TestHub_SnapshotCoversAllZones(t *testing.T) {
	hub, store := newTestHub(t)
	store.Apply(avr.ZoneMain, avr.Report{Power: boolPtr(true)})

	msg := hub.snapshot()
	assert.Equal(t, "zones", msg.Type)
	require.Len(t, msg.Zones, 2)
	assert.Equal(t, "1", msg.Zones[0].ID)
	require.NotNil(t, msg.Zones[0].Power)
	assert.True(t, *msg.Zones[0].Power)
}

func TestHub_StreamPushesInitialAndChangedState(t *testing.T) {
	hub, store := newTestHub(t)
	go hub.Run()
	defer hub.Close()

	router := chi.NewRouter()
	RegisterRoutes(router, hub)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/zones/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Initial snapshot arrives without any change.
	var initial StateMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "zones", initial.Type)
	require.Len(t, initial.Zones, 2)
	assert.Nil(t, initial.Zones[0].Power)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// A store change pushes a fresh snapshot.
	store.Apply(avr.ZoneMain, avr.Report{Power: boolPtr(true)})

	var update StateMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&update))
	require.Len(t, update.Zones, 2)
	require.NotNil(t, update.Zones[0].Power)
	assert.True(t, *update.Zones[0].Power)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, _ := newTestHub(t)
	go hub.Run()

	router := chi.NewRouter()
	RegisterRoutes(router, hub)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/zones/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.ClientCount())

	// The client observes the close once the buffered snapshot drains.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var discard StateMessage
	for {
		if err := conn.ReadJSON(&discard); err != nil {
			break
		}
	}
}
