package audit

import (
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/avrhub/avr-hub-go/internal/db"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	dbPair, err := db.Init(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { dbPair.Close() })

	return NewRepository(dbPair)
}

func TestRepository_InsertEvent(t *testing.T) {
	repo := setupTestDB(t)

	requestID := "req-123"
	zoneID := "1"
	command := "turn_on"
	input := WriteEventInput{
		Type:      string(EventCommandConfirmed),
		RequestID: &requestID,
		ZoneID:    &zoneID,
		Command:   &command,
		Message:   "command confirmed",
		Payload: map[string]any{
			"outcome": "confirmed",
		},
	}

	event, err := repo.InsertEvent(input)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.NotEmpty(t, event.EventID)
	require.Equal(t, string(EventCommandConfirmed), event.Type)
	require.Equal(t, EventLevelInfo, event.Level) // default level
	require.NotNil(t, event.RequestID)
	require.Equal(t, "req-123", *event.RequestID)
	require.NotNil(t, event.ZoneID)
	require.Equal(t, "1", *event.ZoneID)
	require.NotNil(t, event.Command)
	require.Equal(t, "turn_on", *event.Command)
	require.Equal(t, "command confirmed", event.Message)
	require.Equal(t, "confirmed", event.Payload["outcome"])
	require.False(t, event.Timestamp.IsZero())
}

func TestRepository_InsertEvent_WithLevel(t *testing.T) {
	repo := setupTestDB(t)

	level := EventLevelError
	input := WriteEventInput{
		Type:    string(EventCommandExhausted),
		Level:   &level,
		Message: "command exhausted retry budget",
	}

	event, err := repo.InsertEvent(input)
	require.NoError(t, err)
	require.Equal(t, EventLevelError, event.Level)
}

func TestRepository_InsertEvent_NilPayload(t *testing.T) {
	repo := setupTestDB(t)

	input := WriteEventInput{
		Type:    string(EventSystemStartup),
		Message: "No payload",
	}

	event, err := repo.InsertEvent(input)
	require.NoError(t, err)
	require.NotNil(t, event.Payload)
	require.Empty(t, event.Payload)
}

func TestRepository_GetEvent_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	event, err := repo.GetEvent("missing-id")
	require.NoError(t, err)
	require.Nil(t, event)
}

func TestRepository_QueryEvents_Filters(t *testing.T) {
	repo := setupTestDB(t)

	zone1 := "1"
	zone2 := "2"
	cmdOn := "turn_on"
	warn := EventLevelWarn

	mustInsert := func(input WriteEventInput) {
		_, err := repo.InsertEvent(input)
		require.NoError(t, err)
	}

	mustInsert(WriteEventInput{Type: string(EventCommandConfirmed), ZoneID: &zone1, Command: &cmdOn, Message: "a"})
	mustInsert(WriteEventInput{Type: string(EventCommandRejected), Level: &warn, ZoneID: &zone1, Message: "b"})
	mustInsert(WriteEventInput{Type: string(EventCommandConfirmed), ZoneID: &zone2, Message: "c"})

	events, total, err := repo.QueryEvents(EventQueryFilters{ZoneID: &zone1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, events, 2)

	confirmed := string(EventCommandConfirmed)
	events, total, err = repo.QueryEvents(EventQueryFilters{Type: &confirmed})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	events, total, err = repo.QueryEvents(EventQueryFilters{Level: &warn})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "b", events[0].Message)

	events, total, err = repo.QueryEvents(EventQueryFilters{ZoneID: &zone1, Command: &cmdOn})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "a", events[0].Message)
}

func TestRepository_QueryEvents_Pagination(t *testing.T) {
	repo := setupTestDB(t)

	for i := 0; i < 5; i++ {
		_, err := repo.InsertEvent(WriteEventInput{
			Type:    string(EventSystemStartup),
			Message: "event",
		})
		require.NoError(t, err)
	}

	events, total, err := repo.QueryEvents(EventQueryFilters{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, events, 2)

	events, total, err = repo.QueryEvents(EventQueryFilters{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, events, 1)
}

func TestRepository_QueryEvents_EmptyResult(t *testing.T) {
	repo := setupTestDB(t)

	events, total, err := repo.QueryEvents(EventQueryFilters{})
	require.NoError(t, err)
	require.Equal(t, 0, total)
	require.NotNil(t, events)
	require.Empty(t, events)
}

func TestRepository_PruneOldEvents(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.InsertEvent(WriteEventInput{
		Type:    string(EventSystemStartup),
		Message: "recent",
	})
	require.NoError(t, err)

	// Backdate one event past the retention window.
	old := time.Now().UTC().AddDate(0, 0, -120).Format(time.RFC3339)
	_, err = repo.writer.Exec(`
		INSERT INTO audit_events (event_id, timestamp, type, level, message, payload)
		VALUES ('old-event', ?, 'SYSTEM_STARTUP', 'INFO', 'old', '{}')
	`, old)
	require.NoError(t, err)

	deleted, err := repo.PruneOldEvents(90)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, total, err := repo.QueryEvents(EventQueryFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}
