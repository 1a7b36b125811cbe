package db

// schemaSQL creates the hub's tables. CREATE IF NOT EXISTS keeps startup
// idempotent for existing databases.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_events (
    event_id   TEXT PRIMARY KEY,
    timestamp  TEXT NOT NULL,
    type       TEXT NOT NULL,
    level      TEXT NOT NULL DEFAULT 'INFO',
    request_id TEXT,
    zone_id    TEXT,
    command    TEXT,
    message    TEXT NOT NULL,
    payload    TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(type);
CREATE INDEX IF NOT EXISTS idx_audit_events_zone ON audit_events(zone_id) WHERE zone_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_audit_events_request ON audit_events(request_id) WHERE request_id IS NOT NULL;
`
