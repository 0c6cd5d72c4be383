package ledger

const schema = `
-- Issued payloads
CREATE TABLE IF NOT EXISTS payloads (
    id TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    ts INTEGER NOT NULL,
    meta TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    bits INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payloads_fingerprint ON payloads(fingerprint);
CREATE INDEX IF NOT EXISTS idx_payloads_ts ON payloads(ts);
`
