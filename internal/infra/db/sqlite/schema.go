package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS rules_shadow (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  pattern    TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rules_live (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  pattern    TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  title      TEXT NOT NULL,
  severity   TEXT NOT NULL,
  details    TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs_log (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  job        TEXT NOT NULL,
  level      TEXT NOT NULL,
  msg        TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bounty_platforms (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  name       TEXT NOT NULL UNIQUE,
  base_url   TEXT NOT NULL DEFAULT '',
  api_key    TEXT NOT NULL DEFAULT '',
  enabled    INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bounty_targets (
  id              INTEGER PRIMARY KEY AUTOINCREMENT,
  platform_id     INTEGER NOT NULL,
  target          TEXT NOT NULL,
  scope           TEXT NOT NULL DEFAULT '',
  status          TEXT NOT NULL DEFAULT 'queued',
  last_scanned_at TEXT,
  created_at      TEXT NOT NULL,
  UNIQUE(platform_id, target)
);

CREATE TABLE IF NOT EXISTS modules_status (
  module     TEXT PRIMARY KEY,
  status     TEXT NOT NULL,
  message    TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workers (
  id             INTEGER PRIMARY KEY AUTOINCREMENT,
  name           TEXT NOT NULL UNIQUE,
  token          TEXT NOT NULL,
  status         TEXT NOT NULL DEFAULT 'online',
  last_heartbeat TEXT,
  created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_targets_status ON bounty_targets(status);
CREATE INDEX IF NOT EXISTS idx_jobs_log_job ON jobs_log(job);
`
