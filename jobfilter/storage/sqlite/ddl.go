package sqlite

const ddlBase = `
CREATE TABLE IF NOT EXISTS jobfilter_meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS jobs (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  title        TEXT    NOT NULL,
  description  TEXT,
  company_name TEXT,
  salary_min   NUMERIC,
  salary_max   NUMERIC,
  is_remote    INTEGER NOT NULL DEFAULT 0,
  job_type     TEXT,
  status       TEXT,
  published_at TEXT,
  created_at   TEXT    NOT NULL,
  updated_at   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
CREATE INDEX IF NOT EXISTS idx_jobs_status  ON jobs(status);

CREATE TABLE IF NOT EXISTS languages (
  id   INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS job_language (
  job_id      INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  language_id INTEGER NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
  PRIMARY KEY (job_id, language_id)
);
CREATE INDEX IF NOT EXISTS idx_job_language_language ON job_language(language_id);

CREATE TABLE IF NOT EXISTS locations (
  id      INTEGER PRIMARY KEY AUTOINCREMENT,
  city    TEXT NOT NULL UNIQUE,
  state   TEXT,
  country TEXT
);

CREATE TABLE IF NOT EXISTS job_location (
  job_id      INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  location_id INTEGER NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
  PRIMARY KEY (job_id, location_id)
);
CREATE INDEX IF NOT EXISTS idx_job_location_location ON job_location(location_id);

CREATE TABLE IF NOT EXISTS categories (
  id   INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS category_job (
  job_id      INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  PRIMARY KEY (job_id, category_id)
);
CREATE INDEX IF NOT EXISTS idx_category_job_category ON category_job(category_id);

CREATE TABLE IF NOT EXISTS attributes (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  name       TEXT NOT NULL UNIQUE,
  type       TEXT NOT NULL CHECK (type IN ('text','number','boolean','date','select')),
  options    TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS job_attribute_values (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id       INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  attribute_id INTEGER NOT NULL REFERENCES attributes(id) ON DELETE CASCADE,
  value        TEXT,
  created_at   TEXT NOT NULL,
  updated_at   TEXT NOT NULL,
  UNIQUE (job_id, attribute_id)
);
CREATE INDEX IF NOT EXISTS idx_attr_values_lookup ON job_attribute_values(attribute_id, value);
`
