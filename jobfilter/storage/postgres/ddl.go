package postgres

const ddlBase = `
CREATE TABLE IF NOT EXISTS jobfilter_meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS jobs (
  id           BIGSERIAL PRIMARY KEY,
  title        TEXT NOT NULL,
  description  TEXT,
  company_name TEXT,
  salary_min   DOUBLE PRECISION,
  salary_max   DOUBLE PRECISION,
  is_remote    BOOLEAN NOT NULL DEFAULT FALSE,
  job_type     TEXT,
  status       TEXT,
  published_at TIMESTAMPTZ,
  created_at   TIMESTAMPTZ NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
CREATE INDEX IF NOT EXISTS idx_jobs_status  ON jobs(status);

CREATE TABLE IF NOT EXISTS languages (
  id   BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS job_language (
  job_id      BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  language_id BIGINT NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
  PRIMARY KEY (job_id, language_id)
);
CREATE INDEX IF NOT EXISTS idx_job_language_language ON job_language(language_id);

CREATE TABLE IF NOT EXISTS locations (
  id      BIGSERIAL PRIMARY KEY,
  city    TEXT NOT NULL UNIQUE,
  state   TEXT,
  country TEXT
);

CREATE TABLE IF NOT EXISTS job_location (
  job_id      BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
  PRIMARY KEY (job_id, location_id)
);
CREATE INDEX IF NOT EXISTS idx_job_location_location ON job_location(location_id);

CREATE TABLE IF NOT EXISTS categories (
  id   BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS category_job (
  job_id      BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  PRIMARY KEY (job_id, category_id)
);
CREATE INDEX IF NOT EXISTS idx_category_job_category ON category_job(category_id);

CREATE TABLE IF NOT EXISTS attributes (
  id         BIGSERIAL PRIMARY KEY,
  name       TEXT NOT NULL UNIQUE,
  type       TEXT NOT NULL CHECK (type IN ('text','number','boolean','date','select')),
  options    TEXT,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS job_attribute_values (
  id           BIGSERIAL PRIMARY KEY,
  job_id       BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  attribute_id BIGINT NOT NULL REFERENCES attributes(id) ON DELETE CASCADE,
  value        TEXT,
  created_at   TIMESTAMPTZ NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL,
  UNIQUE (job_id, attribute_id)
);
CREATE INDEX IF NOT EXISTS idx_attr_values_lookup ON job_attribute_values(attribute_id, value);
`
