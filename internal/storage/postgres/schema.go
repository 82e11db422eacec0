// Package postgres provides a PostgreSQL implementation of storage interfaces.
package postgres

// Schema contains the SQL statements to create the Kinfolk schema for
// PostgreSQL. Every statement is idempotent so the schema can be applied on
// every open.
const Schema = `
CREATE TABLE IF NOT EXISTS people (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    gender      TEXT NOT NULL DEFAULT 'other',
    birth_date  TEXT NOT NULL DEFAULT '',
    death_date  TEXT NOT NULL DEFAULT '',
    deceased    BOOLEAN NOT NULL DEFAULT FALSE,
    birth_place TEXT NOT NULL DEFAULT '',
    occupation  TEXT NOT NULL DEFAULT '',
    notes       TEXT NOT NULL DEFAULT '',
    photo_url   TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS relationships (
    id                TEXT PRIMARY KEY,
    person_id         TEXT NOT NULL,
    related_person_id TEXT NOT NULL,
    type              TEXT NOT NULL,
    is_inferred       BOOLEAN NOT NULL DEFAULT FALSE,
    confidence        DOUBLE PRECISION NOT NULL DEFAULT 1.0,
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_relationships_person  ON relationships(person_id);
CREATE INDEX IF NOT EXISTS idx_relationships_related ON relationships(related_person_id);

CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
