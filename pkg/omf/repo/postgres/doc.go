// Package postgres persists the catalog in PostgreSQL.
//
// The repository expects the following schema to exist:
//
//	CREATE SCHEMA IF NOT EXISTS omf;
//
//	CREATE TABLE omf.projects (
//	    id                          UUID PRIMARY KEY,
//	    name                        TEXT NOT NULL,
//	    description                 TEXT NOT NULL DEFAULT '',
//	    author                      TEXT NOT NULL DEFAULT '',
//	    coordinate_reference_system TEXT NOT NULL DEFAULT '',
//	    status                      TEXT NOT NULL,
//	    storage_backend_name        TEXT NOT NULL DEFAULT '',
//	    object_key                  TEXT NOT NULL DEFAULT '',
//	    element_count               INTEGER NOT NULL DEFAULT 0,
//	    size_bytes                  BIGINT NOT NULL DEFAULT 0,
//	    checksum                    TEXT NOT NULL DEFAULT '',
//	    created_at                  TIMESTAMPTZ NOT NULL,
//	    updated_at                  TIMESTAMPTZ NOT NULL,
//	    deleted_at                  TIMESTAMPTZ
//	);
//
//	CREATE TABLE omf.project_elements (
//	    id              UUID PRIMARY KEY,
//	    project_id      UUID NOT NULL REFERENCES omf.projects(id) ON DELETE CASCADE,
//	    name            TEXT NOT NULL,
//	    schema          TEXT NOT NULL,
//	    attribute_count INTEGER NOT NULL DEFAULT 0,
//	    locations       JSONB NOT NULL DEFAULT '{}',
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE INDEX idx_project_elements_project ON omf.project_elements(project_id);
package postgres
