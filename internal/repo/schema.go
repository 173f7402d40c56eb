package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema — DDL таблиц runs и run_stages. Идемпотентна.
const Schema = `
DO $$ BEGIN
	CREATE TYPE run_status AS ENUM ('PENDING', 'RUNNING', 'SUCCEEDED', 'FAILED');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS runs (
	id           uuid PRIMARY KEY,
	status       run_status  NOT NULL,
	spec         jsonb       NOT NULL,
	work_dir     text,
	results      jsonb,
	failed_stage text,
	started_at   timestamptz,
	finished_at  timestamptz,
	error        text,
	created_at   timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_pending_idx ON runs (created_at) WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS run_stages (
	id          uuid PRIMARY KEY,
	run_id      uuid NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	stage       text NOT NULL,
	status      text NOT NULL,
	command     text,
	input_file  text,
	output_file text,
	started_at  timestamptz,
	finished_at timestamptz,
	error       text,
	created_at  timestamptz NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS run_stages_run_stage_idx ON run_stages (run_id, stage);
CREATE INDEX IF NOT EXISTS run_stages_run_idx ON run_stages (run_id, created_at);
`

// EnsureSchema создаёт таблицы, если их нет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
