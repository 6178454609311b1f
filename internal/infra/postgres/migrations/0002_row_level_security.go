package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0002_row_level_security.sql
var rowLevelSecuritySQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, rowLevelSecuritySQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
				ALTER TABLE quiz_questions DISABLE ROW LEVEL SECURITY;
				ALTER TABLE quiz_attempts DISABLE ROW LEVEL SECURITY;
				ALTER TABLE quiz_answers DISABLE ROW LEVEL SECURITY;
				DROP FUNCTION IF EXISTS attempt_owner(uuid);
				DROP FUNCTION IF EXISTS jwt_sub();
				DROP FUNCTION IF EXISTS jwt_role()`)
			return err
		},
	)
}
