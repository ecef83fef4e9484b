package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// document mirrors the documents table at the time of this migration.
type document struct {
	bun.BaseModel `bun:"table:documents"`

	Key       string `bun:",pk"`
	Data      []byte `bun:",type:bytea,notnull"`
	UpdatedAt int64  `bun:",notnull"`
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*document)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create documents table: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*document)(nil)).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop documents table: %w", err)
		}

		return nil
	})
}
