//go:build integration

package main

import (
	"context"

	"github.com/sells-group/fit-engine/internal/audit"
)

func init() {
	newPostgresAuditStore = func(ctx context.Context, dsn string) (audit.Store, error) {
		return audit.NewPostgres(ctx, dsn)
	}
}
