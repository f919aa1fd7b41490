// Package pg bootstraps the Postgres layer backing the notification inbox:
// a pgx/v5 connection pool with startup retry, goose schema migrations from
// an embedded filesystem, and a readiness probe.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrationsFS, cfg, log); err != nil {
//		return err
//	}
//
// Error helpers such as IsNotFoundError and IsDuplicateKeyError classify
// pgx errors without leaking driver types into business logic.
package pg
