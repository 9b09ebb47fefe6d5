// Package auth provides username/password authentication backed by a SQL
// users table.
//
// [DatabaseProvider] implements [Provider]. It reads the session from the
// request context (see session.FromContext), stores the user ID there on a
// successful login and resolves it back to a [User] on later requests.
// Passwords are bcrypt hashes; roles are stored as a JSON array.
//
//	repo := auth.NewRepository(conn, cfg.Driver)
//	provider := auth.NewDatabaseProvider(repo, auth.WithLogger(log))
//	if _, err := provider.EnsureUsers(ctx, auth.Seed{Username: "admin", Password: "admin123", Roles: []string{auth.RoleAdmin}}); err != nil {
//		return err
//	}
//
// [Migrations] holds the goose migration creating the table; apply it with
// db.Migrate.
package auth
