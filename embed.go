package folio

import "embed"

// Migrations holds the SQL schema migrations applied by NewStore.
//
//go:embed migrations/*.sql
var Migrations embed.FS
