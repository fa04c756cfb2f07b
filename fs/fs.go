package appfs

import "embed"

// FS holds the SQL migrations applied by the admin CLI.
//go:embed migrations
var FS embed.FS
