package database

// sqlc/schema.sql is derived from the migrations, and the sqlc package from
// schema.sql plus sqlc/queries. After adding a migration or query run:
//
//	go generate ./internal/database

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"
