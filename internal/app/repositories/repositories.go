// Package repositories implements pgx-backed data access for the tenant
// databases. Each repository is exposed as an interface so service tests can
// substitute in-memory fakes.
//
// Convention: GetByID returns (nil, nil) for an absent row; mutating
// operations report absence through their boolean or error results so the
// service layer can raise explicit NotFound errors.
package repositories

import "github.com/Masterminds/squirrel"

// psql builds queries with PostgreSQL placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
