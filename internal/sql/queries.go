package sql

import "embed"

// Migrations holds the reference-schema DDL, applied in filename order.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/fee_row.sql
var FeeRow string

//go:embed queries/latest_year.sql
var LatestYear string

//go:embed queries/locality_by_zip.sql
var LocalityByZIP string

//go:embed queries/locality_by_state.sql
var LocalityByState string
