package database

import (
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceTracerName is the name used for the database store tracer
const ServiceTracerName = "github.com/frsworks/frs-sync/person/db"

// dbSystemPostgres tags every store span with the database system
var dbSystemPostgres = semconv.DBSystemPostgreSQL
