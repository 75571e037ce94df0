// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model carries ToDomain/FromDomain
// mappers and repositories only ever hand domain types back to callers.
//
//   - base.go: shared id/timestamp/version columns
//   - rental.go: locations, tenants, tenant_locations
//   - payment.go: transactions, tenant_payments
package models
