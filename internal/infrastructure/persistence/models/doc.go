// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations, table mappings and indexes
// 3. ToDomain/FromDomain mappers convert between the two
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: base persistence models (BaseModel, OrgAggregateModel)
// - property.go: properties, units, expenses, maintenance requests
// - tenancy.go: tenants
// - payment.go: payments, rent reminders, bulk payment batches
// - history.go: append-only unit history and tenant movements
// - audit.go, notification.go: fan-out targets
// - outbox.go: outbox model for fan-out task delivery
package models
