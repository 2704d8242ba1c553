// Package models contains the GORM persistence models for the financing
// back office. Domain types carry no ORM tags; each model converts to and
// from its domain type with ToDomain and FromDomain.
//
//   - base.go: shared ID, timestamp and version columns
//   - financing.go: financing plans and instalments
//   - order.go: orders and order items
//   - payment.go: client payments and commission payouts
//   - partner.go: sellers and alliances
package models
