// Package models contains GORM persistence models. They are kept separate
// from domain types so the domain stays free of ORM tags; each model has
// ToDomain and a FromDomain constructor.
package models
