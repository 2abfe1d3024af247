// Package models contains the GORM persistence models and their
// conversions to and from the domain aggregates. Models never leak out
// of the persistence layer; repositories translate at the boundary.
package models
