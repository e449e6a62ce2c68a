package types

// Migration is a single schema change, its SQL must contain both the Down and the Up
// sections, in that order, separated by the "-- +migrate Up" marker
type Migration struct {
	ID  string
	SQL string
}
