// Package domain defines the core business entities of the interview
// preparation service and their validation rules. Entities are plain
// structs with constructor functions that enforce invariants at creation
// time; persistence concerns live in the store packages.
package domain
