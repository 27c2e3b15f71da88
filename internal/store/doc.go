// Package store defines the persistence interfaces consumed by the
// service and task layers, along with shared database plumbing: the DBTX
// abstraction, transaction helper, and the sentinel error family returned
// by all implementations.
package store
