// Package repositories holds the typed data access layer. The tenant
// registry talks to its table directly; every other repository goes through
// the tabular store adapter and is scoped by the caller's Handle.
package repositories
