// Package viewmodel sits between the presentation layer and the record
// store. It exposes list-all and get-by-id as observable LiveData, builds
// records from raw field values, and runs every write on a single
// background worker so callers never block on storage.
package viewmodel
