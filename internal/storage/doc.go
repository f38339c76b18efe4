// Package storage persists the pin task set and the operator audit log.
//
// Task persistence is snapshot-only: SaveTasks replaces the whole set on
// every call. That makes every mutation O(n) writes but leaves no room
// for diffing bugs; both drivers make the swap atomic (a transaction for
// sqlite, tmp-file rename for the file driver) so a crash mid-save
// cannot lose the previous snapshot.
package storage
