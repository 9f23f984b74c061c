/*
Package session serializes access to stored engine snapshots.

A Manager wraps a SnapshotStore. Operations on the same snapshot id run one
at a time within the process, and across processes too when a distributed
Locker is configured. Per-id locks are reference counted and dropped once
no caller holds them.
*/
package session
