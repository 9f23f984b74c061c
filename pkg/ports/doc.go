/*
Package ports defines the driven ports engines persist through.

These interfaces decouple the runtime from storage backends, so the same
training loop can keep its snapshots in memory or in Redis.

# Key Interfaces

  - SnapshotStore: saves and loads engine state snapshots by id.
  - Locker: serializes writers of the same snapshot across processes.
*/
package ports
