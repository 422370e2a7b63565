// Package remotefs defines a read-only filesystem adapter contract for remote
// resource trees, along with a lookup mux that maps URL schemes to adapter
// implementations.
//
// The [Adapter] interface mirrors a classic storage-adapter capability set:
// metadata queries (existence, size, timestamp, MIME type, visibility),
// buffered and streamed reads, and the full family of mutating operations.
// Read-only implementations embed [ReadOnly] to reject the mutating ones.
//
// See the httpadapter package for an implementation backed by a plain HTTP
// server, and the adapterfs package for exposing any Adapter as an [io/fs.FS].
package remotefs
