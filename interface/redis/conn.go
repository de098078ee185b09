// Package redis defines the narrow connection identity THE CORE needs
// when logging or labeling metrics for a client.
//
// The teacher's Connection interface additionally carried password
// authentication, pub/sub subscriptions, MULTI/EXEC transaction state,
// multi-database selection, and replication role — all Non-goals of
// this system (§1: authentication, replication, and clustering are
// explicitly out of scope; there is exactly one keyspace, not 16
// selectable databases). Those methods are dropped rather than adapted;
// see DESIGN.md.
package redis

// Connection is the identity a tcp.client exposes to the rest of the
// system: just enough to write a reply, close the socket, and label a
// log line or metric with where the peer is.
type Connection interface {
	// Write writes data to the connection and returns the number of
	// bytes written and any error.
	Write([]byte) (int, error)

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote network address of the connection,
	// e.g. "127.0.0.1:51234".
	RemoteAddr() string
}
