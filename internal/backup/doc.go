// Package backup reads the on-disk state of a client's most recent
// backup: whether one exists, whether it was interrupted and resumed,
// when it completed, and when the client first tried to create one.
//
// Every file format here is fixed by the burp server. The timestamp file
// holds an index and a local time with an optional UTC offset suffix;
// the backup log is gzip-compressed text scanned for an exact
// interruption marker line; the client-creation marker is a sibling
// timestamp file created lazily on first sight of a client with no
// backup yet.
//
// A Record is read-only after construction, with one exception: the lazy
// creation of the client-creation marker. That write is guarded by an
// existence check, not a lock; two simultaneous first invocations against
// the same new client can race, which is accepted under burp's
// one-invocation-at-a-time operating model.
package backup
