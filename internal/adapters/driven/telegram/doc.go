// Package telegram implements the driven.Platform port on an authorized
// MTProto user session (gotd/td).
//
// The session and the access hashes of resolved peers are persisted in a
// bolt file, so a session produced by another login tool can be reused as
// long as it is stored in the same layout. This package never performs the
// login flow: Run refuses to start when the session is not authorized.
//
// Every API call passes through a token-bucket throttle that also honours
// FLOOD_WAIT responses, and failures are translated into the domain error
// taxonomy before they leave the package.
package telegram
