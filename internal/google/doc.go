// Package google implements the OAuth2 credential lifecycle for the Google
// Workspace APIs: persisting tokens to a per-user credential file, building
// authenticated HTTP clients that transparently refresh and re-persist
// tokens, and running the interactive authorization-code flow against a
// loopback callback listener.
package google
