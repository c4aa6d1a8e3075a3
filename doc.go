// Package sochx implements the SochX research-collaboration platform server:
// identity and session management, role-based authorization, a time-boxed
// password-recovery flow, a websocket notification channel, and the REST
// collaborators built on top of them (projects, community, resources,
// matching, admin).
//
// The package is transport-agnostic at its core: TokenService, Hub and the
// repositories have no HTTP dependencies. Fiber handlers and middleware glue
// them to the wire in the *_controller.go files and server.go.
package sochx
