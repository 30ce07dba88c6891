// Package cli provides the interactive admin console.
//
// It wires configuration, local session storage, the API client and one
// command group per screen into a REPL. Typical flow: restore the saved
// session or prompt for credentials, start the idle watcher, then execute
// user commands until exit.
//
// Every command maps to one session capability that is checked before it
// runs, so "help" lists only what the signed-in role may do. Forms go
// through a controller.Controller and print its banner; the most recent
// banner also shows in the prompt until it expires.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
