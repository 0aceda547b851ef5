// Package cli provides the interactive qaforum command-line client.
//
// It wires configuration, local storage, the session store, the route guard,
// the forum services and the confirmation gate, and exposes them through a
// cobra command tree. Without a subcommand an interactive REPL starts; every
// command first asks the route guard whether its view may be entered.
//
// Key features:
//   - Register / Login / Logout (logout asks for confirmation)
//   - List, search (plain or live), show questions with their answers
//   - Ask, edit and delete questions; answer, edit and delete answers
//   - Deletes wait for an explicit "yes"
//
// See NewRootCommand and runREPL for details.
package cli
