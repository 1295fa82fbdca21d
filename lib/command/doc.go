// Package command implements chat commands on top of record stores.
//
// A chat line starting with the configured prefix (default "!") is a command:
// the first word after the prefix names the command, the rest of the line is split
// into arguments by ParseArguments and handed to the command positionally.
//
// Key Components:
//
//   - Builder: assembles a Command from a description, its arguments and a callback
//   - Registry: an explicit table of commands in registration order
//   - Dispatcher: the glue between chat events and commands. It keeps the command
//     prefix in a settings record store and answers unknown commands with a message
//     instead of failing.
//
// Built-in commands (help, pronouns, prefix) are added with RegisterBuiltins.
package command
