package command

import (
	"strings"

	"github.com/pkg/errors"
)

// Registry maps command names to commands and remembers the registration order.
// It is filled once at startup and read afterwards.
type Registry struct {
	names    []string
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Names must be unique, non-empty and free of spaces.
func (r *Registry) Register(name string, cmd Command) error {
	if name == "" || strings.ContainsRune(name, ' ') {
		return errors.Errorf("invalid command name %q", name)
	}
	if _, ok := r.commands[name]; ok {
		return errors.Errorf("command %q is already registered", name)
	}
	if cmd.Callback == nil {
		return errors.Errorf("command %q has no callback", name)
	}
	r.names = append(r.names, name)
	r.commands[name] = cmd
	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns all command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
