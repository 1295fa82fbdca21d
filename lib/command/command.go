package command

import (
	"context"
	"slices"
	"strings"

	"github.com/ValentinKolb/dynDB/lib/slot"
)

const (
	// DefaultDescription is used for commands built without a description.
	DefaultDescription = "No description provided."
	// UnknownCommandMessage is sent for unknown commands and by commands without a callback.
	UnknownCommandMessage = "§cUnknown command!"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Caller is the participant that issued a command.
type Caller interface {
	// Name returns the display name of the participant.
	Name() string
	// SendMessage delivers a chat message to the participant only.
	SendMessage(msg string)
	// Host returns the host object of the participant, used for per-participant records.
	Host() slot.Host
}

// Argument describes one positional argument of a command.
type Argument struct {
	Name     string
	Required bool
}

// Args maps argument names to the supplied values. Arguments that were not
// supplied are absent.
type Args map[string]string

// Get returns the value of an argument and whether it was supplied.
func (a Args) Get(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// Callback executes a command.
type Callback func(ctx context.Context, caller Caller, args Args) error

// Command is a built command. Required arguments always precede optional ones.
type Command struct {
	Description string
	Arguments   []Argument
	Callback    Callback
}

// Usage renders the arguments as "<required> [optional]".
func (c Command) Usage() string {
	parts := make([]string, len(c.Arguments))
	for i, arg := range c.Arguments {
		if arg.Required {
			parts[i] = "<" + arg.Name + ">"
		} else {
			parts[i] = "[" + arg.Name + "]"
		}
	}
	return strings.Join(parts, " ")
}

// --------------------------------------------------------------------------
// Builder
// --------------------------------------------------------------------------

// Builder assembles a Command.
type Builder struct {
	description string
	args        []Argument
	callback    Callback
}

// NewBuilder returns a builder with the default description and a callback
// that answers with UnknownCommandMessage.
func NewBuilder() *Builder {
	return &Builder{
		description: DefaultDescription,
		callback: func(_ context.Context, caller Caller, _ Args) error {
			caller.SendMessage(UnknownCommandMessage)
			return nil
		},
	}
}

// SetDescription sets the text shown by the help command.
func (b *Builder) SetDescription(description string) *Builder {
	b.description = description
	return b
}

// SetArguments sets the arguments. Optional arguments are moved behind the
// required ones, the order within both groups is kept.
func (b *Builder) SetArguments(args ...Argument) *Builder {
	b.args = slices.Clone(args)
	slices.SortStableFunc(b.args, func(x, y Argument) int {
		switch {
		case x.Required == y.Required:
			return 0
		case x.Required:
			return -1
		default:
			return 1
		}
	})
	return b
}

// SetCallback sets the code executed by the command.
func (b *Builder) SetCallback(callback Callback) *Builder {
	b.callback = callback
	return b
}

// Build returns the command.
func (b *Builder) Build() Command {
	return Command{
		Description: b.description,
		Arguments:   slices.Clone(b.args),
		Callback:    b.callback,
	}
}
