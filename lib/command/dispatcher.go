package command

import (
	"context"
	"strings"

	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("command")

const (
	// PrefixKey is the settings key holding the command prefix.
	PrefixKey = "command-prefix"
	// DefaultPrefix is the command prefix of a fresh world.
	DefaultPrefix = "!"
	// SettingsID is the id of the settings record on the world host.
	SettingsID = "bedrock-identity"
	// JoinGreeting is sent to every participant that joins.
	JoinGreeting = "Hi!"
)

// Dispatcher routes chat messages to commands.
type Dispatcher struct {
	Registry *Registry
	Settings *recordstore.Store // world settings, holds the command prefix
}

// NewDispatcher creates a dispatcher for the given registry and settings store.
func NewDispatcher(registry *Registry, settings *recordstore.Store) *Dispatcher {
	return &Dispatcher{Registry: registry, Settings: settings}
}

// --------------------------------------------------------------------------
// Event Hooks
// --------------------------------------------------------------------------

// Initialize runs once the world is ready: it sets the default command prefix
// if none is configured and saves the settings.
func (d *Dispatcher) Initialize() error {
	if v, ok := d.Settings.Get(PrefixKey); !ok || !isNonEmptyString(v) {
		d.Settings.Set(PrefixKey, jsonv.String(DefaultPrefix))
	}
	if _, err := d.Settings.Save(); err != nil {
		return errors.Wrap(err, "save settings")
	}
	Logger.Infof("commands ready with prefix %q", d.Prefix())
	return nil
}

// Join greets a participant that joined.
func (d *Dispatcher) Join(caller Caller) {
	caller.SendMessage(JoinGreeting)
}

// Handle processes one chat message. It reports whether the message was a command
// (and must not be shown as chat). Unknown commands and missing arguments are
// answered with a message, errors of a command are reported to the caller and returned.
func (d *Dispatcher) Handle(ctx context.Context, caller Caller, msg string) (bool, error) {
	prefix := d.Prefix()
	if !strings.HasPrefix(msg, prefix) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return true, err
	}

	name, argLine, _ := strings.Cut(strings.TrimPrefix(msg, prefix), " ")
	cmd, ok := d.Registry.Lookup(name)
	if !ok {
		Logger.Debugf("%s used unknown command %q", caller.Name(), name)
		caller.SendMessage(UnknownCommandMessage)
		return true, nil
	}

	tokens := ParseArguments(argLine)
	args := make(Args, len(cmd.Arguments))
	for i, arg := range cmd.Arguments {
		if i < len(tokens) && tokens[i] != "" {
			args[arg.Name] = tokens[i]
		}
	}
	for _, arg := range cmd.Arguments {
		if _, ok := args[arg.Name]; arg.Required && !ok {
			caller.SendMessage("§cMissing argument <" + arg.Name + ">\nUsage: " + prefix + name + " " + cmd.Usage())
			return true, nil
		}
	}

	Logger.Debugf("%s runs %s %v", caller.Name(), name, tokens)
	if err := cmd.Callback(ctx, caller, args); err != nil {
		Logger.Warningf("command %s of %s failed: %v", name, caller.Name(), err)
		caller.SendMessage("§cCommand failed: " + err.Error())
		return true, errors.Wrapf(err, "command %s", name)
	}
	return true, nil
}

// Prefix returns the configured command prefix.
func (d *Dispatcher) Prefix() string {
	if v, ok := d.Settings.Get(PrefixKey); ok && isNonEmptyString(v) {
		return string(v.(jsonv.String))
	}
	return DefaultPrefix
}

func isNonEmptyString(v jsonv.Value) bool {
	s, ok := v.(jsonv.String)
	return ok && s != ""
}
