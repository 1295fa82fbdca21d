package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/pkg/errors"
)

// IdentityID is the id of the per-participant record on the participant's host.
const IdentityID = "bedrock-identity"

// RegisterBuiltins registers help, pronouns and prefix with the registry of d.
func RegisterBuiltins(d *Dispatcher) error {
	builtins := []struct {
		name string
		cmd  Command
	}{
		{"help", helpCommand(d)},
		{"pronouns", pronounsCommand()},
		{"prefix", prefixCommand(d)},
	}
	for _, b := range builtins {
		if err := d.Registry.Register(b.name, b.cmd); err != nil {
			return err
		}
	}
	return nil
}

func helpCommand(d *Dispatcher) Command {
	return NewBuilder().
		SetDescription("Shows the command list or information about a specific command.").
		SetArguments(Argument{Name: "command", Required: false}).
		SetCallback(func(_ context.Context, caller Caller, args Args) error {
			if name, ok := args.Get("command"); ok {
				cmd, found := d.Registry.Lookup(name)
				if !found {
					caller.SendMessage(UnknownCommandMessage)
					return nil
				}
				caller.SendMessage(fmt.Sprintf("§e%s§r:\n%s\nUsage: %s%s %s", name, cmd.Description, d.Prefix(), name, cmd.Usage()))
				return nil
			}

			lines := make([]string, 0, len(d.Registry.Names()))
			for _, name := range d.Registry.Names() {
				cmd, _ := d.Registry.Lookup(name)
				lines = append(lines, fmt.Sprintf("§e%s§r: %s", name, cmd.Description))
			}
			caller.SendMessage("§eCommands:\n" + strings.Join(lines, "\n"))
			return nil
		}).
		Build()
}

func pronounsCommand() Command {
	return NewBuilder().
		SetDescription("Set your pronouns using your pronouns.page username.").
		SetArguments(Argument{Name: "pronouns", Required: true}).
		SetCallback(func(_ context.Context, caller Caller, args Args) error {
			pronouns, _ := args.Get("pronouns")

			identity, err := recordstore.Open(IdentityID, caller.Host())
			if err != nil {
				return errors.Wrapf(err, "open identity of %s", caller.Name())
			}
			identity.Set("pronouns", jsonv.String(pronouns))
			if _, err := identity.Save(); err != nil {
				return errors.Wrapf(err, "save identity of %s", caller.Name())
			}

			caller.SendMessage("§aYour pronouns are now " + pronouns + ".")
			return nil
		}).
		Build()
}

func prefixCommand(d *Dispatcher) Command {
	return NewBuilder().
		SetDescription("Changes the command prefix.").
		SetArguments(Argument{Name: "prefix", Required: true}).
		SetCallback(func(_ context.Context, caller Caller, args Args) error {
			prefix, _ := args.Get("prefix")
			if strings.ContainsAny(prefix, " \t\n") {
				caller.SendMessage("§cThe prefix must not contain spaces.")
				return nil
			}

			d.Settings.Set(PrefixKey, jsonv.String(prefix))
			if _, err := d.Settings.Save(); err != nil {
				return errors.Wrap(err, "save settings")
			}
			caller.SendMessage("§aCommand prefix set to " + prefix)
			return nil
		}).
		Build()
}
