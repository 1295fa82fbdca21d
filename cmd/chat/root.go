package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/ValentinKolb/dynDB/cmd/util"
	"github.com/ValentinKolb/dynDB/lib/command"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// ChatCmd represents the chat command
	ChatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Join the world as a player and run chat commands",
		Long: `Join the world as a player and run chat commands.

Every line read from stdin is sent as a chat message. Messages starting with the
command prefix of the world (default "!") run a command, all other messages are
echoed as chat. Try !help.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := util.BindCommandFlags(cmd); err != nil {
				return err
			}
			return util.InitLogging()
		},
		RunE: run,
	}

	// formatCodes matches the section sign color codes of chat messages
	formatCodes = regexp.MustCompile("§[0-9a-fk-or]")
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupBackendFlags(ChatCmd)

	key := "player"
	ChatCmd.Flags().String(key, "Steve", util.WrapString("Display name of the player"))

	key = "player-id"
	ChatCmd.Flags().String(key, "", util.WrapString("Id of the host object of the player (default: a random uuid)"))

	key = "colors"
	ChatCmd.Flags().Bool(key, false, util.WrapString("Keep the color codes of messages"))
}

// player is the participant typing on stdin
type player struct {
	name   string
	host   slot.Host
	out    io.Writer
	colors bool
}

func (p *player) Name() string {
	return p.name
}

func (p *player) SendMessage(msg string) {
	if !p.colors {
		msg = formatCodes.ReplaceAllString(msg, "")
	}
	fmt.Fprintln(p.out, msg)
}

func (p *player) Host() slot.Host {
	return p.host
}

func run(_ *cobra.Command, _ []string) error {
	backend, err := util.OpenConfiguredBackend()
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			util.Logger.Errorf("failed to close backend: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return Session(ctx, backend, os.Stdin, os.Stdout, viper.GetString("player"), viper.GetString("player-id"), viper.GetBool("colors"))
}

// Session runs a chat session of one player until in is exhausted or ctx is done
func Session(ctx context.Context, provider slot.Provider, in io.Reader, out io.Writer, name, playerID string, colors bool) error {
	world, err := provider.Host(slot.WorldID)
	if err != nil {
		return err
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}
	if playerID == slot.WorldID {
		// the identity record would share the world host with the live settings record
		return fmt.Errorf("player id %q is reserved for the world host", playerID)
	}
	playerHost, err := provider.Host(playerID)
	if err != nil {
		return err
	}

	settings, err := recordstore.Open(command.SettingsID, world)
	if err != nil {
		return fmt.Errorf("open world settings: %w", err)
	}

	dispatcher := command.NewDispatcher(command.NewRegistry(), settings)
	if err := command.RegisterBuiltins(dispatcher); err != nil {
		return err
	}
	if err := dispatcher.Initialize(); err != nil {
		return err
	}

	p := &player{name: name, host: playerHost, out: out, colors: colors}
	dispatcher.Join(p)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		msg := scanner.Text()
		if msg == "" {
			continue
		}
		handled, err := dispatcher.Handle(ctx, p, msg)
		if err != nil {
			util.Logger.Warningf("%v", err)
		}
		if !handled {
			fmt.Fprintf(out, "<%s> %s\n", name, msg)
		}
	}
	return scanner.Err()
}
