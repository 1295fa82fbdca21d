package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dynDB/cmd/chat"
	"github.com/ValentinKolb/dynDB/cmd/db"
	"github.com/ValentinKolb/dynDB/cmd/serve"
	"github.com/ValentinKolb/dynDB/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dyndb",
		Short: "JSON records on size limited host slots",
		Long: fmt.Sprintf(`dynDB (v%s)

Stores JSON records across the small, size limited slots of game host objects
(worlds, entities, items) and serves host objects to remote clients.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dynDB",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dynDB v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(db.RecordCommands)
	RootCmd.AddCommand(chat.ChatCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (http, tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
