package db

import (
	"github.com/ValentinKolb/dynDB/cmd/util"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	backend *util.Backend
	host    slot.Host

	// RecordCommands represents the record store command group
	RecordCommands = &cobra.Command{
		Use:   "db",
		Short: "Inspect and edit the records of host objects",
		Long: `Inspect and edit the records of host objects.

Every command works on one record (--id) of one host object (--host). Mutating
commands save the record right away.`,
		PersistentPreRunE:  setupBackend,
		PersistentPostRunE: closeBackend,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupBackendFlags(RecordCommands)

	key := "host"
	RecordCommands.PersistentFlags().String(key, slot.WorldID, util.WrapString("Id of the host object"))

	key = "id"
	RecordCommands.PersistentFlags().String(key, "default", util.WrapString("Id of the record"))

	key = "namespace"
	RecordCommands.PersistentFlags().String(key, slot.DefaultNamespace, util.WrapString("Prefix of the slot names of the record"))

	// Add subcommands
	RecordCommands.AddCommand(getCmd)
	RecordCommands.AddCommand(setCmd)
	RecordCommands.AddCommand(delCmd)
	RecordCommands.AddCommand(hasCmd)
	RecordCommands.AddCommand(keysCmd)
	RecordCommands.AddCommand(entriesCmd)
	RecordCommands.AddCommand(sizeCmd)
	RecordCommands.AddCommand(dumpCmd)
	RecordCommands.AddCommand(slotsCmd)
	RecordCommands.AddCommand(existsCmd)
	RecordCommands.AddCommand(dropCmd)
	RecordCommands.AddCommand(clearCmd)
	RecordCommands.AddCommand(hostsCmd)
	RecordCommands.AddCommand(perfTestCmd)
}

// setupBackend opens the configured backend and the selected host object
func setupBackend(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := util.InitLogging(); err != nil {
		return err
	}

	var err error
	backend, err = util.OpenConfiguredBackend()
	if err != nil {
		return err
	}

	host, err = backend.Host(viper.GetString("host"))
	return err
}

// closeBackend releases the backend, the memory backend writes its snapshot here
func closeBackend(_ *cobra.Command, _ []string) error {
	if backend == nil {
		return nil
	}
	return backend.Close()
}

// recordOptions returns the store options selected by the flags
func recordOptions() []recordstore.Option {
	return []recordstore.Option{recordstore.WithNamespace(viper.GetString("namespace"))}
}

// openStore loads the selected record
func openStore() (*recordstore.Store, error) {
	return recordstore.Open(viper.GetString("id"), host, recordOptions()...)
}
