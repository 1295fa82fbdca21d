package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/pretty"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			key := args[0]
			if v, ok := store.Get(key); ok {
				fmt.Printf("key=%s, found=true, value=%s\n", key, jsonv.Marshal(v))
			} else {
				fmt.Printf("key=%s, found=false\n", key)
			}
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key (JSON literal, anything else is stored as string)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			store.Set(args[0], jsonv.ParseLiteral(args[1]))
			return save(store)
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if !store.Has(args[0]) {
				fmt.Printf("key=%s, found=false\n", args[0])
				return nil
			}
			store.Delete(args[0])
			return save(store)
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", args[0], store.Has(args[0]))
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			for _, key := range store.Keys() {
				fmt.Println(key)
			}
			return nil
		},
	}
	entriesCmd = &cobra.Command{
		Use:   "entries",
		Short: "Lists all key value pairs as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			t := table.New("Key", "Type", "Value").WithWriter(os.Stdout)
			for _, e := range store.Entries() {
				t.AddRow(e.Key, e.Value.Kind(), jsonv.Marshal(e.Value))
			}
			t.Print()
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the number of keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			fmt.Println(store.Size())
			return nil
		},
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Prints the record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			out := []byte(store.String())
			if !viper.GetBool("raw") {
				out = pretty.Pretty(out)
			} else {
				out = append(out, '\n')
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
	slotsCmd = &cobra.Command{
		Use:   "slots",
		Short: "Shows how the record is laid out in the slots of the host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := recordstore.Inspect(viper.GetString("id"), host, recordOptions()...)
			if err != nil {
				return err
			}
			if !info.Present {
				fmt.Printf("record %s does not exist on host %s\n", info.ID, host.ID())
				return nil
			}
			fmt.Printf("record %s: %d fragments, %d bytes\n", info.ID, info.Count, info.Bytes)
			t := table.New("Slot", "Bytes").WithWriter(os.Stdout)
			for i, size := range info.Sizes {
				t.AddRow(fmt.Sprintf("%s:%s_%d", info.Namespace, info.ID, i), strconv.Itoa(size))
			}
			t.Print()
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists",
		Short: "Checks if the record has been saved on the host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := recordstore.Exists(viper.GetString("id"), host, recordOptions()...)
			if err != nil {
				return err
			}
			fmt.Printf("id=%s, exists=%t\n", viper.GetString("id"), ok)
			return nil
		},
	}
	dropCmd = &cobra.Command{
		Use:   "drop",
		Short: "Removes every slot of the record, works on corrupted records too",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := recordstore.Delete(viper.GetString("id"), host, recordOptions()...)
			if err != nil {
				return err
			}
			fmt.Printf("id=%s, dropped=%t\n", viper.GetString("id"), ok)
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all keys and the slots of the record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("cleared successfully")
			return nil
		},
	}
	hostsCmd = &cobra.Command{
		Use:   "hosts",
		Short: "Lists the host objects of the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := backend.Hosts()
			if err != nil {
				return err
			}
			t := table.New("Host", "Record").WithWriter(os.Stdout)
			for _, id := range ids {
				h, err := backend.Host(id)
				if err != nil {
					return err
				}
				ok, err := recordstore.Exists(viper.GetString("id"), h, recordOptions()...)
				if err != nil {
					return err
				}
				t.AddRow(id, ok)
			}
			t.Print()
			return nil
		},
	}
)

func init() {
	dumpCmd.Flags().Bool("raw", false, "Print the record exactly as stored")
}

// save writes the record and reports the time it took
func save(store *recordstore.Store) error {
	elapsed, err := store.Save()
	if err != nil {
		return err
	}
	info, err := store.Slots()
	if err != nil {
		return err
	}
	fmt.Printf("saved %d fragments (%d bytes) in %s\n", info.Count, info.Bytes, elapsed)
	return nil
}
