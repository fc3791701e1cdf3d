// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/db47h/cedarsim/config"
	"github.com/db47h/cedarsim/netlist"
	"github.com/db47h/cedarsim/store"
)

func openStore() (*store.Store, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	return store.Open(store.Config{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored circuit snapshots",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save NAME FILE",
			Short: "Store a netlist file under NAME",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[1])
				if err != nil {
					return errors.Wrap(err, "snapshot save")
				}
				defer f.Close()
				d, err := netlist.Decode(f)
				if err != nil {
					return errors.Wrap(err, args[1])
				}
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				return st.Save(args[0], d)
			},
		},
		&cobra.Command{
			Use:   "load NAME",
			Short: "Print a stored snapshot as a YAML netlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				d, err := st.Load(args[0])
				if err != nil {
					return err
				}
				return netlist.Encode(cmd.OutOrStdout(), d)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				names, err := st.List()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a stored snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				return st.Delete(args[0])
			},
		},
	)
	return cmd
}
