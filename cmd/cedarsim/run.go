// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/config"
	"github.com/db47h/cedarsim/netlist"
)

func newRunCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Simulate a netlist and print wire changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return runFile(cmd.OutOrStdout(), cfg, args[0], steps)
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 100, "maximum number of steps")
	return cmd
}

func runFile(w io.Writer, cfg *config.Config, name string, steps int) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "run")
	}
	defer f.Close()
	d, err := netlist.Decode(f)
	if err != nil {
		return errors.Wrap(err, name)
	}
	c := cs.NewCircuit(cat, cs.WithMaxSlotEvents(cfg.MaxSlotEvents), cs.WithLogger(cfg.Logger(os.Stderr)))
	if err = netlist.Apply(c, d); err != nil {
		return errors.Wrap(err, name)
	}
	for i := 0; i < steps && c.Pending() > 0; i++ {
		t := c.Time()
		r, err := c.Step()
		for _, id := range r.Changed {
			v, _ := c.WireState(id)
			fmt.Fprintf(w, "%d\t%d\t%s\n", t, id, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
