// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command cedarsim runs digital logic simulations.
//
//	cedarsim run circuit.yaml --steps 100
//	cedarsim serve --config cedarsim.yaml
//	cedarsim types
//	cedarsim snapshot list
//
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/catalog"
	"github.com/db47h/cedarsim/config"
	"github.com/db47h/cedarsim/gatelib"
)

var (
	configFile  string
	catalogFile string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cedarsim",
		Short:         "Event driven digital logic simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (default $"+config.EnvConfig+")")
	root.PersistentFlags().StringVar(&catalogFile, "catalog", "", "additional gate type catalog")
	root.AddCommand(newRunCmd(), newServeCmd(), newTypesCmd(), newSnapshotCmd())
	return root
}

// loadCatalog returns the built-in gate library, extended with the
// catalog file given on the command line or in the configuration.
//
func loadCatalog(cfg *config.Config) (*cs.Catalog, error) {
	cat := gatelib.Catalog()
	name := catalogFile
	if name == "" && cfg != nil {
		name = cfg.Catalog
	}
	if name != "" {
		if err := catalog.LoadFile(name, cat); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cedarsim:", err)
		os.Exit(1)
	}
}
