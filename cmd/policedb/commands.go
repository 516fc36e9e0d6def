package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-flyweight/carregistry"
)

func newDemoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Register one known and one new car and list the cache before and after",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if err := a.listFlyweights(out); err != nil {
				return err
			}
			fmt.Fprintln(out)

			cars := []carregistry.Car{
				{Plates: "CL234IR", Owner: "James Doe", Brand: "BMW", Model: "M5", Color: "red"},
				{Plates: "CL234IR", Owner: "James Doe", Brand: "BMW", Model: "X1", Color: "red"},
			}
			for _, car := range cars {
				record, err := a.registry.Register(cmd.Context(), car)
				if err != nil {
					return err
				}
				rendered, err := a.registry.Render(record)
				if err != nil {
					return err
				}
				if err := a.writeOutput(out, rendered); err != nil {
					return err
				}
			}
			fmt.Fprintln(out)

			return a.listFlyweights(out)
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var car carregistry.Car

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a car and print its rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.registry.Register(cmd.Context(), car)
			if err != nil {
				return err
			}
			rendered, err := a.registry.Render(record)
			if err != nil {
				return err
			}
			return a.writeOutput(cmd.OutOrStdout(), rendered)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&car.Plates, "plates", "", "License plates")
	flags.StringVar(&car.Owner, "owner", "", "Owner name")
	flags.StringVar(&car.Brand, "brand", "", "Car brand")
	flags.StringVar(&car.Model, "model", "", "Car model")
	flags.StringVar(&car.Color, "color", "", "Car color")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var showRecords bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the flyweights held by the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.listFlyweights(out); err != nil {
				return err
			}
			if !showRecords {
				return nil
			}

			records := a.registry.Records()
			fmt.Fprintf(out, "\nRegistry holds %d cars:\n", len(records))
			for _, record := range records {
				fmt.Fprintf(out, "%s %s -> %s\n", record.Plates, record.Owner, record.Flyweight.Key())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRecords, "records", false, "Also list cars registered from the manifest")
	return cmd
}
