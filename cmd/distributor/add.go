package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert locations and phone numbers",
	}

	var country, region, province string
	location := &cobra.Command{
		Use:   "location",
		Short: "Insert a location (insertLocation)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.store().InsertLocation(cmd.Context(),
				strings.TrimSpace(country), strings.TrimSpace(region), strings.TrimSpace(province))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "location saved: %s\n", result)
			return nil
		},
	}
	location.Flags().StringVar(&country, "country", "", "country")
	location.Flags().StringVar(&region, "region", "", "region")
	location.Flags().StringVar(&province, "province", "", "province")
	for _, name := range []string{"country", "region", "province"} {
		_ = location.MarkFlagRequired(name)
	}

	phone := &cobra.Command{
		Use:   "phone NUMBER",
		Short: "Insert a phone number (insertPhoneNumber)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.store().InsertPhoneNumber(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "phone number saved: %s\n", result)
			return nil
		},
	}

	cmd.AddCommand(location, phone)
	return cmd
}
