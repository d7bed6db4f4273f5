package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMaskCmd(a *app) *cobra.Command {
	var in textInput
	cmd := &cobra.Command{
		Use:   "mask [TEXT...]",
		Short: "Print the detection service's masked version of the text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := in.read(cmd, args)
			if err != nil {
				return err
			}
			masked, err := a.controller().Mask(cmd.Context(), text)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), masked)
			return err
		},
	}
	in.register(cmd)
	return cmd
}
