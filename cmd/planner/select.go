package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arimedia/mediaplanner/internal/config"
	srv "github.com/arimedia/mediaplanner/internal/server"
)

func selectCMD() *cobra.Command {
	var cfgPath string
	var briefPath string
	var audience string
	var sel = &cobra.Command{
		Use:   "select",
		Short: "Run one selection for a brief file and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			brief, err := os.ReadFile(briefPath)
			if err != nil {
				return fmt.Errorf("reading brief: %w", err)
			}

			orch, tele, err := srv.BuildOrchestrator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer tele.Shutdown()

			result, err := orch.SelectAll(cmd.Context(), string(brief), audience)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	sel.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	sel.Flags().StringVar(&briefPath, "brief", "", "path to the RFP brief text file")
	sel.Flags().StringVar(&audience, "audience", "", "optional audience context")
	_ = sel.MarkFlagRequired("brief")

	return sel
}
