package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/creditguardian/internal/generator"
)

func newDatagenCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		out    string
		stdout bool
	)
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Write a synthetic account dataset as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			dataset, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if stdout {
				return generator.EncodeDataset(cmd.OutOrStdout(), dataset)
			}
			if err := generator.WriteDataset(dataset, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d accounts into %s\n", len(dataset.Accounts), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.NumAccounts, "accounts", cfg.NumAccounts, "number of accounts to generate")
	flags.IntVar(&cfg.MaxCardsPerAccount, "max-cards", cfg.MaxCardsPerAccount, "maximum cards per account")
	flags.IntVar(&cfg.NotificationsPerAccount, "notifications", cfg.NotificationsPerAccount, "notifications per account")
	flags.IntVar(&cfg.DepositsPerAccount, "deposits", cfg.DepositsPerAccount, "income deposits per account")
	flags.Float64Var(&cfg.HighUtilizationChance, "high-utilization-chance", cfg.HighUtilizationChance, "probability a card runs near its limit")
	flags.StringVar(&cfg.DemoUserID, "demo-user", "USR-DEMO", "ID given to the first account; empty disables")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for deterministic generation")
	flags.StringVar(&out, "out", "seed-data/dataset.yaml", "output file")
	flags.BoolVar(&stdout, "stdout", false, "write the dataset to stdout instead of a file")
	return cmd
}
