package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/dental-clinic-desk/internal/config"
	"github.com/iliyamo/dental-clinic-desk/internal/database"
	"github.com/iliyamo/dental-clinic-desk/internal/logging"
	"github.com/iliyamo/dental-clinic-desk/internal/queue"
	"github.com/iliyamo/dental-clinic-desk/internal/recommend"
)

func consumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Append encounter outcome events to the reconciliation log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			qcfg := config.LoadQueueConfig()
			if qcfg.URL == "" {
				return errors.New("RABBITMQ_URL (or AMQP_URL) is not set")
			}
			log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
			c := &queue.Consumer{URL: qcfg.URL, Queue: qcfg.Queue, LogPath: qcfg.LogPath, Log: log}
			log.Info().Str("queue", qcfg.Queue).Str("path", qcfg.LogPath).Msg("consumer starting")
			err := c.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.Timezone))
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()
			n, err := database.EnsureSchema(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%d statements)\n", n)
			return nil
		},
	}
}

func recommendCmd() *cobra.Command {
	var (
		age    int
		reason string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the intake recommendation for an age and visit reason",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := recommend.Recommend(age, reason)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", -1, "patient age in years")
	cmd.Flags().StringVar(&reason, "reason", "", "visit reason as told by the patient")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func printPlan(w io.Writer, p recommend.Plan) {
	fmt.Fprintf(w, "Age group:   %s (%d)\n", p.AgeGroup, p.Age)
	fmt.Fprintf(w, "Reason:      %s\n", p.Reason)
	fmt.Fprintf(w, "Recommended: %s\n", p.RecommendedTreatment)
	fmt.Fprintf(w, "Notes:       %s\n", p.Notes)
}
