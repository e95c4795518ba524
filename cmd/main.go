package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-scheduling/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic",
		Short:        "Clinic appointment scheduling API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if migrate {
				if err := app.Migrate(false, 0); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Serve(ctx)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Migrate(false, 0)
		},
	})

	// migrate down
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Migrate(true, steps)
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo doctors and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, _ := cmd.Flags().GetInt("doctors")
			patients, _ := cmd.Flags().GetInt("patients")
			fakerSeed, _ := cmd.Flags().GetUint64("seed")
			if fakerSeed == 0 {
				fakerSeed = uint64(time.Now().UnixNano())
			}

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Seed(cmd.Context(), doctors, patients, fakerSeed)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}

			fmt.Printf("Seeded %d doctor(s) and %d patient(s).\n", result.Doctors, result.Patients)
			return nil
		},
	}
	cmd.Flags().Int("doctors", 16, "Number of doctors to create")
	cmd.Flags().Int("patients", 50, "Number of patients to create")
	cmd.Flags().Uint64("seed", 0, "Faker seed; 0 picks one from the clock")
	return cmd
}
