package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hospitalcare/backend/internal/adapters/database"
	"github.com/hospitalcare/backend/internal/adapters/loaders"
	"github.com/hospitalcare/backend/internal/adapters/memory"
	"github.com/hospitalcare/backend/internal/application/services"
	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/postgres"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
	"github.com/hospitalcare/backend/pkg/config"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "recommend",
		Short:        "Recommend a doctor from a symptom selection",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().String("rules", "", "Path to a YAML department rule table (defaults to the built-in table)")
	rootCmd.PersistentFlags().Bool("in-memory", false, "Use the bundled sample roster instead of PostgreSQL")

	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(departmentsCmd())
	return rootCmd
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("onset", "", "When the symptoms started")
	cmd.Flags().String("area", "", "Body area")
	cmd.Flags().String("primary", "", "Primary symptom")
	cmd.Flags().String("secondary", "", "Secondary symptom")
	cmd.Flags().String("tertiary", "", "Tertiary symptom")
}

func selectionFromFlags(cmd *cobra.Command) entities.SymptomSelection {
	var sel entities.SymptomSelection
	sel.Onset, _ = cmd.Flags().GetString("onset")
	sel.Area, _ = cmd.Flags().GetString("area")
	sel.Primary, _ = cmd.Flags().GetString("primary")
	sel.Secondary, _ = cmd.Flags().GetString("secondary")
	sel.Tertiary, _ = cmd.Flags().GetString("tertiary")
	return sel
}

func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Print the recommended doctor for a symptom selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			repo, closeRepo, err := openRoster(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			rulesPath, _ := cmd.Flags().GetString("rules")
			resolver, err := services.NewDepartmentResolverFromFile(rulesPath)
			if err != nil {
				return err
			}

			cfg := config.RecommendationConfig{LookupTimeout: 5 * time.Second}
			service := services.NewRecommendationService(resolver, loaders.NewFromConfig(repo, cfg, nil), nil, nil)

			rec, err := service.Recommend(ctx, selectionFromFlags(cmd))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a symptom selection without looking up doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := selectionFromFlags(cmd)
			if err := sel.Validate(); err != nil {
				_ = writeJSON(cmd.OutOrStdout(), map[string]interface{}{"valid": false, "error": err.Error()})
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"valid": true})
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func departmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List the departments the rule table routes to",
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesPath, _ := cmd.Flags().GetString("rules")
			resolver, err := services.NewDepartmentResolverFromFile(rulesPath)
			if err != nil {
				return err
			}

			departments := make([]entities.Department, 0, len(resolver.Departments()))
			for _, id := range resolver.Departments() {
				departments = append(departments, entities.Department{ID: id, Name: entities.DepartmentName(id)})
			}
			return writeJSON(cmd.OutOrStdout(), departments)
		},
	}
}

// openRoster returns the sample roster with --in-memory, or the PostgreSQL
// doctor adapter configured from the environment
func openRoster(cmd *cobra.Command) (repositories.DoctorRepository, func(), error) {
	inMemory, _ := cmd.Flags().GetBool("in-memory")
	if inMemory {
		return memory.NewSampleRoster(time.Now()), func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	observability.InitLogger("recommend", cfg.Log.Env, cfg.Log.Level)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	closeFn := func() {
		if err := pgClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close PostgreSQL client")
		}
	}
	return database.NewDoctorAdapter(pgClient, database.NewAppointmentAdapter(pgClient), nil), closeFn, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
