package cli

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mrlokans/accesslearn/internal/config"
	"github.com/mrlokans/accesslearn/internal/database"
	"github.com/mrlokans/accesslearn/internal/database/profiles"
)

// PruneProfilesCommand deletes device profiles, with their preferences and
// module progress, that have not been seen within the retention window.
type PruneProfilesCommand struct {
	DatabasePath string
	Retention    time.Duration
	DryRun       bool

	out io.Writer
}

// NewPruneProfilesCommand uses the configured database path and retention as
// flag defaults.
func NewPruneProfilesCommand(cfg *config.Config) *PruneProfilesCommand {
	return &PruneProfilesCommand{
		DatabasePath: cfg.Database.Path,
		Retention:    cfg.Profiles.Retention,
		out:          os.Stdout,
	}
}

func (cmd *PruneProfilesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("prune-profiles", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the database file")
	fs.DurationVar(&cmd.Retention, "retention", cmd.Retention, "Remove profiles not seen for longer than this")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "List stale profiles without deleting them")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s prune-profiles [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove idle device profiles with their accessibility settings and module progress.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s prune-profiles -retention 720h\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s prune-profiles -db ./accesslearn.db -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Retention <= 0 {
		return fmt.Errorf("retention must be positive, got %s", cmd.Retention)
	}

	return nil
}

func (cmd *PruneProfilesCommand) Run() error {
	if _, err := os.Stat(cmd.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("database %s does not exist", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := profiles.NewRepository(db.DB)

	if cmd.DryRun {
		ids, err := repo.ListStale(time.Now().Add(-cmd.Retention))
		if err != nil {
			return fmt.Errorf("failed to list stale profiles: %w", err)
		}
		fmt.Fprintf(cmd.out, "%d profiles idle for more than %s\n", len(ids), cmd.Retention)
		for _, id := range ids {
			fmt.Fprintf(cmd.out, "  %s\n", id)
		}
		return nil
	}

	log.Printf("Profiles: pruning profiles idle for more than %s", cmd.Retention)
	result, err := repo.Prune(cmd.Retention)
	if err != nil {
		return err
	}

	remaining, err := repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}

	fmt.Fprintf(cmd.out, "Removed %d profiles (%d settings, %d progress rows), %d remain\n",
		result.Profiles, result.Settings, result.Progress, remaining)
	return nil
}
