package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"vetward/internal/config"
	"vetward/internal/database"
	"vetward/internal/domain"
	"vetward/internal/modules/rooms"
	"vetward/internal/pkg/logger"
	"vetward/internal/pkg/metrics"
	"vetward/internal/repository"
)

type env struct {
	db  *gorm.DB
	log zerolog.Logger
}

// open loads config, applies the --database-url override and connects.
func open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dsn := cfg.DatabaseURL
	if v, _ := cmd.Flags().GetString("database-url"); v != "" {
		dsn = v
	}
	l := logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &env{db: db, log: l}, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ward tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			if err := repository.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			e.log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo rooms, owners, pets and doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			if err := repository.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			created, err := seed(cmd.Context(), e.db, e.log)
			if err != nil {
				return err
			}
			e.log.Info().Int("rooms_created", created).Msg("seed completed")
			return nil
		},
	}
}

func roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms with their occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			typ, _ := cmd.Flags().GetString("type")
			available, _ := cmd.Flags().GetBool("available")

			svc := rooms.NewService(repository.NewStore(e.db), metrics.Nop{}, e.log)
			var list []domain.Room
			if available {
				list, err = svc.FindAvailable(cmd.Context(), typ)
			} else {
				list, err = svc.List(cmd.Context(), typ)
			}
			if err != nil {
				return err
			}
			return printRooms(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().String("type", "all", "Room type filter (ICU, General, Isolation, Surgery)")
	cmd.Flags().Bool("available", false, "Only rooms with a free slot")
	return cmd
}

func occupancyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "occupancy",
		Short: "Show occupied and total slots per room type",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			svc := rooms.NewService(repository.NewStore(e.db), metrics.Nop{}, e.log)
			summary, err := svc.Occupancy(cmd.Context())
			if err != nil {
				return err
			}
			return printOccupancy(cmd.OutOrStdout(), summary)
		},
	}
}

func printRooms(out io.Writer, list []domain.Room) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTYPE\tOCCUPIED\tCAPACITY\tDAILY RATE")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Number, r.Type, r.Occupied, r.Capacity, r.DailyRate.StringFixed(2))
	}
	return w.Flush()
}

func printOccupancy(out io.Writer, summary []rooms.TypeOccupancy) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tROOMS\tOCCUPIED\tCAPACITY")
	for _, t := range summary {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t.Type, t.Rooms, t.Occupied, t.Capacity)
	}
	return w.Flush()
}

var demoRooms = []rooms.CreateRoomRequest{
	{Number: "ICU-01", Type: "ICU", Capacity: 1, DailyRate: decimal.RequireFromString("250.00")},
	{Number: "ICU-02", Type: "ICU", Capacity: 1, DailyRate: decimal.RequireFromString("250.00")},
	{Number: "GEN-01", Type: "General", Capacity: 4, DailyRate: decimal.RequireFromString("80.00")},
	{Number: "GEN-02", Type: "General", Capacity: 4, DailyRate: decimal.RequireFromString("80.00")},
	{Number: "ISO-01", Type: "Isolation", Capacity: 2, DailyRate: decimal.RequireFromString("150.00")},
	{Number: "SUR-01", Type: "Surgery", Capacity: 1, DailyRate: decimal.RequireFromString("400.00")},
}

var demoOwners = []domain.Owner{
	{ID: "own-001", Name: "Anna Lee", Phone: "+1-555-0101", Email: "anna.lee@example.com"},
	{ID: "own-002", Name: "Marcus Grant", Phone: "+1-555-0102"},
	{ID: "own-003", Name: "Priya Nair", Phone: "+1-555-0103", Email: "priya@example.com"},
}

var demoPets = []domain.Pet{
	{ID: "pet-001", OwnerID: "own-001", Name: "Buddy", Species: "Dog", Breed: "Beagle"},
	{ID: "pet-002", OwnerID: "own-001", Name: "Misty", Species: "Cat", Breed: "Siamese"},
	{ID: "pet-003", OwnerID: "own-002", Name: "Rex", Species: "Dog", Breed: "German Shepherd"},
	{ID: "pet-004", OwnerID: "own-003", Name: "Kiwi", Species: "Bird", Breed: "Budgerigar"},
}

var demoDoctors = []domain.Doctor{
	{ID: "doc-001", Name: "Dr. Elena Ortiz", Specialization: "Surgery"},
	{ID: "doc-002", Name: "Dr. Sam Abe", Specialization: "Internal Medicine"},
	{ID: "doc-003", Name: "Dr. Lucy Hart", Specialization: "Exotics"},
}

// seed is idempotent: directory rows are upserted and existing room numbers are skipped.
func seed(ctx context.Context, db *gorm.DB, log zerolog.Logger) (int, error) {
	dir := repository.NewDirectoryRepository(db)
	for _, o := range demoOwners {
		if err := dir.UpsertOwner(ctx, o); err != nil {
			return 0, fmt.Errorf("owner %s: %w", o.ID, err)
		}
	}
	for _, p := range demoPets {
		if err := dir.UpsertPet(ctx, p); err != nil {
			return 0, fmt.Errorf("pet %s: %w", p.ID, err)
		}
	}
	for _, d := range demoDoctors {
		if err := dir.UpsertDoctor(ctx, d); err != nil {
			return 0, fmt.Errorf("doctor %s: %w", d.ID, err)
		}
	}

	svc := rooms.NewService(repository.NewStore(db), metrics.Nop{}, log)
	created := 0
	for _, r := range demoRooms {
		if _, err := svc.Get(ctx, r.Number); err == nil {
			continue
		}
		if _, err := svc.Create(ctx, r); err != nil {
			return created, fmt.Errorf("room %s: %w", r.Number, err)
		}
		created++
	}
	return created, nil
}
