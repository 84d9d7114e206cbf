package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/storage/postgres"
)

type InitCmd struct {
	Force bool `help:"Back up and delete the existing local database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	path := ctx.Local.GetConfigPath()
	if c.Force {
		if postgres.IsConnString(path) {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		if _, err := os.Stat(path); err == nil {
			saved, err := backup.NewManager(path).Create()
			if err != nil {
				return fmt.Errorf("failed to back up existing database: %w", err)
			}
			ctx.Printf("Backed up existing database to: %s\n", saved)
			// close first to release the file
			if err := ctx.Local.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Local.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, path)
	return nil
}
