package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sessionplanner/infra/logger"
	"github.com/kilianp07/sessionplanner/infra/optimizer"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve fixture schedules on the optimizer API for local runs",
	RunE:  runStub,
}

func init() {
	stubCmd.Flags().String("addr", "", "listen address (overrides stub.address)")
	stubCmd.Flags().String("fixture", "", "YAML fixture file (overrides stub.fixture_path)")
	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc := cfg.Stub
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		sc.Address = v
	}
	if v, _ := cmd.Flags().GetString("fixture"); v != "" {
		sc.FixturePath = v
	}
	fx, err := optimizer.LoadFixture(sc.FixturePath)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}
	return optimizer.NewStub(sc, fx, logger.New("stub"), nil).Start(ctx)
}
