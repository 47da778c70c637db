package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
	"github.com/kilianp07/sessionplanner/core/selection"
	"github.com/kilianp07/sessionplanner/core/session"
	"github.com/kilianp07/sessionplanner/infra/logger"
	"github.com/kilianp07/sessionplanner/infra/optimizer"
	"github.com/kilianp07/sessionplanner/internal/render"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Submit a form file to the optimizer and print the schedule options",
	Long: `Reads a clinician form (YAML or JSON, "-" for stdin), submits it to the
optimizer and prints the three schedule options. --select picks the active
option (1-3) and --detail prints its week.`,
	RunE: runPlan,
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List the cities known to the optimizer",
	RunE:  runCities,
}

func init() {
	planCmd.Flags().StringP("form", "f", "", "form file (required)")
	planCmd.Flags().Int("select", 1, "option to select (1-3)")
	planCmd.Flags().Bool("detail", false, "print the week of the selected option")
	planCmd.Flags().Bool("json", false, "print the view as JSON")
	_ = planCmd.MarkFlagRequired("form")
	rootCmd.AddCommand(planCmd, citiesCmd)
}

func readForm(path string, stdin io.Reader) (normalize.FormInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return normalize.FormInput{}, err
	}
	var form normalize.FormInput
	// YAML accepts JSON documents as well.
	if err := yaml.Unmarshal(data, &form); err != nil {
		return normalize.FormInput{}, fmt.Errorf("decode form: %w", err)
	}
	return form, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("form")
	form, err := readForm(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	norm, err := normalize.New(normalize.RangePolicy(cfg.Planner.RangePolicy))
	if err != nil {
		return err
	}
	deriver, err := options.NewDeriver(cfg.Planner.Options)
	if err != nil {
		return err
	}
	policy, err := selection.ParsePolicy(cfg.Planner.SelectionPolicy)
	if err != nil {
		return err
	}
	sess := session.New("cli", form, session.Config{Deriver: deriver, Selection: policy})
	sub := &session.Submitter{
		Normalizer: norm,
		Optimizer:  optimizer.New(cfg.Optimizer, logger.New("optimizer")),
		Log:        logger.New("plan"),
	}
	view, err := sub.Submit(cmd.Context(), sess, form)
	if err != nil {
		return err
	}
	if !view.Empty {
		pick, _ := cmd.Flags().GetInt("select")
		detail, _ := cmd.Flags().GetBool("detail")
		if detail {
			err = sess.Inspect(pick - 1)
		} else {
			err = sess.Select(pick - 1)
		}
		if err != nil {
			return err
		}
		view = sess.View()
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return render.View(cmd.OutOrStdout(), view)
}

func runCities(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cities := optimizer.New(cfg.Optimizer, logger.New("optimizer")).Cities(cmd.Context())
	for _, c := range cities {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}
