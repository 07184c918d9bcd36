package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/grantdesk/internal/assistant"
	"github.com/kalambet/grantdesk/internal/config"
	"github.com/kalambet/grantdesk/internal/form"
	"github.com/kalambet/grantdesk/internal/quota"
	"github.com/kalambet/grantdesk/internal/wizard"
)

// --- wizard ---

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Fill in the application step by step",
	Long: `Fill in the application step by step.

Answers live only in memory unless --save is given. The assistant is
available from the menu after each step when an API key is configured.

Examples:
  grantdesk wizard
  grantdesk wizard --form draft.json --save draft.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formPath, _ := cmd.Flags().GetString("form")
		savePath, _ := cmd.Flags().GetString("save")

		ctl := newController()
		if formPath != "" {
			if err := loadAnswers(ctl, formPath); err != nil {
				return err
			}
		}

		tracker, store, err := openTracker()
		if err != nil {
			return err
		}
		defer store.Close()

		var asker wizard.Asker
		if a, err := newAssistant(tracker); err != nil {
			printWarning("Assistant disabled: %v", err)
		} else {
			asker = a
		}

		w := wizard.New(wizard.NewSurveyDriver(cmd.OutOrStdout()), ctl, asker)
		snap, err := w.Run(cmd.Context())
		if errors.Is(err, wizard.ErrAborted) {
			printWarning("Interrupted")
		} else if err != nil {
			return err
		}

		if savePath != "" {
			if err := saveAnswers(snap, savePath); err != nil {
				return err
			}
			printSuccess("Answers saved to %s", savePath)
		}
		return nil
	},
}

func init() {
	wizardCmd.Flags().String("form", "", "JSON file with answers to start from")
	wizardCmd.Flags().String("save", "", "write the answers to this JSON file on exit")
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a single question",
	Long: `Ask the assistant a single question about the application.

The question counts against the hourly limit only when it is answered.

Examples:
  grantdesk ask "Am I eligible if I rent?"
  grantdesk ask --step 4 --form draft.json "What counts as household income?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		step, _ := cmd.Flags().GetInt("step")
		formPath, _ := cmd.Flags().GetString("form")

		ctl := newController()
		if formPath != "" {
			if err := loadAnswers(ctl, formPath); err != nil {
				return err
			}
		}
		goToStep(ctl, step)

		tracker, store, err := openTracker()
		if err != nil {
			return err
		}
		defer store.Close()

		a, err := newAssistant(tracker)
		if err != nil {
			return err
		}

		reply, err := a.Ask(cmd.Context(), strings.Join(args, " "), ctl.Snapshot())
		if err != nil {
			return err
		}

		switch reply.Status {
		case assistant.StatusLimited:
			printWarning("%s", reply.Text)
			return nil
		case assistant.StatusFailed:
			return errors.New(reply.Text)
		}

		fmt.Fprintln(cmd.OutOrStdout(), wizard.Sanitize(reply.Text))
		printStep("%d of %d questions left this hour", reply.Quota.Remaining(), quota.MaxRequests)
		return nil
	},
}

func init() {
	askCmd.Flags().Int("step", int(form.FirstStep), "wizard step the question is about (1-5)")
	askCmd.Flags().String("form", "", "JSON file with the current answers")
}

// --- quota ---

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show how many assistant questions are left this hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, store, err := openTracker()
		if err != nil {
			return err
		}
		defer store.Close()

		now := time.Now()
		s, err := tracker.Peek(now)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  %s %d of %d\n", label("Used"), s.Count, quota.MaxRequests)
		fmt.Fprintf(out, "  %s %d\n", label("Remaining"), s.Remaining())
		if s.Count > 0 {
			mins := s.MinutesUntilReset(now)
			fmt.Fprintf(out, "  %s in %d min (%s)\n", label("Resets"), mins, s.ResetsAt().Local().Format(time.Kitchen))
		}
		return nil
	},
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the locally stored request count",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This clears the local request counter. Use --confirm to proceed.")
			return nil
		}

		tracker, store, err := openTracker()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := tracker.Clear(); err != nil {
			return err
		}
		printSuccess("Request counter cleared")
		return nil
	},
}

func init() {
	quotaResetCmd.Flags().Bool("confirm", false, "confirm the reset")
	quotaCmd.AddCommand(quotaResetCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(out, "  %s %s  (%s)\n", label(k.Key), k.Value, k.EnvVar)
		}
		if cfg.Assistant.APIKey == "" {
			printWarning("No API key configured; set GRANTDESK_API_KEY")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: fmt.Sprintf(`Set a configuration value in the config file.

Valid keys: %s`, strings.Join(config.ValidKeys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
