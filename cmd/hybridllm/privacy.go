package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/config"
	"github.com/sherwynjoel/hybridllm/internal/privacy"
)

var privacyCmd = &cobra.Command{
	Use:   "privacy",
	Short: "Show or change the routing mode",
}

var privacyToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between privacy-first and efficiency routing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePrivacy(cmd, func(m *privacy.Mode) { m.Toggle() })
	},
}

var privacySetCmd = &cobra.Command{
	Use:   "set <on|off>",
	Short: "Turn privacy-first routing on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		return updatePrivacy(cmd, func(m *privacy.Mode) { m.Set(v) })
	},
}

var privacyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current routing mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := loadMode()
		if err != nil {
			return err
		}
		d := privacy.Describe(mode.Enabled())
		fmt.Fprintf(cmd.OutOrStdout(), "Current mode: %s\n\n%s\n", d.Label, d.Routing)
		return nil
	},
}

// loadMode reads the saved mode, falling back to the configured default.
func loadMode() (*privacy.Mode, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	enabled, err := config.PrivacyMode(config.DefaultSettingsPath(), cfg.PrivacyFirstMode)
	if err != nil {
		return nil, err
	}
	return privacy.NewMode(enabled), nil
}

func updatePrivacy(cmd *cobra.Command, change func(*privacy.Mode)) error {
	mode, err := loadMode()
	if err != nil {
		return err
	}
	change(mode)
	enabled := mode.Enabled()
	if err := config.SaveSettings(config.DefaultSettingsPath(), config.Settings{PrivacyFirstMode: enabled}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), privacy.Describe(enabled).String())
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return v, nil
}

func init() {
	privacyCmd.AddCommand(privacyToggleCmd, privacySetCmd, privacyStatusCmd)
	rootCmd.AddCommand(privacyCmd)
}
