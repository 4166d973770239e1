package cli

import (
	"fmt"
	"strconv"
	"strings"

	"taskflow-cli/internal/model"

	"github.com/spf13/cobra"
)

type settingsOut model.UserSettings

func (s settingsOut) TableHeader() []string { return []string{"KEY", "VALUE"} }
func (s settingsOut) TableRows() [][]string {
	key := s.OpenAIAPIKey
	if key != "" {
		key = "(set)"
	}
	code := s.AuthCode
	if code != "" {
		code = "(set)"
	}
	return [][]string{
		{"color", s.PrimaryColor},
		{"view", s.DefaultView},
		{"compact", strconv.FormatBool(s.CompactMode)},
		{"animations", strconv.FormatBool(s.ShowAnimations)},
		{"openai.key", key},
		{"openai.url", s.OpenAIBaseURL},
		{"openai.model", s.OpenAIModel},
		{"auth.code", code},
		{"auth.expiry", strconv.Itoa(s.AuthCodeExpiry) + "d"},
	}
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, settingsOut(ss.Settings()))
		},
	}
	cmd.AddCommand(show)

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: strings.TrimSpace(`
Change one setting. Keys:

  color         accent color name or hex
  view          default view (tasks|calendar|stats|gantt)
  compact       compact mode (true|false)
  animations    show animations (true|false)
  openai.key    assistant API key
  openai.url    assistant base URL
  openai.model  assistant model
  auth.code     access gate code ("" disables the gate)
  auth.expiry   gate expiry in days
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			key, value := strings.TrimSpace(args[0]), args[1]
			apply, err := settingSetter(key, value)
			if err != nil {
				return writeErr(cmd, err)
			}
			updated, err := ss.UpdateSettings(apply)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, settingsOut(updated))
		},
	}
	cmd.AddCommand(set)

	return cmd
}

func settingSetter(key, value string) (func(*model.UserSettings), error) {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s wants true or false, got %q", key, value)
		}
		return b, nil
	}
	switch key {
	case "color":
		return func(s *model.UserSettings) { s.PrimaryColor = value }, nil
	case "view":
		switch value {
		case "tasks", "calendar", "stats", "gantt":
		default:
			return nil, fmt.Errorf("view wants tasks|calendar|stats|gantt, got %q", value)
		}
		return func(s *model.UserSettings) { s.DefaultView = value }, nil
	case "compact":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(s *model.UserSettings) { s.CompactMode = b }, nil
	case "animations":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(s *model.UserSettings) { s.ShowAnimations = b }, nil
	case "openai.key":
		return func(s *model.UserSettings) { s.OpenAIAPIKey = value }, nil
	case "openai.url":
		return func(s *model.UserSettings) { s.OpenAIBaseURL = value }, nil
	case "openai.model":
		return func(s *model.UserSettings) { s.OpenAIModel = value }, nil
	case "auth.code":
		return func(s *model.UserSettings) { s.AuthCode = value }, nil
	case "auth.expiry":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("auth.expiry wants a positive day count, got %q", value)
		}
		return func(s *model.UserSettings) { s.AuthCodeExpiry = n }, nil
	default:
		return nil, fmt.Errorf("unknown setting %q", key)
	}
}
