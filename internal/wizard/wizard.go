// Package wizard collects the operator's provisioning choices. The
// interactive path walks question groups in the terminal; the
// non-interactive path resolves the same answers from stored
// preferences and fails on anything that would otherwise have been
// prompted for.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/benchtop-dev/benchtop/internal/prefs"
)

var (
	errNameRequired  = errors.New("a name is required")
	errEmailRequired = errors.New("an email address is required")
	errEmailInvalid  = errors.New("not a valid email address")
)

// Run walks the operator through the question groups, seeding each
// answer from the stored preferences so a re-run only needs Enter.
func Run(ctx context.Context, seed prefs.Preferences) (prefs.Preferences, error) {
	p := seed

	if err := runIdentityGroup(ctx, &p); err != nil {
		return p, fmt.Errorf("identity: %w", err)
	}
	if err := runEnvironmentGroup(ctx, &p); err != nil {
		return p, fmt.Errorf("environment: %w", err)
	}
	if err := runComponentsGroup(ctx, &p); err != nil {
		return p, fmt.Errorf("components: %w", err)
	}
	return p, nil
}

// Resolve is the non-interactive path. Stored preferences must already
// answer every required question; a missing answer is an error the
// caller treats as fatal.
func Resolve(seed prefs.Preferences) (prefs.Preferences, error) {
	var missing []string
	if seed.GitUserName == "" {
		missing = append(missing, "git_user_name")
	}
	if seed.GitUserEmail == "" {
		missing = append(missing, "git_user_email")
	}
	if len(missing) > 0 {
		return seed, fmt.Errorf("non-interactive run requires stored answers for: %s",
			strings.Join(missing, ", "))
	}
	if err := validateEmail(seed.GitUserEmail); err != nil {
		return seed, fmt.Errorf("git_user_email: %w", err)
	}
	return seed, nil
}

func runIdentityGroup(ctx context.Context, p *prefs.Preferences) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your Name").
				Description("Used for the global git identity").
				Placeholder("Dana Developer").
				Value(&p.GitUserName).
				Validate(validateName),
			huh.NewInput().
				Title("Email Address").
				Description("Used for the global git identity").
				Placeholder("dana@example.com").
				Value(&p.GitUserEmail).
				Validate(validateEmail),
			huh.NewInput().
				Title("Dotfiles Repository (Optional)").
				Description("Git URL of a dotfiles repository to seed. Leave empty to skip.").
				Placeholder("https://example.com/dana/dotfiles.git").
				Value(&p.DotfilesRepo),
		).Title("Identity"),
	).RunWithContext(ctx)
}

func runEnvironmentGroup(ctx context.Context, p *prefs.Preferences) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Login Shell").
				Options(stringOptions(ShellChoices)...).
				Value(&p.Shell),
			huh.NewSelect[string]().
				Title("Default Editor").
				Options(stringOptions(EditorChoices)...).
				Value(&p.Editor),
		).Title("Environment"),
	).RunWithContext(ctx)
}

func runComponentsGroup(ctx context.Context, p *prefs.Preferences) error {
	options, defaults := componentOptions()
	if len(p.Components) == 0 {
		p.Components = defaults
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Components").
				Description("Select the tool groups to install").
				Options(options...).
				Value(&p.Components),
		).Title("Components"),
	).RunWithContext(ctx)
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errNameRequired
	}
	return nil
}

func validateEmail(s string) error {
	if s == "" {
		return errEmailRequired
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errEmailInvalid
	}
	return nil
}
