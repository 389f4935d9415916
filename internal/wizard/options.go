package wizard

import "github.com/charmbracelet/huh"

// Component is an installable group of packages the operator can opt
// into during configuration.
type Component struct {
	// Key is the stable identifier stored in preferences.
	Key string

	// Label and Description are shown in the picker.
	Label       string
	Description string

	// Packages are the distro packages the component pulls in.
	Packages []string

	// Default marks components preselected for new machines.
	Default bool
}

// Components is the catalog offered by the configuration wizard.
var Components = []Component{
	{
		Key:         "core",
		Label:       "Core CLI",
		Description: "everyday command-line tools",
		Packages:    []string{"curl", "wget", "ripgrep", "jq", "tmux", "htop"},
		Default:     true,
	},
	{
		Key:         "containers",
		Label:       "Containers",
		Description: "container engine and compose tooling",
		Packages:    []string{"podman", "podman-compose", "buildah"},
	},
	{
		Key:         "languages",
		Label:       "Language Toolchains",
		Description: "compilers and language runtimes",
		Packages:    []string{"gcc", "make", "python3", "nodejs"},
	},
	{
		Key:         "cloud",
		Label:       "Cloud Tooling",
		Description: "infrastructure and cloud clients",
		Packages:    []string{"openssh-client", "rsync", "unzip"},
	},
}

// ShellChoices are the login shells offered by the wizard.
var ShellChoices = []string{"bash", "zsh", "fish"}

// EditorChoices are the default editors offered by the wizard.
var EditorChoices = []string{"vim", "nvim", "helix", "nano", "emacs"}

// PackagesFor flattens the selected component keys into a deduplicated
// package list, preserving catalog order.
func PackagesFor(keys []string) []string {
	selected := make(map[string]bool, len(keys))
	for _, k := range keys {
		selected[k] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range Components {
		if !selected[c.Key] {
			continue
		}
		for _, p := range c.Packages {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// componentOptions builds the multi-select options and the default
// selection for the component picker.
func componentOptions() ([]huh.Option[string], []string) {
	options := make([]huh.Option[string], len(Components))
	var defaults []string
	for i, c := range Components {
		options[i] = huh.NewOption(c.Label+" - "+c.Description, c.Key)
		if c.Default {
			defaults = append(defaults, c.Key)
		}
	}
	return options, defaults
}

func stringOptions(values []string) []huh.Option[string] {
	options := make([]huh.Option[string], len(values))
	for i, v := range values {
		options[i] = huh.NewOption(v, v)
	}
	return options
}
