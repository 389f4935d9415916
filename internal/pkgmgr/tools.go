package pkgmgr

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is a host command a provisioning run depends on.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required marks tools whose absence aborts the run.
	Required bool

	// Description explains what the tool is used for.
	Description string
}

// BaseTools returns the tools every run needs before installation
// starts. Package installation itself covers everything else.
func BaseTools() []Tool {
	return []Tool{
		{Name: "git", Required: true, Description: "cloning the dotfiles seed repository"},
		{Name: "tar", Required: true, Description: "unpacking downloaded archives"},
		{Name: "sudo", Required: false, Description: "privilege escalation for package installs"},
	}
}

// ToolResult records one tool probe.
type ToolResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// ToolResults aggregates probes for a run.
type ToolResults struct {
	Results []ToolResult
	Missing []Tool
}

// Err returns an error naming every missing required tool, or nil.
func (r *ToolResults) Err() error {
	var missing []string
	for _, t := range r.Missing {
		if t.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", t.Name, t.Description))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// CheckTools probes PATH for each tool.
func CheckTools(tools []Tool) *ToolResults {
	return checkTools(tools, exec.LookPath)
}

func checkTools(tools []Tool, lookPath func(string) (string, error)) *ToolResults {
	results := &ToolResults{}
	for _, tool := range tools {
		res := ToolResult{Tool: tool}
		if path, err := lookPath(tool.Name); err == nil {
			res.Found = true
			res.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, res)
	}
	return results
}
