package preflight

import (
	"fmt"
	"strings"

	"hhapply/internal/config"
	"hhapply/internal/deps"
)

// ExternalRequirements lists the configured [external] replacement commands
// as binary requirements. Pipelines with no replacement command are omitted.
func ExternalRequirements(cfg *config.Config) []deps.Requirement {
	named := []struct {
		name    string
		command string
	}{
		{"Send command", cfg.External.SendCommand},
		{"Rejections command", cfg.External.RejectionsCommand},
		{"Manual command", cfg.External.ManualCommand},
		{"Remove command", cfg.External.RemoveCommand},
	}

	requirements := make([]deps.Requirement, 0, len(named))
	for _, entry := range named {
		command := strings.TrimSpace(entry.command)
		if command == "" {
			continue
		}
		requirements = append(requirements, deps.Requirement{
			Name:        entry.name,
			Command:     command,
			Description: "replacement command from [external]",
		})
	}
	return requirements
}

// CheckExternalCommands resolves the binary of every configured [external]
// command on PATH. An unresolvable command fails its pipeline at invoke time,
// so surfacing it here keeps a scheduled run from burning its reset_log step
// first.
func CheckExternalCommands(cfg *config.Config) []Result {
	requirements := ExternalRequirements(cfg)
	if len(requirements) == 0 {
		return nil
	}

	results := make([]Result, 0, len(requirements))
	for _, status := range deps.CheckBinaries(requirements) {
		result := Result{Name: status.Name, Passed: status.Available}
		if status.Available {
			result.Detail = fmt.Sprintf("%s (resolved)", status.Command)
		} else {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}
