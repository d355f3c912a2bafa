package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var ErrTaskNotFound = errors.New("task script not found")

// aliases maps legacy numeric wizard ids to their stable semantic ids.
var aliases = map[string]string{
	"00_doctor":                "doctor",
	"10_prereqs":               "prereqs",
	"10a_swap":                 "swap",
	"11_node_pnpm":             "node_pnpm",
	"20a_install_openclaw_cli": "install_openclaw_cli",
	"21_write_config":          "write_config",
	"22_start_gateway":         "start_gateway",
	"24_provider_setup":        "provider_setup",
	"25_channels_setup":        "channels_setup",
	"23_start_node":            "start_node",
}

var validTaskName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Normalize resolves a legacy alias to its semantic id. Unknown names
// pass through unchanged.
func Normalize(requested string) string {
	if norm, ok := aliases[requested]; ok {
		return norm
	}
	return requested
}

// AliasesFor returns the legacy ids that normalize to the given semantic id.
func AliasesFor(norm string) []string {
	var out []string
	for legacy, semantic := range aliases {
		if semantic == norm {
			out = append(out, legacy)
		}
	}
	return out
}

// Registry resolves requested task names to scripts under its tasks dir.
// Existence check only; it never executes anything.
type Registry struct {
	dir string
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// Resolve returns the normalized name and script path for requested.
func (r *Registry) Resolve(requested string) (norm, script string, err error) {
	if !validTaskName.MatchString(requested) {
		return "", "", fmt.Errorf("%w: %s", ErrTaskNotFound, requested)
	}
	norm = Normalize(requested)
	script = filepath.Join(r.dir, norm+".sh")
	if _, err := os.Stat(script); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrTaskNotFound, requested)
	}
	return norm, script, nil
}
