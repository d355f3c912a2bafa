// Package sysinfo probes the host the wizard is installing onto. Every
// probe is informational: failures degrade to zero values rather than
// erroring out.
package sysinfo

import (
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Env describes the host environment.
type Env struct {
	OSRelease  string `json:"osRelease"`
	IsWSL      bool   `json:"isWsl"`
	HasSystemd bool   `json:"hasSystemd"`
	Platform   string `json:"platform"`
}

// Resources reports memory and swap totals in megabytes. Nil means the
// value could not be determined.
type Resources struct {
	MemTotalMB  *int `json:"memTotalMb"`
	SwapTotalMB *int `json:"swapTotalMb"`
}

// WizardTools are the commands the install scripts expect on PATH.
var WizardTools = []string{"curl", "git", "jq", "ufw", "lsof", "node", "pnpm", "npm", "openclaw"}

// DetectEnv probes the local OS.
func DetectEnv() Env {
	procVer := readFile("/proc/version")
	_, systemdErr := os.Stat("/run/systemd/system")
	return Env{
		OSRelease:  headLines(readFile("/etc/os-release"), 20),
		IsWSL:      IsWSL(procVer),
		HasSystemd: systemdErr == nil,
		Platform:   runtime.GOOS,
	}
}

var wslRe = regexp.MustCompile(`(?i)microsoft`)

// IsWSL reports whether procVersion identifies a WSL kernel.
func IsWSL(procVersion string) bool {
	return wslRe.MatchString(procVersion)
}

// MemSwap reads memory and swap totals from /proc/meminfo.
func MemSwap() Resources {
	return ParseMeminfo(readFile("/proc/meminfo"))
}

var (
	memTotalRe  = regexp.MustCompile(`(?m)^MemTotal:\s+(\d+)\s+kB`)
	swapTotalRe = regexp.MustCompile(`(?m)^SwapTotal:\s+(\d+)\s+kB`)
)

// ParseMeminfo extracts MemTotal and SwapTotal from meminfo content.
// Missing swap on a machine that reports memory reads as zero, not
// unknown.
func ParseMeminfo(content string) Resources {
	var res Resources
	if content == "" {
		return res
	}
	if m := memTotalRe.FindStringSubmatch(content); m != nil {
		if kb, err := strconv.Atoi(m[1]); err == nil {
			mb := kb / 1024
			res.MemTotalMB = &mb
		}
	}
	swap := 0
	if m := swapTotalRe.FindStringSubmatch(content); m != nil {
		if kb, err := strconv.Atoi(m[1]); err == nil {
			swap = kb / 1024
		}
	}
	res.SwapTotalMB = &swap
	return res
}

// CheckTools reports PATH availability of the given commands.
func CheckTools(tools []string) map[string]bool {
	out := make(map[string]bool, len(tools))
	for _, tool := range tools {
		_, err := exec.LookPath(tool)
		out[tool] = err == nil
	}
	return out
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func headLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
