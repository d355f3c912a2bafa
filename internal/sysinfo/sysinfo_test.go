package sysinfo

import "testing"

const sampleMeminfo = `MemTotal:        8053456 kB
MemFree:         1203944 kB
MemAvailable:    5022132 kB
Buffers:          211348 kB
SwapCached:            0 kB
SwapTotal:       2097148 kB
SwapFree:        2097148 kB
`

func TestParseMeminfo(t *testing.T) {
	t.Run("full sample", func(t *testing.T) {
		res := ParseMeminfo(sampleMeminfo)
		if res.MemTotalMB == nil || *res.MemTotalMB != 8053456/1024 {
			t.Errorf("MemTotalMB = %v, want %d", res.MemTotalMB, 8053456/1024)
		}
		if res.SwapTotalMB == nil || *res.SwapTotalMB != 2097148/1024 {
			t.Errorf("SwapTotalMB = %v, want %d", res.SwapTotalMB, 2097148/1024)
		}
	})

	t.Run("no swap line reads as zero", func(t *testing.T) {
		res := ParseMeminfo("MemTotal:        4096000 kB\n")
		if res.MemTotalMB == nil || *res.MemTotalMB != 4000 {
			t.Errorf("MemTotalMB = %v, want 4000", res.MemTotalMB)
		}
		if res.SwapTotalMB == nil || *res.SwapTotalMB != 0 {
			t.Errorf("SwapTotalMB = %v, want 0", res.SwapTotalMB)
		}
	})

	t.Run("empty content reads as unknown", func(t *testing.T) {
		res := ParseMeminfo("")
		if res.MemTotalMB != nil || res.SwapTotalMB != nil {
			t.Errorf("expected both nil, got %v/%v", res.MemTotalMB, res.SwapTotalMB)
		}
	})

	t.Run("swapcached does not match swaptotal", func(t *testing.T) {
		res := ParseMeminfo("MemTotal: 1024 kB\nSwapCached: 9999 kB\n")
		if res.SwapTotalMB == nil || *res.SwapTotalMB != 0 {
			t.Errorf("SwapTotalMB = %v, want 0", res.SwapTotalMB)
		}
	})
}

func TestIsWSL(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"Linux version 5.15.90.1-microsoft-standard-WSL2", true},
		{"Linux version 4.4.0-19041-Microsoft (Microsoft@Microsoft.com)", true},
		{"Linux version 6.1.0-18-amd64 (debian-kernel@lists.debian.org)", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsWSL(tc.version); got != tc.want {
			t.Errorf("IsWSL(%q) = %v, want %v", tc.version, got, tc.want)
		}
	}
}

func TestCheckTools(t *testing.T) {
	got := CheckTools([]string{"sh", "definitely-not-a-real-command-xyz"})
	if !got["sh"] {
		t.Error("sh should be on PATH")
	}
	if got["definitely-not-a-real-command-xyz"] {
		t.Error("nonexistent command reported as present")
	}
}
