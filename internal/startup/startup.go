package startup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"media-indexer/internal/logging"
	"media-indexer/internal/memory"
	"media-indexer/internal/probe"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the build info on one line.
func (b BuildInfo) String() string {
	return fmt.Sprintf("media-indexer %s (commit %s, built %s, %s %s/%s)",
		b.Version, b.Commit, b.BuildTime, b.GoVersion, b.OS, b.Arch)
}

// PrintBanner writes the startup banner to w and logs the build details.
func PrintBanner(w io.Writer) {
	banner := `
------------------------------------------------------------
                    _ _          _           _
 _ __ ___   ___  __| (_) __ _   (_)_ __   __| | _____  _____ _ __
| '_ ' _ \ / _ \/ _' | |/ _' |  | | '_ \ / _' |/ _ \ \/ / _ \ '__|
| | | | | |  __/ (_| | | (_| |  | | | | | (_| |  __/>  <  __/ |
|_| |_| |_|\___|\__,_|_|\__,_|  |_|_| |_|\__,_|\___/_/\_\___|_|

------------------------------------------------------------`
	fmt.Fprintln(w, banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

// LogSystemInfo logs host CPU and memory and the capacity of the volume
// holding root. Lookups that fail are skipped.
func LogSystemInfo(ctx context.Context, root string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		logging.Info("  CPU model:       %s", infos[0].ModelName)
	}
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil && physical > 0 {
		logging.Debug("  Physical cores:  %d", physical)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		logging.Info("  Memory:          %s total, %s available (%.1f%% used)",
			memory.FormatBytes(clampInt64(vm.Total)), memory.FormatBytes(clampInt64(vm.Available)), vm.UsedPercent)
	} else {
		logging.Debug("  Memory lookup failed: %v", err)
	}

	if root != "" {
		if usage, err := disk.UsageWithContext(ctx, root); err == nil {
			logging.Info("  Root volume:     %s used of %s (%s)",
				memory.FormatBytes(clampInt64(usage.Used)), memory.FormatBytes(clampInt64(usage.Total)), usage.Fstype)
		} else {
			logging.Debug("  Disk usage lookup failed for %s: %v", root, err)
		}
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func clampInt64(v uint64) int64 {
	if v > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(v)
}

// CheckProbes looks up every probe executable and returns the names of the
// ones that are missing. A missing probe is not fatal: its field is left
// empty on every document.
func CheckProbes(cfg probe.Config) []string {
	logging.Info("------------------------------------------------------------")
	logging.Info("PROBES")
	logging.Info("------------------------------------------------------------")

	var missing []string
	for _, line := range []string{cfg.Spotlight, cfg.Xattr, cfg.FFProbe, cfg.Identify} {
		cmd, err := probe.ParseCommand(line)
		if err != nil {
			logging.Warn("  [!!] %q: %v", line, err)
			continue
		}
		path, err := exec.LookPath(cmd.Name)
		if err != nil {
			logging.Warn("  [--] %s not found; its metadata will be omitted", cmd.Name)
			missing = append(missing, cmd.Name)
			continue
		}
		logging.Info("  [OK] %s (%s)", cmd.Name, path)
	}
	logging.Info("")
	return missing
}

// LogStoreInit logs store initialization.
func LogStoreInit(duration time.Duration) {
	logging.Info("------------------------------------------------------------")
	logging.Info("STORE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Store ready in %v", duration)
	logging.Info("")
}

// LogMetricsServer logs the metrics endpoint addresses.
func LogMetricsServer(addr string) {
	logging.Info("  Metrics:  http://%s/metrics", addr)
	logging.Info("  Health:   http://%s/healthz", addr)
	logging.Info("  Status:   http://%s/status", addr)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(reason string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (%s)", reason)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}
