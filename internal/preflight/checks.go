package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"hhapply/internal/config"
	"hhapply/internal/hh"
	"hhapply/internal/notion"
)

// minFreeBytes is the disk-space floor below which the free-space check
// fails. Run logs and artifacts are small; dropping under this usually means
// the volume is about to fill up entirely.
const minFreeBytes = 100 * 1024 * 1024

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has room left for run
// logs and review artifacts.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free on %s (below %s floor)", formatBytes(free), path, formatBytes(minFreeBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free on %s", formatBytes(free), path)}
}

// CheckHH verifies that the hh.ru token authenticates by fetching /me.
// It uses a 10-second timeout and a single attempt (no retries).
func CheckHH(ctx context.Context, cfg *config.Config) Result {
	const name = "hh.ru API"

	if strings.TrimSpace(cfg.HH.Token) == "" {
		return Result{Name: name, Detail: "token missing (set hh.token or HH_TOKEN)"}
	}

	client, err := hh.FromConfig(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	user, err := client.Me(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}

	who := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if who == "" {
		who = user.Email
	}
	if who == "" {
		return Result{Name: name, Passed: true, Detail: "authenticated"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("authenticated as %s", who)}
}

// CheckNotion verifies the configured tracking database is reachable.
func CheckNotion(ctx context.Context, cfg *config.Config) Result {
	const name = "Notion"

	recorder, err := notion.NewRecorder(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !recorder.Enabled() {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := recorder.Check(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "database reachable"}
}

// summarizeNetworkError produces a human-readable summary for connectivity
// failures.
func summarizeNetworkError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}

func formatBytes(value uint64) string {
	const unit = 1024
	if value < unit {
		return fmt.Sprintf("%d B", value)
	}
	div, exp := uint64(unit), 0
	for n := value / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(value)/float64(div), "KMGTPE"[exp])
}
