package fakeengine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const invocationLog = "invocations.log"

// Options controls the behavior of the fake ffmpeg.
type Options struct {
	// FailWith, when set, is written to stderr and the script exits with ExitCode.
	FailWith string
	// ExitCode defaults to 1 when FailWith is set.
	ExitCode int
	// SkipOutput makes a successful run exit 0 without writing the output.
	SkipOutput bool
	// Delay is slept before doing anything else.
	Delay time.Duration
}

// Write creates an executable fake ffmpeg in dir and returns its path. Tests
// are skipped on platforms without /bin/sh.
func Write(t *testing.T, dir string, opts Options) string {
	t.Helper()
	skipWithoutShell(t)

	logPath := filepath.Join(dir, invocationLog)

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "echo \"$*\" >> %s\n", quote(logPath))
	if opts.Delay > 0 {
		fmt.Fprintf(&b, "sleep %.3f\n", opts.Delay.Seconds())
	}
	if opts.FailWith != "" {
		code := opts.ExitCode
		if code == 0 {
			code = 1
		}
		fmt.Fprintf(&b, "echo %s >&2\nexit %d\n", quote(opts.FailWith), code)
	} else if opts.SkipOutput {
		b.WriteString("exit 0\n")
	} else {
		b.WriteString(`for a; do last="$a"; done
: > "$last" || exit 1
prev=""
for a; do
  if [ "$prev" = "-i" ]; then
    cat "$a" >> "$last" || { echo "cannot read $a" >&2; exit 1; }
  fi
  prev="$a"
done
exit 0
`)
	}

	return writeScript(t, filepath.Join(dir, "ffmpeg"), b.String())
}

// WriteProbe creates a fake ffprobe in dir that prints output and exits 0.
func WriteProbe(t *testing.T, dir, output string) string {
	t.Helper()
	skipWithoutShell(t)

	script := "#!/bin/sh\ncat <<'PROBE_EOF'\n" + output + "\nPROBE_EOF\n"
	return writeScript(t, filepath.Join(dir, "ffprobe"), script)
}

// Invocations returns the argument lines recorded by the fake ffmpeg in dir.
func Invocations(t *testing.T, dir string) []string {
	t.Helper()

	f, err := os.Open(filepath.Join(dir, invocationLog))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to open invocation log: %v", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("Failed to read invocation log: %v", err)
	}
	return lines
}

func writeScript(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("Failed to write fake engine %s: %v", path, err)
	}
	return path
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine scripts require /bin/sh")
	}
}

// quote wraps s in single quotes for /bin/sh.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
