package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript creates an executable shell script in dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("Failed to write mock %s: %v", name, err)
	}
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mock probes are shell scripts")
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{name: "single word", line: "mdls", wantName: "mdls", wantArgs: []string{}},
		{name: "with args", line: "xattr -l", wantName: "xattr", wantArgs: []string{"-l"}},
		{name: "quoted path", line: `"/opt/image magick/identify" -verbose`, wantName: "/opt/image magick/identify", wantArgs: []string{"-verbose"}},
		{name: "empty", line: "   ", wantErr: true},
		{name: "unterminated quote", line: `ffprobe "-v`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, err := ParseCommand(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCommand(%q) expected error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.line, err)
			}
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			if strings.Join(cmd.Args, "|") != strings.Join(tt.wantArgs, "|") {
				t.Errorf("Args = %q, want %q", cmd.Args, tt.wantArgs)
			}
		})
	}
}

func TestRunnerOutputAppendsPath(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	script := writeScript(t, dir, "echoargs", `echo "$@"`)

	out, err := Runner{}.Output(context.Background(), Command{Name: script, Args: []string{"-a", "-b"}}, "/media/x y.jpg")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "-a -b /media/x y.jpg" {
		t.Errorf("Output() = %q, want %q", got, "-a -b /media/x y.jpg")
	}
}

func TestRunnerOutputNonZeroExit(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "fail", "echo 'no such file' >&2\nexit 3\n")

	_, err := Runner{}.Output(context.Background(), Command{Name: script}, "/missing")
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "no such file") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
}

func TestRunnerOutputMissingProgram(t *testing.T) {
	t.Parallel()

	_, err := Runner{}.Output(context.Background(), Command{Name: filepath.Join(t.TempDir(), "does-not-exist")}, "/x")
	if err == nil {
		t.Fatal("Expected error for missing program")
	}
}

func TestRunnerTimeout(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "hang", "exec sleep 5\n")

	start := time.Now()
	_, err := Runner{Timeout: 100 * time.Millisecond}.Output(context.Background(), Command{Name: script}, "/x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Timeout not honoured, call took %v", elapsed)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	script := writeScript(t, t.TempDir(), "hang", "exec sleep 5\n")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := Runner{}.Output(ctx, Command{Name: script}, "/x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected Canceled, got %v", err)
	}
}

func TestSetProbes(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	cfg := Config{
		Spotlight: writeScript(t, dir, "mdls", "cat <<'EOF'\nkMDItemKind = \"JPEG image\"\nkMDItemPixelWidth = 640\nEOF\n"),
		Xattr:     writeScript(t, dir, "xattr", "echo 'com.apple.quarantine: 0081;5f'\n"),
		FFProbe:   writeScript(t, dir, "ffprobe", `echo '{"format":{"duration":"12.5"},"streams":[{"codec_type":"video","codec_name":"h264"}]}'`+"\n"),
		Identify:  writeScript(t, dir, "identify", "echo 'Image: a.jpg'\necho '  Geometry: 640x480+0+0'\n"),
	}

	set, err := NewSet(cfg)
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	ctx := context.Background()

	spot, err := set.Spotlight(ctx, "/a.jpg")
	if err != nil || spot["kMDItemKind"] != `"JPEG image"` || spot["kMDItemPixelWidth"] != "640" {
		t.Errorf("Spotlight() = %v, %v", spot, err)
	}

	xattr, err := set.Xattr(ctx, "/a.jpg")
	if err != nil || !strings.Contains(xattr[XattrKey], "com.apple.quarantine") {
		t.Errorf("Xattr() = %v, %v", xattr, err)
	}

	video, err := set.Video(ctx, "/b.mp4")
	if err != nil {
		t.Fatalf("Video() error = %v", err)
	}
	format, ok := video["format"].(map[string]any)
	if !ok || format["duration"] != "12.5" {
		t.Errorf("Video() format = %v", video["format"])
	}

	image, err := set.Image(ctx, "/a.jpg")
	if err != nil || !strings.Contains(image[IdentifyKey].(string), "Geometry: 640x480") {
		t.Errorf("Image() = %v, %v", image, err)
	}

	if len(set.Commands()) != 4 {
		t.Errorf("Expected 4 commands, got %d", len(set.Commands()))
	}
}

func TestNewSetRejectsBadCommand(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.FFProbe = ""
	if _, err := NewSet(cfg); err == nil {
		t.Error("Expected error for empty ffprobe command")
	}
}
