package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/imageio"
	"github.com/xob0t/covergen/pkg/testvideo"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupCLITestEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COVERGEN_FONT_PATH", "")
	t.Setenv("COVERGEN_FOLDER", "")
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[render]\nfont_size = 24\n\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	configPath := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "CJK font")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, stderr, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "font_size = 24")
	requireContains(t, stderr, configPath)
}

func TestRenderStill(t *testing.T) {
	configPath := setupCLITestEnv(t)
	dir := t.TempDir()
	still := filepath.Join(dir, "still.png")
	if err := imageio.Save(still, imageio.NewSolidImage(320, 180, color.RGBA{10, 10, 10, 255}), 0); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "cover.jpg")

	out, _, err := runCLI(t, []string{"render", "--image", still, "--title", "My Trip", "-o", output, "--stroke-offset", "0"}, configPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "Wrote "+output)

	img, err := imageio.Load(output)
	if err != nil {
		t.Fatalf("load cover: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("cover size = %v", b)
	}
}

func TestRenderRejectsBadArguments(t *testing.T) {
	configPath := setupCLITestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"render", "-o", "x.jpg"}, "exactly one of"},
		{"two sources", []string{"render", "--image", "a.png", "--video", "a.mp4", "-o", "x.jpg"}, "exactly one of"},
		{"no output", []string{"render", "--image", "a.png"}, "--output"},
		{"bad color", []string{"render", "--image", "a.png", "-o", "x.jpg", "--text-color", "blue"}, "render.text_color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, configPath)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			requireContains(t, err.Error(), tt.want)
		})
	}
}

func TestRunDryRun(t *testing.T) {
	configPath := setupCLITestEnv(t)
	folder := t.TempDir()
	for _, name := range []string{"trip.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := runCLI(t, []string{"run", folder, "--dry-run", "--json"}, configPath)
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	requireContains(t, out, `"name": "trip.mp4"`)
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("non-video listed: %s", out)
	}
	if entries, _ := os.ReadDir(folder); len(entries) != 2 {
		t.Fatalf("dry run wrote files: %v", entries)
	}
}

func TestRunMissingFolderIsFatal(t *testing.T) {
	configPath := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"run", filepath.Join(t.TempDir(), "missing"), "--dry-run"}, configPath)
	if !errors.Is(err, batch.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if code := exitCode(err); code != exitFatal {
		t.Fatalf("exit code = %d, want %d", code, exitFatal)
	}
}

func TestExitCode(t *testing.T) {
	partial := &batch.PartialFailureError{Failed: 1, Total: 2}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"partial", partial, exitPartial},
		{"wrapped partial", fmt.Errorf("run: %w", partial), exitPartial},
		{"interrupted", errors.Join(context.Canceled, partial), exitFatal},
		{"configuration", batch.ErrConfiguration, exitFatal},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestShouldPrintError(t *testing.T) {
	partial := &batch.PartialFailureError{Failed: 1, Total: 2, Failures: []batch.Failure{{Name: "b.mkv", Reason: batch.ReasonFrame}}}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"partial is listed by the report", partial, false},
		{"wrapped partial", fmt.Errorf("run: %w", partial), false},
		{"interrupted", errors.Join(context.Canceled, partial), false},
		{"configuration", fmt.Errorf("%w: no folder given", batch.ErrConfiguration), true},
	}
	for _, tt := range tests {
		if got := shouldPrintError(tt.err); got != tt.want {
			t.Errorf("%s: shouldPrintError = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg end-to-end test in short mode")
	}
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not on PATH", bin)
		}
	}
	configPath := setupCLITestEnv(t)

	folder := t.TempDir()
	still := imageio.NewSolidImage(160, 90, color.RGBA{30, 30, 30, 255})
	if err := testvideo.WriteFile(filepath.Join(folder, "My Trip.avi"), still, testvideo.Options{Seconds: 2}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, "broken.mkv"), []byte("not a video"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"run", folder, "--seek", "1"}, configPath)
	if code := exitCode(err); err == nil || code != exitPartial {
		t.Fatalf("err = %v (exit %d), want partial failure", err, code)
	}
	requireContains(t, out, "broken.mkv")

	cover, err := imageio.Load(filepath.Join(folder, "My Trip.jpg"))
	if err != nil {
		t.Fatalf("load cover: %v", err)
	}
	if b := cover.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
		t.Fatalf("cover size = %v", b)
	}
	if _, err := os.Stat(filepath.Join(folder, "broken.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected no cover for broken video, stat err = %v", err)
	}
}
