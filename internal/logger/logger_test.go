package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("log filename want %s got %s", defaultLogFilename, filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("log dir want %s got %s", defaultLogDirName, filepath.Dir(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
}

func TestNewByMode(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		wantFile bool
	}{
		{name: "release", mode: "release", wantFile: true},
		{name: "debug", mode: "debug", wantFile: false},
		{name: "debug_mixed_case", mode: " Debug ", wantFile: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			log := New(tc.mode, Options{Dir: tmpDir, Filename: "otp.log"})
			log.Info("otp-log-test")
			_ = log.Sync()

			content, err := os.ReadFile(filepath.Join(tmpDir, "otp.log"))
			if !tc.wantFile {
				if !os.IsNotExist(err) {
					t.Fatalf("mode %q should not create log file", tc.mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("read log failed: %v", err)
			}
			if !strings.Contains(string(content), "otp-log-test") {
				t.Fatalf("log content should contain message, got=%s", string(content))
			}
		})
	}
}

func TestPositiveOr(t *testing.T) {
	if got := positiveOr(0, 7); got != 7 {
		t.Fatalf("zero want fallback 7 got %d", got)
	}
	if got := positiveOr(-3, 7); got != 7 {
		t.Fatalf("negative want fallback 7 got %d", got)
	}
	if got := positiveOr(12, 7); got != 12 {
		t.Fatalf("positive want 12 got %d", got)
	}
}

func TestZFallsBackBeforeInit(t *testing.T) {
	saved := L
	L = nil
	t.Cleanup(func() { L = saved })

	if Z() == nil {
		t.Fatalf("Z should return fallback logger before Init")
	}
	if SW("request_id", "r-1") == nil {
		t.Fatalf("SW should return a sugared logger")
	}
}

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		raw   string
		debug bool
		want  string
	}{
		{raw: "", debug: true, want: "debug"},
		{raw: "", debug: false, want: "info"},
		{raw: "warn", debug: true, want: "warn"},
		{raw: " ERROR ", debug: false, want: "error"},
		{raw: "verbose", debug: false, want: "info"},
	}
	for _, tc := range cases {
		if got := resolveLevel(tc.raw, tc.debug).String(); got != tc.want {
			t.Fatalf("level(%q, debug=%v) want %s got %s", tc.raw, tc.debug, tc.want, got)
		}
	}
}

func TestNewAddsServiceField(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "svc.log", Service: "desi-etsy"})
	log.Info("service-field-test")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "svc.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(content), `"service":"desi-etsy"`) {
		t.Fatalf("log line should carry service field: %s", content)
	}
}
