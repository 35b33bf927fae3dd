package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	command "github.com/goliatone/go-command"
	pagescmd "github.com/goliatone/go-lis/internal/commands/pages"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/runtimeconfig"
	"github.com/goliatone/go-lis/internal/storage"
)

const testSecret = "cli-test-secret"

type cliEnv map[string]string

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	return cliEnv{
		"LIS_SECRET_KEY":   testSecret,
		"LIS_DATABASE_URL": "sqlite://" + filepath.Join(dir, "lis.db"),
		"LIS_MEDIA_ROOT":   filepath.Join(dir, "media"),
		"LIS_LOGGER":       "false",
	}
}

func (e cliEnv) lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func runCLI(t *testing.T, env cliEnv, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(env.lookup)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, env cliEnv, args ...string) string {
	t.Helper()
	out, err := runCLI(t, env, nil, args...)
	if err != nil {
		t.Fatalf("lis %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestMigrateAppliesAndReportsStatus(t *testing.T) {
	env := newCLIEnv(t)

	before := mustRun(t, env, "migrate", "status")
	if !strings.HasPrefix(before, "2 pending") {
		t.Fatalf("expected two pending migrations, got %q", before)
	}

	applied := mustRun(t, env, "migrate")
	if strings.Count(applied, "Applied ") != 2 {
		t.Fatalf("expected two applied migrations, got %q", applied)
	}

	if out := mustRun(t, env, "migrate"); !strings.Contains(out, "up to date") {
		t.Fatalf("expected up to date schema, got %q", out)
	}
	if out := mustRun(t, env, "migrate", "status"); !strings.HasPrefix(out, "0 pending") {
		t.Fatalf("expected nothing pending, got %q", out)
	}

	down := mustRun(t, env, "migrate", "down")
	if strings.Count(down, "Rolled back ") != 2 {
		t.Fatalf("expected the group to roll back, got %q", down)
	}
}

func TestCreateEditorReadsPasswordFromStdin(t *testing.T) {
	env := newCLIEnv(t)
	mustRun(t, env, "migrate")

	out, err := runCLI(t, env, strings.NewReader("correct-horse\n"), "create-editor", "Marta", "--group", "admin")
	if err != nil {
		t.Fatalf("create-editor: %v", err)
	}
	if !strings.Contains(out, "Created editor marta") || !strings.Contains(out, "ADMIN") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := runCLI(t, env, nil, "create-editor", "short", "--password", "abc"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

func TestCreateAPIKeyPrintsRawKey(t *testing.T) {
	env := newCLIEnv(t)
	mustRun(t, env, "migrate")

	out := mustRun(t, env, "create-api-key", "museum app")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two output lines, got %q", out)
	}
	if !strings.Contains(lines[0], `"museum app"`) {
		t.Fatalf("expected key name in %q", lines[0])
	}
	if len(lines[1]) != 40 {
		t.Fatalf("expected a 40 character raw key, got %q", lines[1])
	}
}

func TestSignImagePrintsSignedURL(t *testing.T) {
	env := newCLIEnv(t)
	mustRun(t, env, "migrate")

	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.DatabaseConfig{URL: env["LIS_DATABASE_URL"]}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	image, err := media.NewBunRepository(db).CreateImage(ctx, &media.Image{
		Title:  "Grave of a poet",
		File:   "original_images/poet.jpg",
		Width:  800,
		Height: 600,
	})
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	_ = db.Close()

	out := mustRun(t, env, "sign-image", "1", "fill-100x100")
	want := media.RenditionURL(image, "fill-100x100", []byte(testSecret))
	if strings.TrimSpace(out) != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	if _, err := runCLI(t, env, nil, "sign-image", "x", "fill-100x100"); err == nil {
		t.Fatalf("expected invalid image id to fail")
	}
	if _, err := runCLI(t, env, nil, "sign-image", "1", "fill 100"); !errors.Is(err, media.ErrFilterSpec) {
		t.Fatalf("expected filter spec error, got %v", err)
	}
}

func TestPruneRenditionsDryRunReports(t *testing.T) {
	env := newCLIEnv(t)
	mustRun(t, env, "migrate")

	out := mustRun(t, env, "prune-renditions", "--dry-run")
	if !strings.Contains(out, "Would remove 0 renditions and 0 files") {
		t.Fatalf("unexpected prune output %q", out)
	}
}

func TestPublishScheduledRequiresScheduling(t *testing.T) {
	env := newCLIEnv(t)
	mustRun(t, env, "migrate")

	mustRun(t, env, "publish-scheduled")

	env["LIS_SCHEDULING"] = "false"
	if _, err := runCLI(t, env, nil, "publish-scheduled"); !errors.Is(err, pagescmd.ErrSchedulingDisabled) {
		t.Fatalf("expected scheduling disabled error, got %v", err)
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		expression string
		want       time.Duration
		wantErr    bool
	}{
		{expression: "@every 1m", want: time.Minute},
		{expression: " @every 90s ", want: 90 * time.Second},
		{expression: "@hourly", want: time.Hour},
		{expression: "@daily", want: 24 * time.Hour},
		{expression: "@every -1s", wantErr: true},
		{expression: "@every soon", wantErr: true},
		{expression: "*/5 * * * *", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseInterval(tc.expression)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.expression)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.expression, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.expression, tc.want, got)
		}
	}
}

func TestTickerSchedulerRunsRegisteredJobs(t *testing.T) {
	scheduler := newTickerScheduler(nil)

	if err := scheduler.Register(command.HandlerConfig{Expression: "@every 1m"}, "not a job"); err == nil {
		t.Fatalf("expected non function handler to be rejected")
	}

	var runs atomic.Int32
	done := make(chan struct{})
	job := func() error {
		if runs.Add(1) == 2 {
			close(done)
		}
		return errors.New("keeps running")
	}
	if err := scheduler.Register(command.HandlerConfig{Expression: "@every 5ms"}, job); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the job to run twice, ran %d times", runs.Load())
	}
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}
}
