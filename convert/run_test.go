package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"cstyle/config"
	"cstyle/state"
)

func setupTestContext(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	return ctx, env
}

func TestProcessFile_RoundTrip(t *testing.T) {
	ctx, _ := setupTestContext(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	path := filepath.Join(srcDir, "card.ncss")
	if err := os.WriteFile(path, []byte(".title{color:red; &:hover{color:blue;}}"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := processFile(ctx, path, "card.ncss", dstDir, zap.NewNop()); err != nil {
		t.Fatalf("processFile: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dstDir, "card.css"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	expected := ".cs_card .title{color:red;}\n.cs_card .title:hover{color:blue;}"
	if string(out) != expected {
		t.Errorf("output = %q, want %q", string(out), expected)
	}
}

func TestProcessFile_Overwrite(t *testing.T) {
	ctx, env := setupTestContext(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	path := filepath.Join(srcDir, "card.ncss")
	if err := os.WriteFile(path, []byte(".a{color:red;}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dstDir, "card.css"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	err := processFile(ctx, path, "card.ncss", dstDir, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing output error, got %v", err)
	}

	env.Overwrite = true
	if err := processFile(ctx, path, "card.ncss", dstDir, zap.NewNop()); err != nil {
		t.Fatalf("processFile with overwrite: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dstDir, "card.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != ".cs_card .a{color:red;}" {
		t.Errorf("output = %q", string(out))
	}
}

func TestProcessDir(t *testing.T) {
	ctx, _ := setupTestContext(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	if err := os.MkdirAll(filepath.Join(srcDir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"one.ncss":           ".a{color:red;}",
		"sub/two.nested.css": ".b{color:blue;}",
		"ignored.css":        ".c{color:green;}",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(srcDir, filepath.FromSlash(name)), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := processDir(ctx, srcDir, dstDir, zap.NewNop()); err != nil {
		t.Fatalf("processDir: %v", err)
	}

	for _, name := range []string{"one.css", "sub/two.css"} {
		if _, err := os.Stat(filepath.Join(dstDir, filepath.FromSlash(name))); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dstDir, "ignored.css")); !os.IsNotExist(err) {
		t.Errorf("unrecognized source should have been skipped, stat err = %v", err)
	}
}

func TestProcessDir_NoDirs(t *testing.T) {
	ctx, env := setupTestContext(t)
	env.NoDirs = true

	srcDir, dstDir := t.TempDir(), t.TempDir()
	if err := os.MkdirAll(filepath.Join(srcDir, "deep", "deeper"), 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(srcDir, "deep", "deeper", "panel.ncss")
	if err := os.WriteFile(path, []byte(".x{margin:0;}"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := processDir(ctx, srcDir, dstDir, zap.NewNop()); err != nil {
		t.Fatalf("processDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "panel.css")); err != nil {
		t.Errorf("expected flat output next to destination root: %v", err)
	}
}
