package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/docbase/config"
	"github.com/artpar/docbase/core/catalog"
	"github.com/artpar/docbase/core/registry"
	"github.com/artpar/docbase/core/resolve"
	"github.com/artpar/docbase/core/schema"
	"github.com/artpar/docbase/core/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMemory},
	}
}

func newApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	app, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNew_CoreOnly(t *testing.T) {
	app := newApp(t, testConfig())

	if diff := cmp.Diff([]string{"settings", "users", "collection"}, app.Catalog.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	settings, _ := app.Catalog.Get(catalog.SettingsID)
	if !settings.Schema.Properties.Has("jwt_secret") {
		t.Error("core settings missing from catalog")
	}
	if diff := cmp.Diff(catalog.RequiredPermissions(), app.Registry.Permissions()); diff != "" {
		t.Errorf("Permissions() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_ModulesFromDirAndOptions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "billing.yaml"),
		[]byte("module: billing\nsettings:\n  plan: { type: string }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Modules.Dir = dir

	var sawHost bool
	mail := registry.Module{Name: "mail", SettingSchema: resolve.Func(func(h resolve.Host) *schema.Fragment {
		app, ok := h.(*App)
		sawHost = ok && app.Registry != nil
		return schema.NewFragment(schema.P("smtp_host", schema.String{}))
	})}

	app := newApp(t, cfg, WithModules(mail))

	if diff := cmp.Diff([]string{"core", "mail", "billing"}, app.Registry.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if !sawHost {
		t.Error("schema factory did not receive the app as host")
	}

	settings, _ := app.Catalog.Get(catalog.SettingsID)
	keys := settings.Schema.Properties.Keys()
	if keys[len(keys)-2] != "smtp_host" || keys[len(keys)-1] != "plan" {
		t.Errorf("settings keys = %v, want mail then billing last", keys)
	}
}

func TestNew_DuplicateModule(t *testing.T) {
	_, err := New(context.Background(), testConfig(),
		WithLogger(zerolog.Nop()),
		WithModules(registry.Module{Name: catalog.CoreModuleName}))
	if !errors.Is(err, registry.ErrDuplicateModule) {
		t.Errorf("New() error = %v, want ErrDuplicateModule", err)
	}
}

func TestNew_ResolutionFailure(t *testing.T) {
	boom := errors.New("remote schema down")
	broken := registry.Module{Name: "broken", SettingSchema: resolve.Async(func(context.Context, resolve.Host) (*schema.Fragment, error) {
		return nil, boom
	})}

	app, err := New(context.Background(), testConfig(), WithLogger(zerolog.Nop()), WithModules(broken))
	if !errors.Is(err, boom) {
		t.Errorf("New() error = %v, want %v", err, boom)
	}
	if app != nil {
		t.Error("New() should not return an app on failure")
	}
}

func TestNew_BuildTimeout(t *testing.T) {
	hanging := registry.Module{Name: "slow", SettingSchema: resolve.Async(func(ctx context.Context, _ resolve.Host) (*schema.Fragment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})}

	cfg := testConfig()
	cfg.Catalog.BuildTimeout = 20 * time.Millisecond

	_, err := New(context.Background(), cfg, WithLogger(zerolog.Nop()), WithModules(hanging))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("New() error = %v, want DeadlineExceeded", err)
	}
}

func TestNew_StrictKeys(t *testing.T) {
	dup := registry.Module{Name: "dup", SettingSchema: resolve.Static(schema.NewFragment(
		schema.P("jwt_secret", schema.String{}),
	))}

	cfg := testConfig()
	cfg.Catalog.StrictKeys = true
	if _, err := New(context.Background(), cfg, WithLogger(zerolog.Nop()), WithModules(dup)); err == nil {
		t.Error("New() should reject a redeclared key in strict mode")
	}

	cfg.Catalog.StrictKeys = false
	newApp(t, cfg, WithModules(dup))
}

func TestApp_Provision(t *testing.T) {
	app := newApp(t, testConfig())

	if err := app.Provision(context.Background()); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	docs, err := app.Store.List(context.Background(), catalog.CollectionID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID())
	}
	if diff := cmp.Diff([]string{"collection", "settings", "users"}, ids); diff != "" {
		t.Errorf("provisioned ids mismatch (-want +got):\n%s", diff)
	}

	users, err := app.Store.Get(context.Background(), catalog.CollectionID, catalog.UsersID)
	if err != nil {
		t.Fatalf("Get(users) error = %v", err)
	}
	if users["storage"] != "file" || users["documentsHaveOwners"] != true {
		t.Errorf("users descriptor = %v", users)
	}
}

func TestProvision_InvalidWritesNothing(t *testing.T) {
	store := storage.NewMemory()
	cat := catalog.Catalog{
		catalog.Settings(schema.NewFragment()),
		{ID: "broken", Storage: "tape"},
		catalog.Meta(),
	}

	err := Provision(context.Background(), store, cat, zerolog.Nop())
	if err == nil {
		t.Fatal("Provision() should fail for an invalid descriptor")
	}

	docs, _ := store.List(context.Background(), catalog.CollectionID)
	if len(docs) != 0 {
		t.Errorf("Provision() wrote %d documents despite failing", len(docs))
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{"memory", config.StorageConfig{Driver: config.DriverMemory}, false},
		{"file", config.StorageConfig{Driver: config.DriverFile, Path: filepath.Join(t.TempDir(), "data")}, false},
		{"sqlite", config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "d.db")}, false},
		{"unknown", config.StorageConfig{Driver: "mongo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OpenStore(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("OpenStore() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStore() error = %v", err)
			}
			s.Close()
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("warn message missing, got %s", out)
	}
}
