package internal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/storage"
	"github.com/starford/rosarium/internal/testutil"
)

func fileConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "garden.json")
	return cfg
}

func TestImportThenExport(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)
	opts := []Option{WithConfig(cfg), WithLogger(testutil.Logger())}

	doc := `{"roses":[{"id":"a","name":"Alpha"},{"name":"missing id"}],
"events":[{"id":"e1","roseId":"a","date":"2024-05-02","typeId":"pest"}],
"settings":{"fontSize":"large","highContrast":true}}`

	report, err := Import(ctx, []byte(doc), opts...)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Specimens != 1 || report.Events != 1 || len(report.Warnings) != 1 {
		t.Errorf("report = %+v", report)
	}

	var buf bytes.Buffer
	if err := Export(ctx, &buf, opts...); err != nil {
		t.Fatalf("Export: %v", err)
	}
	snap, err := storage.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("exported document should decode cleanly: %v", err)
	}
	if len(snap.Specimens) != 1 || snap.Specimens[0].Name != "Alpha" || len(snap.Events) != 1 {
		t.Errorf("exported = %+v", snap)
	}
	if snap.Settings.FontSize != "large" || !snap.Settings.HighContrast {
		t.Errorf("settings = %+v", snap.Settings)
	}
}

func TestImport_RefusesUnreadable(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)
	_, err := Import(ctx, []byte("just words"), WithConfig(cfg), WithLogger(testutil.Logger()))
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestExport_EmptyStoreGivesSeed(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Driver = DriverMemory
	cfg.Storage.Path = ""

	var buf bytes.Buffer
	if err := Export(context.Background(), &buf, WithConfig(cfg), WithLogger(testutil.Logger())); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), `"roses"`) {
		t.Errorf("export should use the roses field: %s", buf.String())
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}

func TestOpenProvider(t *testing.T) {
	for _, driver := range []string{DriverFile, DriverSQLite, DriverMemory} {
		t.Run(driver, func(t *testing.T) {
			cfg := StorageConfig{Driver: driver, Path: filepath.Join(t.TempDir(), "garden")}
			p, closeFn, err := openProvider(cfg)
			if err != nil {
				t.Fatalf("openProvider: %v", err)
			}
			defer closeFn()
			if _, err := p.Load(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("fresh store Load = %v, want ErrNotFound", err)
			}
		})
	}
	if _, _, err := openProvider(StorageConfig{Driver: "s3"}); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestReadyHandler(t *testing.T) {
	mem := storage.NewMemory(0)
	svc := testutil.TestService(t, mem)
	ctx := context.Background()

	w := httptest.NewRecorder()
	readyHandler(svc)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("ready = %d, want 200", w.Code)
	}

	mem.SetQuota(10)
	svc.RemoveSpecimen(ctx, svc.Specimens(ctx)[0].ID)
	_ = svc.Flush(ctx)

	w = httptest.NewRecorder()
	readyHandler(svc)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "degraded") {
		t.Errorf("ready after quota failure = %d %s", w.Code, w.Body.String())
	}
}
