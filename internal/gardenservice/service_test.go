package gardenservice_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/gardenservice"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/sse"
	"github.com/starford/rosarium/internal/storage"
	"github.com/starford/rosarium/internal/testutil"
	"github.com/starford/rosarium/internal/timeline"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func seeded(t *testing.T, opts ...gardenservice.Option) (*gardenservice.Service, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory(0)
	if err := mem.Save(context.Background(), testutil.Garden()); err != nil {
		t.Fatal(err)
	}
	return testutil.TestService(t, mem, opts...), mem
}

func TestOpen_SeedsWhenNothingStored(t *testing.T) {
	svc := testutil.TestService(t, storage.NewMemory(0))
	ctx := context.Background()
	if got := len(svc.Specimens(ctx)); got != len(catalog.SeedSpecimens()) {
		t.Errorf("specimens = %d, want seed collection", got)
	}
	if svc.Dirty() {
		t.Error("seed collection should not be dirty")
	}
	if years := svc.Years(ctx); !reflect.DeepEqual(years, []int{2025, 2026}) {
		t.Errorf("years = %v", years)
	}
}

func TestOpen_WindowCoversData(t *testing.T) {
	svc, _ := seeded(t)
	want := []int{2023, 2024, 2025, 2026}
	if years := svc.Years(context.Background()); !reflect.DeepEqual(years, want) {
		t.Errorf("years = %v, want %v", years, want)
	}
}

func TestSaveSpecimen_Defaults(t *testing.T) {
	rec := &testutil.Recorder{}
	svc, _ := seeded(t, gardenservice.WithNotifier(rec))
	ctx := context.Background()

	spec, err := svc.SaveSpecimen(ctx, models.Specimen{Name: "  Desdemona "})
	if err != nil {
		t.Fatalf("SaveSpecimen: %v", err)
	}
	if spec.ID != "id-1" || spec.Name != "Desdemona" || spec.Brand != models.UnknownBrand || spec.AcquisitionDate != "2025-06-15" {
		t.Errorf("spec = %+v", spec)
	}
	if first := svc.Specimens(ctx)[0]; first.ID != spec.ID {
		t.Errorf("new specimen not at head: %+v", first)
	}
	if changes := rec.Changes(); len(changes) != 1 || changes[0] != (testutil.Notice{Kind: sse.SpecimenSaved, ID: "id-1"}) {
		t.Errorf("changes = %+v", changes)
	}

	spec.Name = "Desdemona (2)"
	if _, err := svc.SaveSpecimen(ctx, spec); err != nil {
		t.Fatal(err)
	}
	if got := svc.Specimens(ctx); len(got) != 3 || got[0].Name != "Desdemona (2)" {
		t.Errorf("update not in place: %+v", got)
	}

	if _, err := svc.SaveSpecimen(ctx, models.Specimen{Name: " "}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("blank name err = %v", err)
	}
}

func TestRemoveSpecimen_Cascades(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	svc.RemoveSpecimen(ctx, "r1")
	svc.RemoveSpecimen(ctx, "missing")

	if _, err := svc.Event(ctx, "e2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("event of removed specimen still present: %v", err)
	}
	if _, err := svc.Event(ctx, "e3"); err != nil {
		t.Errorf("other specimen's event removed: %v", err)
	}
}

func TestRecordCare(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	e, err := svc.RecordCare(ctx, gardenservice.CareInput{
		SpecimenID: "r2", Year: 2024, Month: 2, Day: 29,
		TypeID:  models.CareLiquid,
		SoilMix: models.SoilMix{{SoilID: "akadama", Value: 1}},
		Note:    " weekly ",
	})
	if err != nil {
		t.Fatalf("RecordCare: %v", err)
	}
	if e.Date != "2024-02-29" || e.SoilMix != nil || e.Note != "weekly" {
		t.Errorf("event = %+v", e)
	}

	cases := []struct {
		name string
		in   gardenservice.CareInput
		want error
	}{
		{"day past month end", gardenservice.CareInput{SpecimenID: "r2", Year: 2023, Month: 2, Day: 29, TypeID: models.CareLiquid}, apperr.ErrInvalid},
		{"unknown specimen", gardenservice.CareInput{SpecimenID: "zz", Year: 2024, Month: 2, Day: 1, TypeID: models.CareLiquid}, apperr.ErrNotFound},
		{"unknown type", gardenservice.CareInput{SpecimenID: "r2", Year: 2024, Month: 2, Day: 1, TypeID: "watering"}, apperr.ErrInvalid},
		{"product of other type", gardenservice.CareInput{SpecimenID: "r2", Year: 2024, Month: 2, Day: 1, TypeID: models.CareLiquid, ProductID: "menedael"}, apperr.ErrInvalid},
		{"negative soil part", gardenservice.CareInput{SpecimenID: "r2", Year: 2024, Month: 2, Day: 1, TypeID: models.CareSoil,
			SoilMix: models.SoilMix{{SoilID: "akadama", Value: -1}}}, apperr.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordCare(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestHistory_LatestFirst(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	for _, day := range []int{3, 28, 15} {
		if _, err := svc.RecordCare(ctx, gardenservice.CareInput{SpecimenID: "r1", Year: 2024, Month: 3, Day: day, TypeID: models.CareVital}); err != nil {
			t.Fatal(err)
		}
	}
	history, err := svc.History(ctx, "r1", 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	var dates []string
	for _, e := range history {
		dates = append(dates, e.Date)
	}
	want := []string{"2024-03-28", "2024-03-15", "2024-03-15", "2024-03-03"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("dates = %v, want %v", dates, want)
	}
	if empty, _ := svc.History(ctx, "r1", 2024, 4); empty == nil || len(empty) != 0 {
		t.Errorf("empty month = %v", empty)
	}
}

func TestEditCare_KeepsMonth(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	e, err := svc.EditCare(ctx, "e2", gardenservice.CareEdit{Day: 31, ProductID: "rose-liquid", Note: "doubled"})
	if err != nil {
		t.Fatalf("EditCare: %v", err)
	}
	if e.Date != "2024-03-31" || e.ProductID != "rose-liquid" || e.TypeID != models.CareLiquid {
		t.Errorf("event = %+v", e)
	}
	if _, err := svc.EditCare(ctx, "e3", gardenservice.CareEdit{Day: 32}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v", err)
	}
	if _, err := svc.EditCare(ctx, "nope", gardenservice.CareEdit{Day: 1}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestRecordBatch(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	res, err := svc.RecordBatch(ctx, gardenservice.BatchInput{
		SpecimenIDs: []string{"r2", "r1"},
		Date:        "2019-11-05",
		TypeID:      models.CareSoil,
		SoilID:      "kanuma",
	})
	if err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}
	if len(res.Events) != 2 || res.Events[0].SpecimenID != "r2" || res.Events[1].SpecimenID != "r1" {
		t.Fatalf("events = %+v", res.Events)
	}
	mix := res.Events[0].SoilMix
	if len(mix) != 1 || mix[0].SoilID != "kanuma" || mix.Shares()[0] != 100 {
		t.Errorf("soil mix = %+v", mix)
	}
	if res.Year != 2019 || res.Month != 11 {
		t.Errorf("focus = %d-%d", res.Year, res.Month)
	}
	if years := svc.Years(ctx); years[0] != 2019 || years[len(years)-1] != 2026 {
		t.Errorf("window = %v", years)
	}

	if _, err := svc.RecordBatch(ctx, gardenservice.BatchInput{SpecimenIDs: []string{"r1", "ghost"}, Date: "2024-01-01", TypeID: models.CarePest}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if h, _ := svc.History(ctx, "r1", 2024, 1); len(h) != 0 {
		t.Error("failed batch left events behind")
	}
}

func TestSheet_ProjectsWindow(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	sheet := svc.Sheet(ctx)
	if len(sheet.Rows) != 2 || len(sheet.Rows[0].Cells) != 4*12 {
		t.Fatalf("rows = %d, cells = %d", len(sheet.Rows), len(sheet.Rows[0].Cells))
	}
	if sheet.ContentWidth != 260+4*12*80 {
		t.Errorf("content width = %v", sheet.ContentWidth)
	}
}

func TestScrollAndLayout(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	width := svc.Sheet(ctx).ContentWidth

	res := svc.Scroll(ctx, timeline.Metrics{Offset: 10, ScrollableWidth: width, ViewportWidth: 1000})
	if !res.Prepended || !res.Pending || res.Years[0] != 2022 {
		t.Fatalf("scroll = %+v", res)
	}
	if c := svc.Layout(ctx, timeline.Metrics{Offset: 10, ScrollableWidth: width, ViewportWidth: 1000}); c.Apply || !c.Pending {
		t.Errorf("layout before growth = %+v", c)
	}
	c := svc.Layout(ctx, timeline.Metrics{Offset: 10, ScrollableWidth: res.ContentWidth, ViewportWidth: 1000})
	if !c.Apply || c.Offset != 10+12*80 || c.Pending {
		t.Errorf("correction = %+v", c)
	}

	if _, err := svc.Seek(ctx, 1990, 1, timeline.Metrics{ScrollableWidth: res.ContentWidth, ViewportWidth: 1000}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("seek err = %v", err)
	}
}

func TestFlush_QuotaKeepsMemoryState(t *testing.T) {
	rec := &testutil.Recorder{}
	svc, mem := seeded(t, gardenservice.WithNotifier(rec))
	ctx := context.Background()

	if _, err := svc.RecordCare(ctx, gardenservice.CareInput{SpecimenID: "r1", Year: 2025, Month: 6, Day: 1, TypeID: models.CareBlooming}); err != nil {
		t.Fatal(err)
	}
	before := svc.Export(ctx)

	mem.SetQuota(1)
	err := svc.Flush(ctx)
	if !errors.Is(err, apperr.ErrQuotaExceeded) {
		t.Fatalf("Flush err = %v, want quota exceeded", err)
	}
	if !errors.Is(svc.LastSaveError(), apperr.ErrQuotaExceeded) {
		t.Errorf("last save error = %v", svc.LastSaveError())
	}
	if after := svc.Export(ctx); !reflect.DeepEqual(before, after) {
		t.Error("in-memory state changed by failed save")
	}
	if len(rec.Warnings()) != 1 {
		t.Errorf("warnings = %v", rec.Warnings())
	}

	stored, err := mem.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Events) != len(testutil.Garden().Events) {
		t.Errorf("stored events = %d, previous snapshot should remain", len(stored.Events))
	}

	// No automatic retry; the next mutation saves again.
	mem.SetQuota(0)
	if err := svc.Flush(ctx); err != nil || mem.Saves() != 1 {
		t.Errorf("flush without changes: err = %v, saves = %d", err, mem.Saves())
	}
	if rec.Cleared() != 0 {
		t.Error("warning cleared before a successful save")
	}
	svc.RemoveEvent(ctx, "e1")
	if err := svc.Flush(ctx); err != nil || mem.Saves() != 2 {
		t.Errorf("flush after change: err = %v, saves = %d", err, mem.Saves())
	}
	if rec.Cleared() != 1 || svc.LastSaveError() != nil {
		t.Errorf("recovery: cleared = %d, last error = %v", rec.Cleared(), svc.LastSaveError())
	}
}

func TestRunSaver_CoalescesAndFlushesOnStop(t *testing.T) {
	svc, mem := seeded(t, gardenservice.WithSaveDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.RunSaver(ctx) }()

	for i := 0; i < 5; i++ {
		if _, err := svc.SaveSpecimen(ctx, models.Specimen{Name: "Burst"}); err != nil {
			t.Fatal(err)
		}
	}
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return !svc.Dirty()
	}, "saver did not write burst")
	if got := mem.Saves(); got != 2 {
		t.Errorf("saves = %d, want 2 (seed + one coalesced write)", got)
	}

	svc.RemoveSpecimen(context.Background(), "r2")
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("RunSaver: %v", err)
	}
	stored, _ := mem.Load(context.Background())
	if len(stored.Specimens) != 6 {
		t.Errorf("stored specimens = %d, want 6", len(stored.Specimens))
	}
}

func TestPhotos(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	if _, err := svc.AttachPhoto(ctx, "e1", gardenservice.PhotoAfter, pngHeader); err != nil {
		t.Fatalf("AttachPhoto: %v", err)
	}
	ct, data, err := svc.Photo(ctx, "e1", gardenservice.PhotoAfter)
	if err != nil || ct != "image/png" || !bytes.Equal(data, pngHeader) {
		t.Errorf("photo = %s %d bytes, err = %v", ct, len(data), err)
	}
	if _, _, err := svc.Photo(ctx, "e1", gardenservice.PhotoBefore); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("empty slot err = %v", err)
	}
	if _, err := svc.AttachPhoto(ctx, "e2", gardenservice.PhotoBefore, pngHeader); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("non-pruning err = %v", err)
	}
	if _, err := svc.AttachPhoto(ctx, "e1", gardenservice.PhotoBefore, []byte("hello")); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("non-image err = %v", err)
	}
	if album := svc.Album(ctx); len(album) != 1 || album[0].Event.ID != "e1" {
		t.Errorf("album = %+v", album)
	}
}

func TestPhotos_RejectsUnsupportedFormats(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	bmp := append([]byte("BM"), make([]byte, 64)...)
	if _, err := svc.AttachPhoto(ctx, "e1", gardenservice.PhotoBefore, bmp); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bmp err = %v", err)
	}
	edit := gardenservice.CareEdit{Day: 3, TypeID: models.CarePruning, Images: &models.EventImages{Before: "hello"}}
	if _, err := svc.EditCare(ctx, "e1", edit); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("edit with broken photo err = %v", err)
	}
	if e, _ := svc.Event(ctx, "e1"); e.Images != nil {
		t.Errorf("rejected edit stored images %+v", e.Images)
	}
}

func TestPhoto_CorruptPayloadIsInvalid(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	snap := testutil.Garden()
	snap.Events[0].Images = &models.EventImages{After: "data:image/png;base64,%%%"}
	svc.Import(ctx, snap)
	if _, _, err := svc.Photo(ctx, "e1", gardenservice.PhotoAfter); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestSettings(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	if _, err := svc.UpdateSettings(ctx, models.AppSettings{FontSize: "tiny"}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v", err)
	}
	want := models.AppSettings{FontSize: models.FontXL, HighContrast: true}
	if _, err := svc.UpdateSettings(ctx, want); err != nil {
		t.Fatal(err)
	}
	if got := svc.Settings(ctx); got != want {
		t.Errorf("settings = %+v", got)
	}
}

func TestImportReplacesWholesale(t *testing.T) {
	rec := &testutil.Recorder{}
	svc, _ := seeded(t, gardenservice.WithNotifier(rec))
	ctx := context.Background()

	years := svc.Import(ctx, &models.Snapshot{
		Specimens: []models.Specimen{{ID: "x", Name: "Solo", Brand: models.UnknownBrand}},
		Events:    []models.CareEvent{{ID: "ex", SpecimenID: "x", Date: "2021-05-05", TypeID: models.CarePruning}},
		Settings:  models.AppSettings{FontSize: models.FontLarge},
	})
	if !reflect.DeepEqual(years, []int{2021, 2022, 2023, 2024, 2025, 2026}) {
		t.Errorf("years = %v", years)
	}
	exp := svc.Export(ctx)
	if len(exp.Specimens) != 1 || len(exp.Events) != 1 || exp.Settings.FontSize != models.FontLarge {
		t.Errorf("export = %+v", exp)
	}
	if !svc.Dirty() {
		t.Error("import should schedule a save")
	}
	if c := rec.Changes(); len(c) != 1 || c[0].Kind != sse.GardenReplaced {
		t.Errorf("changes = %+v", c)
	}
}

func TestReload(t *testing.T) {
	svc, mem := seeded(t)
	ctx := context.Background()
	next := testutil.Garden()
	next.Specimens = next.Specimens[:1]
	if err := mem.Save(ctx, next); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if len(svc.Specimens(ctx)) != 1 || svc.Dirty() {
		t.Errorf("reload: specimens = %d, dirty = %v", len(svc.Specimens(ctx)), svc.Dirty())
	}
}

func TestReload_SkippedWhileDirty(t *testing.T) {
	svc, mem := seeded(t)
	ctx := context.Background()

	added, err := svc.SaveSpecimen(ctx, models.Specimen{Name: "Pending"})
	if err != nil {
		t.Fatal(err)
	}
	next := testutil.Garden()
	next.Specimens = next.Specimens[:1]
	if err := mem.Save(ctx, next); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Specimen(ctx, added.ID); err != nil {
		t.Errorf("unsaved specimen lost by reload: %v", err)
	}
	if !svc.Dirty() {
		t.Error("pending change should still be dirty")
	}

	if err := svc.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	stored, _ := mem.Load(ctx)
	if len(stored.Specimens) != 3 {
		t.Errorf("stored specimens = %d, want 3", len(stored.Specimens))
	}
}
