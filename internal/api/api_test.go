package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/rosarium/internal/gardenservice"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

// testEnv builds a router over the seeded test garden.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*gardenservice.Service, http.Handler) {
	t.Helper()
	svc, _ := testutil.Seeded(t)
	return svc, NewRouter(svc, authToken != "", authToken, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetSpecimen(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/specimens", map[string]any{"name": "Desdemona", "brand": "David Austin (UK)"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Specimen
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.AcquisitionDate != "2025-06-15" {
		t.Errorf("created = %+v", created)
	}

	w = do(t, router, http.MethodGet, "/specimens", nil)
	var list []models.Specimen
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 3 || list[0].ID != created.ID {
		t.Errorf("new specimen should be first, got %+v", list)
	}
}

func TestCreateSpecimen_Invalid(t *testing.T) {
	_, router := testEnv(t, "")
	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"brand": "x"}},
		{"bad date", map[string]any{"name": "x", "acquisitionDate": "2024-02-30"}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, "/specimens", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestUpdateSpecimen(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/specimens/r2", map[string]any{"name": "Iceberg Climbing"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/specimens", nil)
	var list []models.Specimen
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list[1].ID != "r2" || list[1].Name != "Iceberg Climbing" {
		t.Errorf("update should keep position, got %+v", list)
	}

	if w := do(t, router, http.MethodPut, "/specimens/nope", map[string]any{"name": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteSpecimen_CascadesAndIsIdempotent(t *testing.T) {
	svc, router := testEnv(t, "")

	if w := do(t, router, http.MethodDelete, "/specimens/r1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if _, err := svc.Event(context.Background(), "e1"); err == nil {
		t.Error("events of deleted specimen should be gone")
	}
	if w := do(t, router, http.MethodDelete, "/specimens/r1", nil); w.Code != http.StatusNoContent {
		t.Errorf("second delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/specimens/r1/cells/2024/3", nil); w.Code != http.StatusNotFound {
		t.Errorf("history of deleted = %d, want 404", w.Code)
	}
}

func TestRecordCareAndHistory(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/specimens/r1/cells/2024/3", map[string]any{
		"day": 20, "typeId": "solid", "productId": "magamp-k",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/specimens/r1/cells/2024/3", nil)
	var events []models.CareEvent
	_ = json.Unmarshal(w.Body.Bytes(), &events)
	if len(events) != 2 || events[0].Date != "2024-03-20" || events[1].ID != "e2" {
		t.Errorf("history = %+v", events)
	}
}

func TestRecordCare_Rejects(t *testing.T) {
	_, router := testEnv(t, "")
	tests := []struct {
		name string
		path string
		body map[string]any
		want int
	}{
		{"day past month end", "/specimens/r1/cells/2023/2", map[string]any{"day": 29, "typeId": "liquid"}, http.StatusBadRequest},
		{"missing type", "/specimens/r1/cells/2024/3", map[string]any{"day": 1}, http.StatusBadRequest},
		{"unknown product", "/specimens/r1/cells/2024/3", map[string]any{"day": 1, "typeId": "liquid", "productId": "nope"}, http.StatusBadRequest},
		{"month out of range", "/specimens/r1/cells/2024/13", map[string]any{"day": 1, "typeId": "liquid"}, http.StatusBadRequest},
		{"non-numeric year", "/specimens/r1/cells/abc/3", map[string]any{"day": 1, "typeId": "liquid"}, http.StatusBadRequest},
		{"unknown specimen", "/specimens/zz/cells/2024/3", map[string]any{"day": 1, "typeId": "liquid"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestEditAndDeleteEvent(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/events/e2", map[string]any{"day": 28, "productId": "rose-liquid"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit = %d, body = %s", w.Code, w.Body.String())
	}
	var e models.CareEvent
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if e.Date != "2024-03-28" || e.TypeID != models.CareLiquid || e.ProductID != "rose-liquid" {
		t.Errorf("edited = %+v", e)
	}

	if w := do(t, router, http.MethodPut, "/events/nope", map[string]any{"day": 1}); w.Code != http.StatusNotFound {
		t.Errorf("edit missing = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/events/e2", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/events/e2", nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestRecordBatch(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/events/batch", map[string]any{
		"specimenIds": []string{"r2", "r1"},
		"date":        "2019-05-01",
		"typeId":      "pest",
		"productId":   "benica-x-next",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("batch = %d, body = %s", w.Code, w.Body.String())
	}
	var res gardenservice.BatchResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Events) != 2 || res.Events[0].SpecimenID != "r2" || res.Month != 5 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Years) == 0 || res.Years[0] != 2019 {
		t.Errorf("window should reach 2019, got %v", res.Years)
	}

	w = do(t, router, http.MethodPost, "/events/batch", map[string]any{
		"specimenIds": []string{"r1", "zz"}, "date": "2024-05-01", "typeId": "pest",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("batch with unknown specimen = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/events/batch", map[string]any{"date": "2024-05-01", "typeId": "pest"}); w.Code != http.StatusBadRequest {
		t.Errorf("empty batch = %d, want 400", w.Code)
	}
}

type sheetResponse struct {
	Years []int `json:"years"`
	Rows  []struct {
		Specimen models.Specimen `json:"specimen"`
		Cells    []struct {
			Count int `json:"count"`
		} `json:"cells"`
	} `json:"rows"`
	ContentWidth float64 `json:"contentWidth"`
}

func TestSheet(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/sheet", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sheet = %d", w.Code)
	}
	var sheet sheetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &sheet); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(sheet.Years) != 4 || len(sheet.Rows) != 2 || len(sheet.Rows[0].Cells) != 48 {
		t.Fatalf("sheet shape = %d years, %d rows", len(sheet.Years), len(sheet.Rows))
	}
	if sheet.ContentWidth != 260+48*80 {
		t.Errorf("content width = %v", sheet.ContentWidth)
	}
	// r1, 2024-03 holds e2.
	if got := sheet.Rows[0].Cells[12+2].Count; got != 1 {
		t.Errorf("r1 2024-03 count = %d, want 1", got)
	}
}

func TestSeek(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/sheet/seek", map[string]any{
		"year": 2024, "month": 3, "viewportWidth": 1060, "scrollableWidth": 4100,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("seek = %d, body = %s", w.Code, w.Body.String())
	}
	var res SeekResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Offset != 760 {
		t.Errorf("offset = %v, want 760", res.Offset)
	}

	w = do(t, router, http.MethodPost, "/sheet/seek", map[string]any{"year": 1990, "month": 3, "viewportWidth": 1060})
	if w.Code != http.StatusBadRequest {
		t.Errorf("seek outside window = %d, want 400", w.Code)
	}
}

func TestScrollNearEndAppends(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/sheet/scroll", map[string]any{
		"scrollOffset": 3000, "scrollableWidth": 4100, "viewportWidth": 1060,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("scroll = %d", w.Code)
	}
	var res gardenservice.ScrollResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !res.Appended || res.Years[len(res.Years)-1] != 2027 {
		t.Errorf("result = %+v", res)
	}

	if w := do(t, router, http.MethodPost, "/sheet/scroll", map[string]any{"scrollOffset": -1}); w.Code != http.StatusBadRequest {
		t.Errorf("negative offset = %d, want 400", w.Code)
	}
}

func TestCatalog(t *testing.T) {
	_, router := testEnv(t, "")

	for _, path := range []string{"/catalog/care-types", "/catalog/brands", "/catalog/soils", "/catalog/products"} {
		if w := do(t, router, http.MethodGet, path, nil); w.Code != http.StatusOK {
			t.Errorf("%s = %d", path, w.Code)
		}
	}
	w := do(t, router, http.MethodGet, "/catalog/products?type=liquid", nil)
	if !strings.Contains(w.Body.String(), "hyponex-liquid") || strings.Contains(w.Body.String(), "magamp-k") {
		t.Errorf("liquid products = %s", w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/catalog/products?type=nope", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown type = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/catalog/varieties", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/catalog/varieties?q=zzzz", nil); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("no hits = %s, want []", w.Body.String())
	}
}

func TestSettings(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/settings", map[string]any{"fontSize": "xl", "highContrast": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/settings", nil)
	var s models.AppSettings
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.FontSize != "xl" || !s.HighContrast {
		t.Errorf("settings = %+v", s)
	}
	if w := do(t, router, http.MethodPut, "/settings", map[string]any{"fontSize": "huge"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad font size = %d, want 400", w.Code)
	}
}

func TestSummaryAndAlbum(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/summary?year=2024", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":3`) {
		t.Errorf("summary = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/summary?year=x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad year = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/album", nil); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("album = %s, want []", w.Body.String())
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "rosarium.json") {
		t.Fatalf("export = %d", w.Code)
	}
	exported := w.Body.String()

	_, other := testEnv(t, "")
	do(t, other, http.MethodDelete, "/specimens/r1", nil)
	w = do(t, other, http.MethodPost, "/import", exported)
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	var res ImportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Specimens != 2 || res.Events != 3 || len(res.Warnings) != 0 {
		t.Errorf("import = %+v", res)
	}
}

func TestExportImportRoundTrip_LargePhoto(t *testing.T) {
	_, router := testEnv(t, "")

	photo := make([]byte, 8<<20)
	copy(photo, pngHeader)
	if w := uploadPhoto(t, router, "/events/e1/photos/before", photo); w.Code != http.StatusOK {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	w := do(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK || w.Body.Len() <= maxBodyBytes {
		t.Fatalf("export = %d, %d bytes", w.Code, w.Body.Len())
	}
	exported := w.Body.String()

	_, other := testEnv(t, "")
	if w := do(t, other, http.MethodPost, "/import", exported); w.Code != http.StatusOK {
		t.Fatalf("re-import = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, other, http.MethodGet, "/events/e1/photos/before", nil)
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), photo) {
		t.Errorf("photo after re-import = %d, %d bytes", w.Code, w.Body.Len())
	}
}

func TestImport_PartialAndRejected(t *testing.T) {
	svc, router := testEnv(t, "")

	doc := `{"roses":[{"id":"a","name":"A"},{"name":"no id"}],"events":[],"settings":{"fontSize":"normal"}}`
	w := do(t, router, http.MethodPost, "/import", doc)
	if w.Code != http.StatusOK {
		t.Fatalf("partial import = %d, body = %s", w.Code, w.Body.String())
	}
	var res ImportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Specimens != 1 || len(res.Warnings) == 0 {
		t.Errorf("import = %+v", res)
	}

	if w := do(t, router, http.MethodPost, "/import", "not a snapshot at all"); w.Code != http.StatusBadRequest {
		t.Errorf("garbage import = %d, want 400", w.Code)
	}
	if got := len(svc.Specimens(context.Background())); got != 1 {
		t.Errorf("rejected import must not touch the garden, specimens = %d", got)
	}
}

func TestImport_YAML(t *testing.T) {
	_, router := testEnv(t, "")

	doc := "roses:\n  - id: y1\n    name: Yaml Rose\nevents: []\nsettings:\n  fontSize: large\n"
	w := do(t, router, http.MethodPost, "/import", doc)
	if w.Code != http.StatusOK {
		t.Fatalf("yaml import = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/settings", nil)
	if !strings.Contains(w.Body.String(), `"large"`) {
		t.Errorf("settings after yaml import = %s", w.Body.String())
	}
}

func uploadPhoto(t *testing.T, h http.Handler, path string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestUploadAndServePhoto(t *testing.T) {
	_, router := testEnv(t, "")

	w := uploadPhoto(t, router, "/events/e1/photos/before", pngHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/events/e1/photos/before", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" || !bytes.Equal(w.Body.Bytes(), pngHeader) {
		t.Errorf("serve = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if w := do(t, router, http.MethodGet, "/events/e1/photos/after", nil); w.Code != http.StatusNotFound {
		t.Errorf("empty slot = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodGet, "/album", nil)
	if !strings.Contains(w.Body.String(), `"e1"`) {
		t.Errorf("album should list e1: %s", w.Body.String())
	}
}

func TestEditCare_RejectsBrokenPhoto(t *testing.T) {
	_, router := testEnv(t, "")

	body := map[string]any{"day": 3, "typeId": "pruning", "images": map[string]string{"before": "hello"}}
	if w := do(t, router, http.MethodPut, "/events/e1", body); w.Code != http.StatusBadRequest {
		t.Errorf("edit with broken photo = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/events/e1/photos/before", nil); w.Code != http.StatusNotFound {
		t.Errorf("photo after rejected edit = %d, want 404", w.Code)
	}
}

func TestGetPhoto_CorruptStoredPhoto(t *testing.T) {
	svc, router := testEnv(t, "")

	snap := testutil.Garden()
	snap.Events[0].Images = &models.EventImages{Before: "hello"}
	svc.Import(context.Background(), snap)
	if w := do(t, router, http.MethodGet, "/events/e1/photos/before", nil); w.Code != http.StatusBadRequest {
		t.Errorf("corrupt photo = %d, want 400", w.Code)
	}
}

func TestUploadPhoto_Rejects(t *testing.T) {
	_, router := testEnv(t, "")

	if w := uploadPhoto(t, router, "/events/e2/photos/before", pngHeader); w.Code != http.StatusBadRequest {
		t.Errorf("non-pruning = %d, want 400", w.Code)
	}
	if w := uploadPhoto(t, router, "/events/e1/photos/before", []byte("plain text")); w.Code != http.StatusBadRequest {
		t.Errorf("not an image = %d, want 400", w.Code)
	}
	if w := uploadPhoto(t, router, "/events/nope/photos/before", pngHeader); w.Code != http.StatusNotFound {
		t.Errorf("missing event = %d, want 404", w.Code)
	}
	if w := uploadPhoto(t, router, "/events/e1/photos/middle", pngHeader); w.Code != http.StatusBadRequest {
		t.Errorf("bad slot = %d, want 400", w.Code)
	}
	bmp := append([]byte("BM"), make([]byte, 64)...)
	if w := uploadPhoto(t, router, "/events/e1/photos/before", bmp); w.Code != http.StatusBadRequest {
		t.Errorf("bmp = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/specimens", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	if w := do(t, router, http.MethodGet, "/specimens", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/specimens", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	if w := do(t, router, http.MethodGet, "/specimens?access_token=secret", nil); w.Code != http.StatusOK {
		t.Errorf("query token = %d, want 200", w.Code)
	}
}

func TestSSEStream_AuthProtected(t *testing.T) {
	svc, _ := testutil.Seeded(t)
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router := NewRouter(svc, true, "secret", sseHandler)

	if w := do(t, router, http.MethodGet, "/events/stream", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("stream without auth = %d, want 401", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/events/stream?access_token=secret", nil); w.Code != http.StatusOK {
		t.Errorf("stream with token = %d, want 200", w.Code)
	}
}
