package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pattarin/treebank/internal/models"
	"github.com/pattarin/treebank/internal/portfolio"
	"github.com/pattarin/treebank/internal/testutil"
	"github.com/pattarin/treebank/internal/treeservice"
	"github.com/pattarin/treebank/internal/valuation"
	"github.com/pattarin/treebank/internal/vision"
)

// testEnv sets up a temp data dir, knowledge base, portfolio, demo-mode
// gateway, service and router. An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*treeservice.Service, http.Handler) {
	t.Helper()

	_, store := testutil.TestDataDir(t)
	kb := testutil.TestKB(t, store)
	trees := testutil.TestPortfolio(t, store)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := vision.NewGateway(vision.ClientConfig{}, kb, logger)

	svc := treeservice.NewService(kb, trees, gateway, nil)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeReturnsMockInDemoMode(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "tree.jpg")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("fake image bytes"))
	_ = mw.WriteField("location", "back garden")
	_ = mw.WriteField("enrich", "true")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", w.Code, w.Body.String())
	}

	var out treeservice.AnalysisOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Analysis.Source != vision.SourceMock {
		t.Errorf("source = %q, want mock", out.Analysis.Source)
	}
	if out.Outcome != valuation.OutcomeComputed {
		t.Errorf("valuation outcome = %q, want computed", out.Outcome)
	}
	// Mock mango: factor 12.5 (from enrichment), height 2.5, native,
	// high significance.
	if got := out.Valuation.CarbonKgPerYear; got != 12.5*2.5/2 {
		t.Errorf("carbon = %v", got)
	}
	if out.Valuation.MultiplierUsed != 1.8 {
		t.Errorf("multiplier = %v, want 1.8", out.Valuation.MultiplierUsed)
	}
}

func TestAnalyzeRequiresImage(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("location", "no image here")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateAndGetTree(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/trees", CreateTreeRequest{
		Name: "Backyard mango", Species: "Mango", HealthScore: 85, EnvironmentalValue: 1500,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.TreeRecord
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID != 1 || created.DisplayID != "TREE-0001" {
		t.Errorf("created = %+v", created)
	}

	w = doJSON(t, router, http.MethodGet, "/trees/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.TreeRecord
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Name != "Backyard mango" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetTreeNotFound(t *testing.T) {
	_, router := testEnv(t, "")
	if w := doJSON(t, router, http.MethodGet, "/trees/42", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/trees/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-numeric id", w.Code)
	}
}

func TestCreateTreeValidation(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/trees", CreateTreeRequest{HealthScore: 150})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range health", w.Code)
	}
}

func TestAddCareLog(t *testing.T) {
	_, router := testEnv(t, "")
	doJSON(t, router, http.MethodPost, "/trees", CreateTreeRequest{Name: "t"})

	w := doJSON(t, router, http.MethodPost, "/trees/1/care-logs", CareLogRequest{Activity: "watering", Notes: "deep soak"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var rec models.TreeRecord
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if len(rec.CareLogs) != 1 || rec.CareLogs[0].Activity != "watering" {
		t.Errorf("care logs = %+v", rec.CareLogs)
	}

	// Unknown id → 404.
	w = doJSON(t, router, http.MethodPost, "/trees/99/care-logs", CareLogRequest{Activity: "watering"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	// Missing activity → 400.
	w = doJSON(t, router, http.MethodPost, "/trees/1/care-logs", CareLogRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	doJSON(t, router, http.MethodPost, "/trees", CreateTreeRequest{HealthScore: 80, EnvironmentalValue: 1200})
	doJSON(t, router, http.MethodPost, "/trees", CreateTreeRequest{HealthScore: 90, EnvironmentalValue: 1800})

	w := doJSON(t, router, http.MethodGet, "/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats models.Statistics
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalTrees != 2 || stats.AvgHealth != 85 || stats.TotalCarbon != 100 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSpeciesEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	// Built-in defaults are listed.
	w := doJSON(t, router, http.MethodGet, "/species", nil)
	var list SpeciesListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Species) != 2 {
		t.Fatalf("species = %d, want 2 defaults", len(list.Species))
	}

	// Add a record without a multiplier; it gets derived.
	w = doJSON(t, router, http.MethodPost, "/species", SpeciesRequest{Name: "Teak", CarbonFactor: 30, Native: true})
	if w.Code != http.StatusCreated {
		t.Fatalf("create species = %d, body = %s", w.Code, w.Body.String())
	}
	var rec models.SpeciesRecord
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.ValueMultiplier != 2.0 {
		t.Errorf("derived multiplier = %v", rec.ValueMultiplier)
	}

	// Native listing includes it, in insertion order.
	w = doJSON(t, router, http.MethodGet, "/species/native", nil)
	var native NativeSpeciesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &native)
	if len(native.Native) != 3 || native.Native[2] != "Teak" {
		t.Errorf("native = %v", native.Native)
	}

	// Resolution is total.
	w = doJSON(t, router, http.MethodGet, "/species/resolve?name=unheard-of", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", w.Code)
	}
	var resolved models.SpeciesRecord
	_ = json.Unmarshal(w.Body.Bytes(), &resolved)
	if resolved.CarbonFactor != models.ReferenceCarbonFactor {
		t.Errorf("resolved = %+v", resolved)
	}

	// Empty name → 400.
	if w := doJSON(t, router, http.MethodGet, "/species/resolve", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	// Missing name on create → 400.
	if w := doJSON(t, router, http.MethodPost, "/species", SpeciesRequest{CarbonFactor: 10}); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChatDemoMode(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/chat", ChatRequest{Message: "how much water?"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ChatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reply == "" {
		t.Error("expected a demo reply, got empty string")
	}

	if w := doJSON(t, router, http.MethodPost, "/chat", ChatRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty message", w.Code)
	}
}

func TestExport(t *testing.T) {
	_, router := testEnv(t, "")
	doJSON(t, router, http.MethodPost, "/trees", CreateTreeRequest{Name: "t"})

	w := doJSON(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}
	var doc portfolio.ExportDocument
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if len(doc.Trees) != 1 || doc.Metadata.Version != portfolio.DocumentVersion {
		t.Errorf("export = %+v", doc)
	}
}

func TestAuthTokenMode(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	// No token → 401.
	if w := doJSON(t, router, http.MethodGet, "/trees", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	// Wrong token → 401.
	req := httptest.NewRequest(http.MethodGet, "/trees", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	// Correct token → 200.
	req = httptest.NewRequest(http.MethodGet, "/trees", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
