package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/config"
	"github.com/bergason/inventory/internal/domain"
	"github.com/bergason/inventory/internal/infra/blob"
	"github.com/bergason/inventory/internal/service"
	"github.com/bergason/inventory/internal/usecase"
)

// memStore backs all three repositories for handler tests.
type memStore struct {
	mu      sync.Mutex
	invs    map[string]*domain.Inventory
	entries map[string][]domain.SignatureEntry
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		invs:    make(map[string]*domain.Inventory),
		entries: make(map[string][]domain.SignatureEntry),
	}
}

func (s *memStore) Create(ctx context.Context, inv domain.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invs[inv.ID] = &inv
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (domain.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[id]
	if !ok {
		return domain.Inventory{}, domain.NotFoundError{Resource: "inventory"}
	}
	return *inv, nil
}

func (s *memStore) List(ctx context.Context) ([]domain.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Inventory, 0, len(s.invs))
	for _, inv := range s.invs {
		out = append(out, *inv)
	}
	return out, nil
}

func (s *memStore) UpdateContent(ctx context.Context, id string, content inventory.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[id]
	if !ok {
		return domain.NotFoundError{Resource: "inventory"}
	}
	if inv.Status.Locked() {
		return domain.ErrAlreadyLocked
	}
	inv.Content = content
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[id]
	if !ok {
		return domain.NotFoundError{Resource: "inventory"}
	}
	if inv.Status.Locked() {
		return domain.ErrAlreadyLocked
	}
	if inv.Status != domain.StatusDraft {
		return domain.ValidationError{Reason: "only draft inventories can be deleted"}
	}
	delete(s.invs, id)
	return nil
}

func (s *memStore) Attach(ctx context.Context, inventoryID, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[inventoryID]
	if !ok {
		return "", domain.NotFoundError{Resource: "inventory"}
	}
	if inv.Token != nil {
		return *inv.Token, nil
	}
	inv.Token = &token
	if inv.Status == domain.StatusDraft {
		inv.Status = domain.StatusSent
	}
	return token, nil
}

func (s *memStore) Resolve(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inv := range s.invs {
		if inv.Token != nil && *inv.Token == token {
			return id, nil
		}
	}
	return "", domain.NotFoundError{Resource: "inventory"}
}

func (s *memStore) Entries(ctx context.Context, inventoryID string) ([]domain.SignatureEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invs[inventoryID]; !ok {
		return nil, domain.NotFoundError{Resource: "inventory"}
	}
	return append([]domain.SignatureEntry{}, s.entries[inventoryID]...), nil
}

func (s *memStore) Append(ctx context.Context, entry domain.SignatureEntry, tenantPresent bool) (domain.SignatureEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[entry.InventoryID]
	if !ok {
		return domain.SignatureEntry{}, domain.NotFoundError{Resource: "inventory"}
	}
	if inv.Status.Locked() {
		return domain.SignatureEntry{}, domain.ErrAlreadyLocked
	}
	if inv.Status != domain.StatusSent {
		return domain.SignatureEntry{}, domain.NotFoundError{Resource: "inventory"}
	}
	if len(s.entries[entry.InventoryID]) == 0 {
		present := tenantPresent
		inv.TenantPresent = &present
	}
	s.nextID++
	entry.ID = s.nextID
	s.entries[entry.InventoryID] = append(s.entries[entry.InventoryID], entry)
	return entry, nil
}

func (s *memStore) Lock(ctx context.Context, inventoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[inventoryID]
	if !ok {
		return domain.NotFoundError{Resource: "inventory"}
	}
	if inv.Status.Locked() {
		return domain.ErrAlreadyLocked
	}
	if len(s.entries[inventoryID]) == 0 {
		return domain.ErrEmptyLedger
	}
	inv.Status = domain.StatusSigned
	return nil
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store := newMemStore()
	blobs, err := blob.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	h := NewHandler(
		config.Site{FQDN: "inventory.example.com", BaseURL: "https://inventory.example.com"},
		usecase.NewInventoryUsecase(store),
		usecase.NewTokenUsecase(store),
		usecase.NewLedgerUsecase(store, blobs, service.NewInkService()),
		usecase.NewVerifyUsecase(store, store, store, nil),
		nil,
		blobs,
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %s: %v", rec.Body.String(), err)
	}
}

func testContent() inventory.Content {
	return inventory.Content{
		PropertyOverview: inventory.PropertyOverview{
			Address:        "1 Example Street, Manchester",
			PropertyType:   "Residential",
			LandlordName:   "A. Landlord",
			TenantNames:    []string{"B. Tenant"},
			InspectionDate: "2026-08-01",
		},
	}
}

// signatureDataURI renders a small PNG and returns it as a browser-style data
// URI. An inked raster carries a dark stroke; a blank one is all white.
func signatureDataURI(t *testing.T, inked bool) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 60, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.White)
		}
	}
	if inked {
		for x := 10; x < 50; x++ {
			img.Set(x, 15, color.NRGBA{R: 0x10, G: 0x10, B: 0x30, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode signature png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSigningFlow(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/inventories", testContent())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created inventory.InventoryView
	decodeInto(t, rec, &created)
	if created.Status != "draft" {
		t.Errorf("new inventory should be draft, got %s", created.Status)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/inventories/"+created.ID+"/generate-link", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate-link: got %d, body %s", rec.Code, rec.Body.String())
	}
	var link inventory.ShareLink
	decodeInto(t, rec, &link)
	if link.Token == "" {
		t.Fatal("no token issued")
	}

	// Re-issuing must return the same link.
	rec = doJSON(t, e, http.MethodPost, "/api/inventories/"+created.ID+"/generate-link", nil)
	var again inventory.ShareLink
	decodeInto(t, rec, &again)
	if again.Token != link.Token {
		t.Error("token was rotated on re-issue")
	}

	rec = doJSON(t, e, http.MethodGet, "/api/sign/"+link.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("signing view: got %d, body %s", rec.Code, rec.Body.String())
	}
	var view inventory.SigningView
	decodeInto(t, rec, &view)
	if view.Locked {
		t.Error("fresh inventory reported as locked")
	}

	// Locking before any signature is a conflict.
	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/lock", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("lock with empty ledger: got %d, want 409", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/submit", inventory.SignatureSubmission{
		SignerName:    "I. Inspector",
		Role:          "Inspector",
		SignatureData: signatureDataURI(t, true),
		TenantPresent: false,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first submit: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/submit", inventory.SignatureSubmission{
		SignerName:    "T. Tenant",
		Role:          "Tenant",
		Email:         "tenant@example.com",
		SignatureData: signatureDataURI(t, true),
		TenantPresent: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second submit: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/lock", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("lock: got %d, body %s", rec.Code, rec.Body.String())
	}

	// The lock is one-way; a second attempt is refused.
	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/lock", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("second lock: got %d, want 403", rec.Code)
	}

	// So is any further write.
	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/submit", inventory.SignatureSubmission{
		SignerName:    "L. Latecomer",
		Role:          "Tenant",
		SignatureData: signatureDataURI(t, true),
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("submit after lock: got %d, want 403", rec.Code)
	}
	rec = doJSON(t, e, http.MethodPut, "/api/inventories/"+created.ID, testContent())
	if rec.Code != http.StatusForbidden {
		t.Errorf("update after lock: got %d, want 403", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/verify/"+link.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: got %d, body %s", rec.Code, rec.Body.String())
	}
	var record inventory.VerificationRecord
	decodeInto(t, rec, &record)
	if !record.Locked {
		t.Error("verification record not locked")
	}
	if record.Status != "signed" {
		t.Errorf("unexpected status: %s", record.Status)
	}
	if len(record.Signatures) != 2 {
		t.Errorf("expected 2 signatures, got %d", len(record.Signatures))
	}
	// The first submission declared the tenant absent; the second could not
	// change that.
	if record.TenantPresent == nil || *record.TenantPresent {
		t.Error("presence declaration was not first-writer-wins")
	}
}

func TestSubmitRejections(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/inventories", testContent())
	var created inventory.InventoryView
	decodeInto(t, rec, &created)

	rec = doJSON(t, e, http.MethodPost, "/api/inventories/"+created.ID+"/generate-link", nil)
	var link inventory.ShareLink
	decodeInto(t, rec, &link)

	// A blank canvas is not a signature.
	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/submit", inventory.SignatureSubmission{
		SignerName:    "N. Nobody",
		Role:          "Tenant",
		SignatureData: signatureDataURI(t, false),
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank signature: got %d, want 422", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/submit", inventory.SignatureSubmission{
		SignerName:    "N. Nobody",
		Role:          "Landlord",
		SignatureData: signatureDataURI(t, true),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unrecognized role: got %d, want 400", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/sign/"+link.Token+"/submit", inventory.SignatureSubmission{
		Role:          "Tenant",
		SignatureData: signatureDataURI(t, true),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing signer name: got %d, want 400", rec.Code)
	}
}

func TestUnknownTokenIsNotFound(t *testing.T) {
	e := newTestServer(t)

	for _, path := range []string{
		"/api/sign/bogus-token",
		"/api/verify/bogus-token",
	} {
		rec := doJSON(t, e, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404", path, rec.Code)
		}
	}

	rec := doJSON(t, e, http.MethodPost, "/api/sign/bogus-token/submit", inventory.SignatureSubmission{
		SignerName:    "N. Nobody",
		Role:          "Tenant",
		SignatureData: signatureDataURI(t, true),
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("submit against bogus token: got %d, want 404", rec.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	e := newTestServer(t)

	content := testContent()
	content.PropertyOverview.PropertyType = "Castle"
	rec := doJSON(t, e, http.MethodPost, "/api/inventories", content)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid property type: got %d, want 400", rec.Code)
	}

	content = testContent()
	content.PropertyOverview.TenantNames = nil
	rec = doJSON(t, e, http.MethodPost, "/api/inventories", content)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing tenant names: got %d, want 400", rec.Code)
	}
}

func TestDeleteLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/inventories", testContent())
	var created inventory.InventoryView
	decodeInto(t, rec, &created)

	rec = doJSON(t, e, http.MethodDelete, "/api/inventories/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete draft: got %d, want 200", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/inventories/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}

	// Once a link has gone out the record must survive.
	rec = doJSON(t, e, http.MethodPost, "/api/inventories", testContent())
	decodeInto(t, rec, &created)
	doJSON(t, e, http.MethodPost, "/api/inventories/"+created.ID+"/generate-link", nil)

	rec = doJSON(t, e, http.MethodDelete, "/api/inventories/"+created.ID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete sent inventory: got %d, want 400", rec.Code)
	}
}

func TestPredefinedRooms(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/rooms/predefined", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	var resp struct {
		Rooms []string `json:"rooms"`
	}
	decodeInto(t, rec, &resp)
	if len(resp.Rooms) == 0 {
		t.Error("no predefined rooms returned")
	}
}
