package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"orcamento/testhelpers"
)

func TestHandleOfferUpsert_CreateThenUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Wall Painting")
	supplier := testhelpers.CreateTestSupplier(t, app, account.Id, "Central Supplies")
	handler := HandleOfferUpsert(app)

	post := func(p2 string) *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("supplier", supplier.Id)
		form.Set("product", product.Id)
		form.Set("p2", p2)
		form.Set("m2", "22")

		req := httptest.NewRequest(http.MethodPost, "/catalog/offers",
			strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = withAccount(req, account.Id)
		rec := httptest.NewRecorder()
		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		return rec
	}

	if rec := post("32"); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := post("33.5"); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same (supplier, product) pair: still a single row, updated in place.
	offers, err := app.FindRecordsByFilter("offers", "supplier = {:supplier} && product = {:product}", "", 0, 0,
		map[string]any{"supplier": supplier.Id, "product": product.Id})
	if err != nil || len(offers) != 1 {
		t.Fatalf("expected exactly one offer row, got %d (err=%v)", len(offers), err)
	}
	if offers[0].GetString("p2") != "33.5" {
		t.Errorf("p2 = %q, want 33.5", offers[0].GetString("p2"))
	}
	if offers[0].GetString("p1") != "" {
		t.Errorf("p1 must stay empty, got %q", offers[0].GetString("p1"))
	}
}

func TestHandleOfferUpsert_InvalidSlot(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Wall Painting")
	supplier := testhelpers.CreateTestSupplier(t, app, account.Id, "Central Supplies")
	handler := HandleOfferUpsert(app)

	form := url.Values{}
	form.Set("supplier", supplier.Id)
	form.Set("product", product.Id)
	form.Set("p1", "not-a-number")
	form.Set("m1", "-5")

	req := httptest.NewRequest(http.MethodPost, "/catalog/offers",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withAccount(req, account.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	body := decodeJSON(t, rec)
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %v", body)
	}
	if errs["p1"] == nil || errs["m1"] == nil {
		t.Errorf("expected p1 and m1 errors, got %v", errs)
	}
}

func TestHandleOfferUpsert_MissingPair(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	handler := HandleOfferUpsert(app)

	req := httptest.NewRequest(http.MethodPost, "/catalog/offers",
		strings.NewReader(url.Values{}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withAccount(req, account.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleOfferUpsert_ForeignSupplier(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	other := testhelpers.CreateTestAccount(t, app, "other")
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Wall Painting")
	foreignSupplier := testhelpers.CreateTestSupplier(t, app, other.Id, "Their Supplier")
	handler := HandleOfferUpsert(app)

	form := url.Values{}
	form.Set("supplier", foreignSupplier.Id)
	form.Set("product", product.Id)
	form.Set("p1", "10")

	req := httptest.NewRequest(http.MethodPost, "/catalog/offers",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withAccount(req, account.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for a foreign supplier, got %d", rec.Code)
	}
}

func TestHandleProductTiers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Wall Painting")
	supplierA := testhelpers.CreateTestSupplier(t, app, account.Id, "Supplier A")
	supplierB := testhelpers.CreateTestSupplier(t, app, account.Id, "Supplier B")
	testhelpers.CreateTestOffer(t, app, account.Id, supplierA.Id, product.Id,
		map[string]float64{"p1": 30, "p2": 32, "p3": 35})
	testhelpers.CreateTestOffer(t, app, account.Id, supplierB.Id, product.Id,
		map[string]float64{"m1": 18})
	handler := HandleProductTiers(app)

	req := httptest.NewRequest(http.MethodGet, "/catalog/products/"+product.Id+"/tiers", nil)
	req.SetPathValue("id", product.Id)
	req = withAccount(req, account.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeJSON(t, rec)
	material, ok := body["material"].(map[string]any)
	if !ok {
		t.Fatalf("expected material tier set, got %v", body["material"])
	}
	min := material["min"].(map[string]any)
	if min["value"] != 30.0 || min["label"] != "P1" {
		t.Errorf("material min = %v, want value 30 label P1", min)
	}
	mid := material["mid"].(map[string]any)
	if mid["value"] != 32.0 {
		t.Errorf("material mid = %v, want 32", mid)
	}

	def, ok := body["default"].(map[string]any)
	if !ok {
		t.Fatalf("expected default selection, got %v", body["default"])
	}
	if def["supplier"] != supplierA.Id || def["source_material"] != "P1" {
		t.Errorf("default = %v, want supplier A with P1", def)
	}
}

func TestHandleProductTiers_NoOffers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Lonely Product")
	handler := HandleProductTiers(app)

	req := httptest.NewRequest(http.MethodGet, "/catalog/products/"+product.Id+"/tiers", nil)
	req.SetPathValue("id", product.Id)
	req = withAccount(req, account.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeJSON(t, rec)
	if body["material"] != nil || body["labor"] != nil {
		t.Errorf("expected null tier sets, got material=%v labor=%v", body["material"], body["labor"])
	}
}
