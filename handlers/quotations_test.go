package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wbes/testhelpers"
)

func TestHandleQuotationCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	lead := testhelpers.CreateTestLead(t, app, "Quote Customer")

	handler := HandleQuotationCreate(app)

	body := `{
		"leadId": "` + lead.Id + `",
		"offerDate": "2026-02-01",
		"grandTotal": 250000,
		"scopeOfWork": [{"description": "Supply of panels", "qty": 4, "unit": "nos"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/quotations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["managementApprovalStatus"] != "draft" {
		t.Errorf("new quotation status = %v, want draft", resp["managementApprovalStatus"])
	}
	number, _ := resp["quotationNumber"].(string)
	if !strings.HasPrefix(number, "WBES-QTN-") {
		t.Errorf("quotationNumber = %q, want WBES-QTN- prefix", number)
	}
	if resp["grandTotal"] != 250000.0 {
		t.Errorf("grandTotal = %v, want 250000", resp["grandTotal"])
	}
}

func TestHandleQuotationCreate_UnknownLead(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleQuotationCreate(app)

	req := httptest.NewRequest(http.MethodPost, "/api/quotations", strings.NewReader(`{"leadId": "missing"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	err := handler(newTestRequestEvent(app, req, rec))
	if got := errorStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", got)
	}
}

func TestHandleQuotationApproval_Workflow(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	lead := testhelpers.CreateTestLead(t, app, "Workflow Customer")
	quotation := testhelpers.CreateTestQuotation(t, app, lead.Id, "WBES-QTN-25-26-001", "draft", 100000)

	handler := HandleQuotationApproval(app)

	submit := func(role, status string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/quotations/"+quotation.Id+"/approval",
			strings.NewReader(`{"status": "`+status+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("id", quotation.Id)
		req = withUser(req, "u1", "Tester", role)
		rec := httptest.NewRecorder()
		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			return errorStatus(t, err)
		}
		return rec.Code
	}

	storedStatus := func() string {
		reloaded, err := app.FindRecordById("quotations", quotation.Id)
		if err != nil {
			t.Fatalf("failed to reload quotation: %v", err)
		}
		return reloaded.GetString("management_approval_status")
	}

	// estimator submits draft for approval
	if code := submit("estimator", "pending"); code != http.StatusOK {
		t.Fatalf("draft→pending: expected 200, got %d", code)
	}

	// estimator cannot decide, and the rejected decision must not stick
	if code := submit("estimator", "approved"); code != http.StatusForbidden {
		t.Errorf("estimator approving: expected 403, got %d", code)
	}
	if got := storedStatus(); got != "pending" {
		t.Fatalf("status after forbidden decision = %q, want pending", got)
	}

	// manager approves
	if code := submit("manager", "approved"); code != http.StatusOK {
		t.Fatalf("pending→approved: expected 200, got %d", code)
	}

	// no transitions out of approved
	if code := submit("manager", "pending"); code != http.StatusConflict {
		t.Errorf("approved→pending: expected 409, got %d", code)
	}

	updated, err := app.FindRecordById("quotations", quotation.Id)
	if err != nil {
		t.Fatalf("failed to reload quotation: %v", err)
	}
	if got := updated.GetString("management_approval_status"); got != "approved" {
		t.Errorf("stored status = %q, want approved", got)
	}
}

func TestHandleQuotationApproval_InvalidTransition(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	lead := testhelpers.CreateTestLead(t, app, "Jump Customer")
	quotation := testhelpers.CreateTestQuotation(t, app, lead.Id, "WBES-QTN-25-26-002", "draft", 0)

	handler := HandleQuotationApproval(app)

	// draft cannot jump straight to approved
	req := httptest.NewRequest(http.MethodPost, "/api/quotations/"+quotation.Id+"/approval",
		strings.NewReader(`{"status": "approved"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", quotation.Id)
	req = withUser(req, "u1", "Tester", "manager")
	rec := httptest.NewRecorder()

	err := handler(newTestRequestEvent(app, req, rec))
	if got := errorStatus(t, err); got != http.StatusConflict {
		t.Errorf("draft→approved: expected 409, got %d", got)
	}
}

func TestHandleQuotationUpdate_DecidedBlocked(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	lead := testhelpers.CreateTestLead(t, app, "Locked Customer")
	quotation := testhelpers.CreateTestQuotation(t, app, lead.Id, "WBES-QTN-25-26-003", "approved", 100000)

	handler := HandleQuotationUpdate(app)

	req := httptest.NewRequest(http.MethodPatch, "/api/quotations/"+quotation.Id,
		strings.NewReader(`{"grandTotal": 1}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", quotation.Id)
	rec := httptest.NewRecorder()

	err := handler(newTestRequestEvent(app, req, rec))
	if got := errorStatus(t, err); got != http.StatusConflict {
		t.Errorf("expected 409 editing an approved quotation, got %d", got)
	}
}

func TestHandleQuotationList_StatusFilter(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	lead := testhelpers.CreateTestLead(t, app, "Filter Customer")
	testhelpers.CreateTestQuotation(t, app, lead.Id, "WBES-QTN-25-26-004", "approved", 0)
	testhelpers.CreateTestQuotation(t, app, lead.Id, "WBES-QTN-25-26-005", "draft", 0)

	handler := HandleQuotationList(app)

	req := httptest.NewRequest(http.MethodGet, "/api/quotations?status=approved", nil)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 approved quotation, got %d", len(items))
	}
	if items[0]["quotationNumber"] != "WBES-QTN-25-26-004" {
		t.Errorf("filtered item = %v", items[0]["quotationNumber"])
	}
}
