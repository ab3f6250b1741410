package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(NewService(repo)), repo
}

func TestHandlerCreatePatient(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()

	body := `{"mrn":"MRN-9001","first_name":"Sarah","last_name":"Connor","insurance_info":{"payer":"Acme Health"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var got Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.MRN != "MRN-9001" {
		t.Errorf("mrn = %s", got.MRN)
	}
	if got.InsuranceInfo["payer"] != "Acme Health" {
		t.Error("insurance_info not round-tripped")
	}
}

func TestHandlerCreatePatient_DuplicateMRN(t *testing.T) {
	h, repo := newTestHandler()
	e := echo.New()

	if err := repo.Create(context.Background(), &Patient{MRN: "MRN-1", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"mrn":"MRN-1","first_name":"C","last_name":"D"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if he.Message != "MRN already exists" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandlerListPatients_Search(t *testing.T) {
	h, repo := newTestHandler()
	e := echo.New()

	for _, p := range []*Patient{
		{MRN: "MRN-1", FirstName: "Sarah", LastName: "Connor"},
		{MRN: "MRN-2", FirstName: "Miles", LastName: "Dyson"},
	} {
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?search=connor", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("ListPatients: %v", err)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestHandlerGetPatient_BadID(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("xyz")

	err := h.GetPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerUpdatePatient(t *testing.T) {
	h, repo := newTestHandler()
	e := echo.New()

	p := &Patient{MRN: "MRN-5", FirstName: "Old", LastName: "Name"}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"mrn":"MRN-5","first_name":"New","last_name":"Name"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("UpdatePatient: %v", err)
	}
	stored, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.FirstName != "New" {
		t.Errorf("first_name = %s", stored.FirstName)
	}
}
