package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arimedia/mediaplanner/internal/inventory"
)

type fakeSelector struct {
	result inventory.CombinedResult
	briefs []string
}

func (f *fakeSelector) SelectAll(_ context.Context, brief, _ string) (inventory.CombinedResult, error) {
	f.briefs = append(f.briefs, brief)
	return f.result, nil
}

func newSelectionsContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/selections", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSelectionsCreate(t *testing.T) {
	sel := &fakeSelector{result: inventory.CombinedResult{
		Websites: []inventory.Selection{
			{Name: "a.com", Category: "News", RelevanceScore: 380},
		},
		TVNetworks:  []inventory.Selection{{Name: "SportsNet", RelevanceScore: 300}},
		Fingerprint: "abcd1234",
		RunID:       "run-1",
		Elapsed:     1500 * time.Millisecond,
	}}
	h := &SelectionsHandler{Orchestrator: sel}

	c, rec := newSelectionsContext(t, `{"brief": "running shoes", "audience": "urban athletes"}`)
	if err := h.create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp selectionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Websites) != 1 || resp.Websites[0].Name != "a.com" {
		t.Fatalf("unexpected websites: %+v", resp.Websites)
	}
	if resp.Streaming != nil {
		t.Fatalf("absent type must serialize as null, got %+v", resp.Streaming)
	}
	if resp.Fingerprint != "abcd1234" || resp.ElapsedMS != 1500 {
		t.Fatalf("unexpected response meta: %+v", resp)
	}
	if len(sel.briefs) != 1 || sel.briefs[0] != "running shoes" {
		t.Fatalf("orchestrator received briefs %v", sel.briefs)
	}
}

func TestSelectionsCreateRequiresBrief(t *testing.T) {
	h := &SelectionsHandler{Orchestrator: &fakeSelector{}}

	for _, body := range []string{`{}`, `{"brief": "   "}`} {
		c, _ := newSelectionsContext(t, body)
		err := h.create(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %v", body, err)
		}
	}
}

func TestSelectionsCreateRejectsBadJSON(t *testing.T) {
	h := &SelectionsHandler{Orchestrator: &fakeSelector{}}

	c, _ := newSelectionsContext(t, `{not json`)
	err := h.create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %v", err)
	}
}
