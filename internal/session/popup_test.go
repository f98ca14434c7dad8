package session

import "testing"

func TestDisclaimerShowsOnce(t *testing.T) {
	p := NewPresenter()

	if p.Top() != PopupDisclaimer {
		t.Fatalf("expected disclaimer first, got %v", p.Top())
	}
	p.Dismiss(PopupDisclaimer)
	p.Show(PopupDisclaimer)

	if p.Visible(PopupDisclaimer) {
		t.Error("disclaimer should not return once dismissed")
	}
}

func TestPopupsDismissIndependently(t *testing.T) {
	p := NewPresenter()
	p.Dismiss(PopupDisclaimer)

	p.Show(PopupInvalidPoint)
	p.Show(PopupServerError)
	p.SetProcessing(PopupProcessingRoute)

	if p.Top() != PopupServerError {
		t.Fatalf("expected server error on top, got %v", p.Top())
	}
	if got := p.DismissTop(); got != PopupServerError {
		t.Fatalf("expected to dismiss server error, got %v", got)
	}
	if !p.Visible(PopupInvalidPoint) || !p.Processing() {
		t.Error("dismissing one popup affected another")
	}

	p.Dismiss(PopupInvalidPoint)
	if p.Top() != PopupProcessingRoute {
		t.Errorf("expected processing to remain, got %v", p.Top())
	}
	if got := p.DismissTop(); got != PopupNone {
		t.Errorf("processing popup should not be dismissable, dismissed %v", got)
	}

	p.SetProcessing(PopupNone)
	if p.Top() != PopupNone {
		t.Errorf("expected no popup, got %v", p.Top())
	}
}

func TestPopupMessages(t *testing.T) {
	p := NewPresenter()

	tests := []struct {
		kind  PopupKind
		title string
		body  string
	}{
		{PopupServerError, "Server Error", "An invalid point location may have been selected, the server may not have been started, or a different server error has occurred."},
		{PopupInvalidPoint, "Invalid Location", "Please select a point within the USA or Alaska."},
		{PopupInvalidPipeline, "Invalid Pipeline", "Start and end locations must be both in Alaska or both in continental USA."},
		{PopupProcessingRoute, "Loading", "Optimizing pipeline corridor, this may take several minutes..."},
		{PopupProcessingEvaluation, "Loading", "Evaluating uploaded corridor, this may take several minutes..."},
	}

	for _, tt := range tests {
		m := p.Message(tt.kind)
		if m.Title != tt.title || m.Body != tt.body {
			t.Errorf("kind %v: unexpected message %+v", tt.kind, m)
		}
	}

	p.ShowDetail(PopupReportSaved, "/tmp/report_results.zip")
	if m := p.Message(PopupReportSaved); m.Detail != "/tmp/report_results.zip" {
		t.Errorf("expected detail, got %+v", m)
	}
}
