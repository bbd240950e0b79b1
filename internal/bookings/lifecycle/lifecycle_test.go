package lifecycle

import (
	"errors"
	"testing"

	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/pkg/model"
)

func TestNext_LegalTransitions(t *testing.T) {
	tests := []struct {
		from     model.Status
		to       model.Status
		releases bool
	}{
		{from: model.StatusPending, to: model.StatusActive, releases: false},
		{from: model.StatusPending, to: model.StatusCancelled, releases: true},
		{from: model.StatusActive, to: model.StatusCompleted, releases: true},
		{from: model.StatusActive, to: model.StatusCancelled, releases: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			tr, err := Next(tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.From != tt.from || tr.To != tt.to {
				t.Errorf("transition = %+v", tr)
			}
			if tr.ReleasesRange != tt.releases {
				t.Errorf("ReleasesRange = %v, want %v", tr.ReleasesRange, tt.releases)
			}
		})
	}
}

func TestNext_EveryOtherPairIsIllegal(t *testing.T) {
	legal := map[[2]model.Status]bool{
		{model.StatusPending, model.StatusActive}:    true,
		{model.StatusPending, model.StatusCancelled}: true,
		{model.StatusActive, model.StatusCompleted}:  true,
		{model.StatusActive, model.StatusCancelled}:  true,
	}

	for _, from := range model.AllStatuses {
		for _, to := range model.AllStatuses {
			if legal[[2]model.Status{from, to}] {
				continue
			}
			_, err := Next(from, to)
			if err == nil {
				t.Errorf("%s -> %s should be illegal", from, to)
				continue
			}
			var illegal *bookingserrors.IllegalTransitionError
			if !errors.As(err, &illegal) {
				t.Errorf("%s -> %s: expected IllegalTransitionError, got %T", from, to, err)
				continue
			}
			if illegal.From != from || illegal.To != to {
				t.Errorf("error names edge %s -> %s, want %s -> %s", illegal.From, illegal.To, from, to)
			}
		}
	}
}

func TestNext_UnknownStatus(t *testing.T) {
	if _, err := Next(model.Status("confirmed"), model.StatusActive); !errors.Is(err, bookingserrors.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		from model.Status
		want []model.Status
	}{
		{from: model.StatusPending, want: []model.Status{model.StatusActive, model.StatusCancelled}},
		{from: model.StatusActive, want: []model.Status{model.StatusCompleted, model.StatusCancelled}},
		{from: model.StatusCompleted, want: nil},
		{from: model.StatusCancelled, want: nil},
	}

	for _, tt := range tests {
		got := Allowed(tt.from)
		if len(got) != len(tt.want) {
			t.Errorf("Allowed(%s) = %v, want %v", tt.from, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Allowed(%s) = %v, want %v", tt.from, got, tt.want)
				break
			}
		}
	}
}

func TestInitialIsNotTerminal(t *testing.T) {
	if Initial.IsTerminal() {
		t.Fatal("initial status must not be terminal")
	}
	if len(Allowed(Initial)) == 0 {
		t.Fatal("initial status must have outgoing transitions")
	}
}
