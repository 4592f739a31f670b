package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"localist_backend/internal/search/geocode"
	"localist_backend/platform/logger"
)

type geocodeTestConfig struct {
	reverseURL string
}

func (c geocodeTestConfig) GetGeocodeBaseURL() string    { return "" }
func (c geocodeTestConfig) GetGeocodeReverseURL() string { return c.reverseURL }
func (c geocodeTestConfig) GetGeocodeLang() string       { return "" }
func (c geocodeTestConfig) GetGeocodeResultLimit() int   { return 10 }

type fakeAddressWriter struct {
	id      uuid.UUID
	address string
	calls   int
}

func (w *fakeAddressWriter) UpdateAddress(_ context.Context, id uuid.UUID, address string) error {
	w.id = id
	w.address = address
	w.calls++
	return nil
}

func newTestWorker(reverseURL string, pins AddressWriter) *Worker {
	log := logger.New("development")
	return &Worker{
		pins:     pins,
		geocoder: geocode.NewClient(geocodeTestConfig{reverseURL: reverseURL}, log),
		log:      log,
	}
}

func TestHandlePinReverseGeocode_WritesFormattedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"properties":{"street":"Rua Augusta","housenumber":"100","city":"São Paulo","state":"SP","country":"Brasil"}}]}`))
	}))
	defer srv.Close()

	pins := &fakeAddressWriter{}
	w := newTestWorker(srv.URL, pins)

	pinID := uuid.New()
	task, err := NewPinReverseGeocodeTask(PinReverseGeocodePayload{PinID: pinID.String(), Lat: -23.55, Lon: -46.63})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := w.handlePinReverseGeocode(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if pins.calls != 1 || pins.id != pinID {
		t.Fatalf("expected one address write for the pin, got %+v", pins)
	}
	if pins.address != "Rua Augusta, 100 - São Paulo - SP" {
		t.Fatalf("unexpected address %q", pins.address)
	}
}

func TestHandlePinReverseGeocode_NoFeaturesIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	pins := &fakeAddressWriter{}
	w := newTestWorker(srv.URL, pins)

	task, err := NewPinReverseGeocodeTask(PinReverseGeocodePayload{PinID: uuid.NewString(), Lat: 0, Lon: 0})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := w.handlePinReverseGeocode(context.Background(), task); err != nil {
		t.Fatalf("expected a provider miss to succeed without retry, got %v", err)
	}
	if pins.calls != 0 {
		t.Fatal("expected no address write for a provider miss")
	}
}

func TestHandlePinReverseGeocode_BadPayload(t *testing.T) {
	pins := &fakeAddressWriter{}
	w := newTestWorker("http://127.0.0.1:0", pins)

	task, err := NewPinReverseGeocodeTask(PinReverseGeocodePayload{PinID: "not-a-uuid"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := w.handlePinReverseGeocode(context.Background(), task); err == nil {
		t.Fatal("expected an error for an invalid pin id")
	}
	if pins.calls != 0 {
		t.Fatal("expected no address write")
	}
}
