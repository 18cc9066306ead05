package weather

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `{
	"properties": {
		"parameter": {
			"T2M": {"20230601": 20.0, "20230602": 22.0, "20230603": null, "20230604": -999.0},
			"T2M_MAX": {"20230601": 28.0, "20230602": 31.0},
			"T2M_MIN": {"20230601": 12.0, "20230602": 14.0},
			"PRECTOTCORR": {"20230601": 5.0, "20230602": 3.0, "20230603": -999.0},
			"RH2M": {"20230601": 60.0, "20230602": 70.0},
			"ALLSKY_SFC_SW_DWN": {"20230601": 18.0, "20230602": 22.0},
			"WS2M": {"20230601": 3.0, "20230602": 5.0}
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient()
	client.SetBaseURL(server.URL)
	return client, server
}

func TestWeatherAggregatesDailyValues(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("community") != "AG" {
			t.Errorf("community = %q, want AG", q.Get("community"))
		}
		if q.Get("start") != "20230601" || q.Get("end") != "20230630" {
			t.Errorf("unexpected date range %s-%s", q.Get("start"), q.Get("end"))
		}
		w.Write([]byte(sampleResponse))
	})

	obs, err := client.Weather(context.Background(), 48.1, 11.5, "20230601", "20230630")
	if err != nil {
		t.Fatalf("Weather failed: %v", err)
	}

	// Null and -999 entries must be excluded from the aggregates.
	if math.Abs(obs.TempAvg-21) > 1e-9 {
		t.Errorf("TempAvg = %f, want 21", obs.TempAvg)
	}
	if obs.TempMax != 31 {
		t.Errorf("TempMax = %f, want 31", obs.TempMax)
	}
	if obs.TempMin != 12 {
		t.Errorf("TempMin = %f, want 12", obs.TempMin)
	}
	if obs.TotalPrecipitation != 8 {
		t.Errorf("TotalPrecipitation = %f, want 8", obs.TotalPrecipitation)
	}
	if obs.AvgPrecipitation != 4 {
		t.Errorf("AvgPrecipitation = %f, want 4", obs.AvgPrecipitation)
	}
	if obs.Source != "NASA POWER API" {
		t.Errorf("Source = %q", obs.Source)
	}
}

func TestWeatherRejectsServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.Weather(context.Background(), 0, 0, "20230101", "20230131")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestWeatherRejectsEmptyParameterData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties": {"parameter": {}}}`))
	})

	_, err := client.Weather(context.Background(), 0, 0, "20230101", "20230131")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestWeatherRejectsAllMissingTemperature(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties": {"parameter": {"T2M": {"20230101": -999.0}}}}`))
	})

	_, err := client.Weather(context.Background(), 0, 0, "20230101", "20230131")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestEstimateFromLatitude(t *testing.T) {
	obs := EstimateFromLatitude(-45, 170)

	if math.Abs(obs.TempAvg-10) > 1e-9 {
		t.Errorf("TempAvg = %f, want 10", obs.TempAvg)
	}
	if obs.TempMin != obs.TempAvg-10 || obs.TempMax != obs.TempAvg+10 {
		t.Error("min/max are not a ±10 band around the average")
	}
	if obs.AvgPrecipitation != 100 || obs.Humidity != 60 || obs.SolarRadiation != 20 || obs.WindSpeed != 5 {
		t.Errorf("unexpected defaults: %+v", obs)
	}

	equator := EstimateFromLatitude(0, 0)
	if equator.TempAvg != 28 {
		t.Errorf("equator TempAvg = %f, want 28", equator.TempAvg)
	}
}
