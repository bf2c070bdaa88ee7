package providers

import (
	"context"
	"net/http"
	"testing"

	"wanderlust-service/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmadeusNearby(t *testing.T) {
	var last *http.Request
	srv := serve(t, http.StatusOK, `{"data":[
		{"subType":"AIRPORT","iataCode":"BLR"},
		{"subType":"CITY","iataCode":"BLR"},
		{"subType":"AIRPORT","iataCode":"MYQ"}
	]}`, &last)
	am := NewAmadeus(testOptions(srv.URL))

	codes, err := am.SearchNearbyAirports(context.Background(), 12.9, 77.6, 900)
	require.NoError(t, err)
	assert.Equal(t, []string{"BLR", "MYQ"}, codes)
	assert.Equal(t, "500", last.URL.Query().Get("radius"))
	assert.Equal(t, "/reference-data/locations/airports", last.URL.Path)
}

func TestAmadeusOtherOperationsUnsupported(t *testing.T) {
	am := NewAmadeus(testOptions("http://127.0.0.1:1"))
	_, err := am.GetFlightDuration(context.Background(), "BLR", "DXB")
	assert.ErrorIs(t, err, errs.ErrUnsupported)
}
