package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/config"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Validation runs before any storage access, so these requests exercise the
// handler with no database behind it.
func searchRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	log := &logger.Logger{Logger: zap.NewNop()}
	r.GET("/api/rides/find", FindRides(nil, log, config.CacheConfig{}))
	return r
}

func TestFindRidesRejectsInvalidQueries(t *testing.T) {
	r := searchRouter()

	cases := []struct {
		name  string
		query string
		field string
	}{
		{"no params", "", "from"},
		{"undefined origin", "from=undefined&to=Kumasi&seat=1&date=2026-03-14", "from"},
		{"missing destination", "from=Accra&seat=1&date=2026-03-14", "to"},
		{"missing seats", "from=Accra&to=Kumasi&date=2026-03-14", "seat"},
		{"zero seats", "from=Accra&to=Kumasi&seat=0&date=2026-03-14", "seat"},
		{"bad date", "from=Accra&to=Kumasi&seat=1&date=tomorrow", "date"},
		{"unknown tag", "from=Accra&to=Kumasi&seat=1&date=2026-03-14&tags=Turbo", "tags"},
		{"unknown sort", "from=Accra&to=Kumasi&seat=1&date=2026-03-14&sort=rating", "sort"},
		{"unknown bucket", "from=Accra&to=Kumasi&seat=1&date=2026-03-14&depart=night", "depart"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/rides/find?"+tc.query, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.field, body["field"])
			assert.NotEmpty(t, body["message"])
		})
	}
}
