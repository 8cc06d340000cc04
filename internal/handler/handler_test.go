package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
	"rideflux/internal/service"
	"rideflux/internal/tests"
)

func TestCreateRideRequest_BindsVehicleType(t *testing.T) {
	body := `{
		"rider_id": "rider-1",
		"pickup_lat": 12.97, "pickup_lng": 77.59,
		"dest_lat": 12.93, "dest_lng": 77.62,
		"vehicle_type": "sedan",
		"payment_method": "card"
	}`

	var req CreateRideRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "sedan", req.VehicleClass)

	var driverReq RegisterDriverRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Asha", "vehicle_type": "mini"}`), &driverReq))
	assert.Equal(t, "mini", driverReq.VehicleClass)
}

func TestResponses_UseVehicleTypeKey(t *testing.T) {
	ride := &domain.Ride{
		ID:              "ride-1",
		RiderID:         "rider-1",
		Status:          domain.RideStatusMatching,
		VehicleClass:    domain.VehicleSedan,
		PaymentMethod:   domain.PaymentMethodCard,
		SurgeMultiplier: decimal.RequireFromString("1.00"),
		EstimatedFare:   decimal.RequireFromString("170.00"),
	}
	payload, err := json.Marshal(rideToResponse(ride))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"vehicle_type":"sedan"`)
	assert.NotContains(t, string(payload), "vehicle_class")

	driver := &domain.Driver{
		ID:           "driver-1",
		Name:         "Asha",
		VehicleClass: domain.VehicleMini,
		Status:       domain.DriverStatusAvailable,
		Rating:       decimal.RequireFromString("4.8"),
	}
	payload, err = json.Marshal(driverToResponse(driver))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"vehicle_type":"mini"`)
	assert.NotContains(t, string(payload), "vehicle_class")
}

func acceptedRideRow(rideID, driverID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "rider_id", "status", "pickup_lat", "pickup_lng", "pickup_address",
		"dest_lat", "dest_lng", "dest_address", "vehicle_class", "payment_method",
		"surge_multiplier", "estimated_fare", "matched_driver_id", "idempotency_key",
		"offers_made", "max_offers", "created_at", "updated_at",
	}).AddRow(
		rideID, "rider-1", string(domain.RideStatusAccepted), 12.97, 77.59, "",
		12.93, 77.62, "", string(domain.VehicleSedan), string(domain.PaymentMethodCard),
		"1.00", "170.00", driverID, nil,
		1, 3, now, now,
	)
}

func TestStartTrip_RespondsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM rides WHERE id = \$1 FOR UPDATE`).
		WithArgs("ride-1").
		WillReturnRows(acceptedRideRow("ride-1", "driver-1"))
	mock.ExpectExec(`UPDATE rides`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO trips`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := service.NewTripService(db, tests.NewMockTripRepository(), tests.NewMockRideRepository(), tests.NewMockRideCache(), tests.NewMockEventPublisher())
	router := gin.New()
	router.POST("/v1/trips/:id/start", NewTripHandler(svc).StartTrip)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trips/ride-1/start", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp TripResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ride-1", resp.RideID)
	assert.Equal(t, string(domain.TripStatusInProgress), resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
