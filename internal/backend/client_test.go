package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", WithHTTPClient(srv.Client()))
}

func TestClient_SendsBearerTokenFromContext(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"Gasabo","province":"Kigali City"}]`)
	})

	ctx := WithToken(context.Background(), "tok-123")
	districts, err := c.ListDistricts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/districts", gotPath)
	require.Len(t, districts, 1)
	assert.Equal(t, "Gasabo", districts[0].Name)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var hadAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.ListServices(context.Background())
	require.NoError(t, err)
	assert.False(t, hadAuth)
}

func TestClient_EmptyListIsNotNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/branches/district/Some District", r.URL.Path)
		_, _ = io.WriteString(w, `null`)
	})

	branches, err := c.ListBranchesByDistrict(context.Background(), "Some District")
	require.NoError(t, err)
	assert.NotNil(t, branches)
	assert.Empty(t, branches)
}

func TestClient_ErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"slot already taken"}`)
	})

	_, err := c.CreateAppointment(context.Background(), model.AppointmentInput{UserID: 1})
	require.Error(t, err)
	assert.Equal(t, "slot already taken", err.Error())
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_ErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "json without message", body: `{"error":"x"}`, want: "HTTP error! status: 404"},
		{name: "plain text body", body: `not found here`, want: "Not Found"},
		{name: "empty body", body: ``, want: "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetUser(context.Background(), 9)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestClient_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/appointments/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteAppointment(context.Background(), 42))
}

func TestClient_AuthenticateEmptyBodyIsInvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.Authenticate(context.Background(), model.Credentials{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_AuthenticateSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var cred model.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cred))
		assert.Equal(t, "a@b.c", cred.Email)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"id":7,"username":"ana","email":"a@b.c","role":"CLIENT"}`)
	})

	u, err := c.Authenticate(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, model.RoleClient, u.Role)
}

func TestClient_AppointmentsByDateAndBranchServiceQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments/date/branchServiceId/", r.URL.Path)
		assert.Equal(t, "2025-03-14", r.URL.Query().Get("date"))
		assert.Equal(t, "12", r.URL.Query().Get("branchServiceId"))
		_, _ = io.WriteString(w, `[{"id":1,"date":"2025-03-14","time":"09:00","status":"SCHEDULED"}]`)
	})

	appts, err := c.AppointmentsByDateAndBranchService(context.Background(), "2025-03-14", 12)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "09:00", appts[0].Time)
}

func TestClient_FilteredAppointmentsShapes(t *testing.T) {
	for name, body := range map[string]string{
		"array": `[{"id":1},{"id":2}]`,
		"page":  `{"content":[{"id":1},{"id":2}],"totalElements":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "CANCELLED", q.Get("status"))
				assert.Equal(t, "Gasabo", q.Get("districtName"))
				assert.False(t, q.Has("branchId"))
				_, _ = io.WriteString(w, body)
			})
			appts, err := c.FilteredAppointments(context.Background(), model.AppointmentFilter{
				Status:       model.StatusCancelled,
				DistrictName: "Gasabo",
			})
			require.NoError(t, err)
			assert.Len(t, appts, 2)
		})
	}
}

func TestClient_BatchResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in []model.AppointmentInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Len(t, in, 2)
		_, _ = io.WriteString(w, `{"totalSubmitted":2,"successfullyCreated":1,"failedCount":1,
			"failures":[{"inputIndex":1,"error":"duplicate","data":{"userId":3}}]}`)
	})

	res, err := c.CreateAppointmentsBatch(context.Background(), []model.AppointmentInput{{UserID: 1}, {UserID: 3}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessfullyCreated)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].InputIndex)
	assert.Equal(t, int64(3), res.Failures[0].Data.UserID)
}

func TestClient_UpdateBranchIsNoop(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	require.NoError(t, c.UpdateBranch(context.Background(), 1, model.BranchInput{Name: "x"}))
	require.NoError(t, c.UpdateService(context.Background(), 1, model.ServiceInput{Name: "x"}))
	assert.False(t, called)
}

func TestClient_AnalyticsPeriodParam(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analytics/peak-times", r.URL.Path)
		assert.Equal(t, "2025-03-08_to_2025-03-14", r.URL.Query().Get("period"))
		assert.Equal(t, "hour", r.URL.Query().Get("groupBy"))
		_, _ = io.WriteString(w, `{"9":4}`)
	})

	p := model.Period{
		From: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	raw, err := c.PeakTimes(context.Background(), p, model.GroupByHour)
	require.NoError(t, err)
	assert.JSONEq(t, `{"9":4}`, string(raw))
}

func TestClient_ListTestUsersQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TESTER", r.URL.Query().Get("role"))
		_, _ = io.WriteString(w, `[{"id":5,"role":"TESTER"}]`)
	})

	users, err := c.ListTestUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestClient_TransportErrorIsNotAPIError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
	_, err := c.ListDistricts(context.Background())
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	var apiErr *APIError
	assert.NotErrorAs(t, err, &apiErr)
}
