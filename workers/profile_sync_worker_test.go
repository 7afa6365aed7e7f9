package workers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"
	"github.com/gbonee/hustle-vibes-africa-sub000/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesPayload = `{"profiles":[
	{"external_id":"u1","username":"ada99","first_name":"Ada","last_name":"Obi","profile_picture_url":"https://cdn.test/ada.png","preferred_language":"ig","account_status":"active","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-02-01T00:00:00Z"},
	{"external_id":"u2","username":"musa","account_status":"suspended","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-02-02T00:00:00Z"},
	{"external_id":"","username":"ghost"}
]}`

func TestProfileSyncUpsertsProfiles(t *testing.T) {
	db := testutil.NewDB(t)
	var since string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/public/profiles", r.URL.Path)
		assert.Equal(t, "svc-token", r.Header.Get("X-Service-Token"))
		since = r.URL.Query().Get("since")
		_, _ = w.Write([]byte(profilesPayload))
	}))
	defer srv.Close()

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "svc-token", logger.Nop())
	n, err := w.SyncOnce(context.Background(), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "2026-01-15T00:00:00Z", since)

	var ada models.Profile
	require.NoError(t, db.Where("external_user_id = ?", "u1").First(&ada).Error)
	assert.Equal(t, "Ada Obi", ada.DisplayName)
	require.NotNil(t, ada.AvatarURL)
	require.NotNil(t, ada.PreferredLanguage)
	assert.Equal(t, "ig", *ada.PreferredLanguage)

	// suspended accounts are mirrored soft-deleted
	var musa models.Profile
	assert.Error(t, db.Where("external_user_id = ?", "u2").First(&musa).Error)
	require.NoError(t, db.Unscoped().Where("external_user_id = ?", "u2").First(&musa).Error)
	assert.Equal(t, "musa", musa.DisplayName)

	assert.Equal(t, 2026, w.lastSyncTime().Year())
}

func TestProfileSyncUpdatesExisting(t *testing.T) {
	db := testutil.NewDB(t)
	name := "Ada"
	payload := `{"profiles":[{"external_id":"u1","username":"ada","first_name":"` + name + `","account_status":"active","updated_at":"2026-02-01T00:00:00Z"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	w := NewProfileSyncWorker(db, srv.URL, "/profiles", "t", logger.Nop())
	_, err := w.SyncOnce(context.Background(), time.Time{})
	require.NoError(t, err)

	payload = `{"profiles":[{"external_id":"u1","username":"ada","first_name":"Adaeze","account_status":"active","updated_at":"2026-03-01T00:00:00Z"}]}`
	_, err = w.SyncOnce(context.Background(), time.Time{})
	require.NoError(t, err)

	var profiles []models.Profile
	require.NoError(t, db.Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Adaeze", profiles[0].DisplayName)
}

func TestProfileSyncNon200(t *testing.T) {
	db := testutil.NewDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewProfileSyncWorker(db, srv.URL, "/profiles", "t", logger.Nop()).SyncOnce(context.Background(), time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDisplayNameFallsBackToUsername(t *testing.T) {
	last := "Bello"
	assert.Equal(t, "Bello", RemoteProfile{Username: "x", LastName: &last}.DisplayName())
	assert.Equal(t, "x", RemoteProfile{Username: "x"}.DisplayName())
}
