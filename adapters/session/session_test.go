package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSession_Load(t *testing.T) {
	tests := []struct {
		name      string
		preloaded map[string]string
		mockSetup func(*MockIStore)
		want      map[string]string
		wantErr   string
	}{
		{
			name: "loads from store",
			mockSetup: func(m *MockIStore) {
				m.EXPECT().Load(gomock.Any(), "sid").Return(map[string]string{"theme": "dark"}, nil)
			},
			want: map[string]string{"theme": "dark"},
		},
		{
			name: "missing data becomes empty map",
			mockSetup: func(m *MockIStore) {
				m.EXPECT().Load(gomock.Any(), "sid").Return(nil, nil)
			},
			want: map[string]string{},
		},
		{
			name: "store error",
			mockSetup: func(m *MockIStore) {
				m.EXPECT().Load(gomock.Any(), "sid").Return(nil, errors.New("connection refused"))
			},
			wantErr: "connection refused",
		},
		{
			name:      "already loaded",
			preloaded: map[string]string{"theme": "light"},
			mockSetup: func(*MockIStore) {},
			want:      map[string]string{"theme": "light"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockIStore(ctrl)
			tt.mockSetup(store)

			s := &sessionImpl{id: "sid", ctx: context.Background(), store: store, data: tt.preloaded}
			err := s.Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.data)
		})
	}
}

func TestSession_SaveOnlyWhenChanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockIStore(ctrl)
	store.EXPECT().Load(gomock.Any(), "sid").Return(map[string]string{"state": "abc"}, nil)

	s := NewSession(context.Background(), "sid", store)
	require.NoError(t, s.Load())
	require.NoError(t, s.Save())

	s.Delete("missing")
	require.NoError(t, s.Save())

	store.EXPECT().Save(gomock.Any(), "sid", map[string]string{"theme": "dark"}).Return(nil)
	s.Delete("state")
	s.Set("theme", "dark")
	require.NoError(t, s.Save())
	require.NoError(t, s.Save())
	assert.Equal(t, "dark", s.Get("theme"))
	assert.Equal(t, "sid", s.ID())
}

func TestSession_SaveError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockIStore(ctrl)
	store.EXPECT().Save(gomock.Any(), "sid", map[string]string{}).Return(errors.New("boom")).Times(2)

	s := NewSession(nil, "sid", store)
	s.Clear()
	require.ErrorContains(t, s.Save(), "boom")
	// still dirty, so the next save retries
	require.ErrorContains(t, s.Save(), "boom")
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	existing := uuid.NewString()

	tests := []struct {
		name       string
		cookie     string
		wantReused bool
	}{
		{name: "new visitor gets an id"},
		{name: "valid cookie is reused", cookie: existing, wantReused: true},
		{name: "malformed cookie is replaced", cookie: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockIStore(ctrl)
			store.EXPECT().Load(gomock.Any(), gomock.Any()).Return(map[string]string{}, nil)

			var seen string
			r := gin.New()
			r.Use(GinMiddleware(store, WithCookieSecure(false)))
			r.GET("/", func(c *gin.Context) {
				s, err := GetSession(c)
				require.NoError(t, err)
				seen = s.ID()
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultSessionKeyForCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusNoContent, w.Code)
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, seen, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
			assert.NoError(t, uuid.Validate(seen))
			if tt.wantReused {
				assert.Equal(t, existing, seen)
			} else {
				assert.NotEqual(t, tt.cookie, seen)
			}
		})
	}
}

func TestGetSession_Missing(t *testing.T) {
	_, err := GetSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
