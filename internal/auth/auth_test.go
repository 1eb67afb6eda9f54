package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/menuqr/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)

	tests := []struct {
		name    string
		stored  string
		input   string
		wantErr error
	}{
		{name: "empty token denied", stored: "", input: "abc", wantErr: ErrUnauthorized},
		{name: "mismatched token denied", stored: "abc", input: "xyz", wantErr: ErrUnauthorized},
		{name: "matching token accepted", stored: "abc", input: "abc", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	testlog.Start(t)

	if tok, ok := BearerToken("Bearer s3cret"); !ok || tok != "s3cret" {
		t.Fatalf("expected token, got %q %v", tok, ok)
	}
	if tok, ok := BearerToken("bearer s3cret"); !ok || tok != "s3cret" {
		t.Fatalf("scheme should be case-insensitive, got %q %v", tok, ok)
	}
	for _, h := range []string{"", "Bearer ", "Basic abc", "Bear"} {
		if _, ok := BearerToken(h); ok {
			t.Fatalf("header %q should not yield a token", h)
		}
	}
}

func TestRequireMiddleware(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/open", Require(nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/gated", Require(StaticToken{Token: "s3cret"}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		path   string
		header string
		want   int
	}{
		{"/open", "", http.StatusNoContent},
		{"/gated", "", http.StatusUnauthorized},
		{"/gated", "Bearer nope", http.StatusUnauthorized},
		{"/gated", "Bearer s3cret", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %q: expected %d, got %d", tc.path, tc.header, tc.want, rec.Code)
		}
	}
}
