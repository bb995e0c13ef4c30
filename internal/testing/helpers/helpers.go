package helpers

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/pkg/jwt"
)

// JWTHelper mints tokens for test users against a throwaway RSA key.
type JWTHelper struct {
	privateKey *rsa.PrivateKey
	issuer     string
}

func NewJWTHelper(t *testing.T) *JWTHelper {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("helpers: failed to generate RSA key: %v", err)
	}
	return &JWTHelper{privateKey: privateKey, issuer: "stitch-test"}
}

// GenerateToken issues a one-hour token carrying the user's identity
// and role.
func (h *JWTHelper) GenerateToken(user *model.User) string {
	now := time.Now()
	return h.signToken(jwt.Claims{
		Subject:   user.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		Issuer:    h.issuer,
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
}

// GenerateExpiredToken issues a token that expired an hour ago.
func (h *JWTHelper) GenerateExpiredToken(user *model.User) string {
	issued := time.Now().Add(-2 * time.Hour)
	return h.signToken(jwt.Claims{
		Subject:   user.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Issuer:    h.issuer,
		IssuedAt:  issued.Unix(),
		NotBefore: issued.Unix(),
		ExpiresAt: issued.Add(time.Hour).Unix(),
	})
}

func (h *JWTHelper) signToken(claims jwt.Claims) string {
	claimsJSON, _ := json.Marshal(claims)

	encode := func(data []byte) string {
		return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
	}

	message := encode([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." + encode(claimsJSON)
	digest := sha256.Sum256([]byte(message))
	signature, _ := rsa.SignPKCS1v15(rand.Reader, h.privateKey, crypto.SHA256, digest[:])
	return message + "." + encode(signature)
}

// NewTestJWTService builds a jwt.Service with in-memory keys for wiring
// real auth services in tests.
func NewTestJWTService(t *testing.T) *jwt.Service {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("helpers: failed to generate RSA key: %v", err)
	}
	return jwt.NewTestService(privateKey, "stitch-test", 15*time.Minute)
}

// RequestBuilder assembles httptest requests fluently.
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	headers map[string]string
	jwt     *JWTHelper
	user    *model.User
}

func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{t: t, method: method, path: path, headers: make(map[string]string)}
}

// WithBody sets a JSON-encoded request body.
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithAuth attaches a bearer token for the given user.
func (rb *RequestBuilder) WithAuth(jwt *JWTHelper, user *model.User) *RequestBuilder {
	rb.jwt = jwt
	rb.user = user
	return rb
}

func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	if rb.body != nil {
		encoded, err := json.Marshal(rb.body)
		if err != nil {
			rb.t.Fatalf("helpers: failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)
	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if rb.jwt != nil && rb.user != nil {
		req.Header.Set("Authorization", "Bearer "+rb.jwt.GenerateToken(rb.user))
	}
	return req
}

// AssertStatus fails with the response body included, which is usually
// the fastest way to see why a request was rejected.
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// DecodeResponse unmarshals the full response body into v.
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, resp.Body.String())
	}
}

// GetDataFromResponse unwraps the {"data": ...} envelope.
func GetDataFromResponse(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, resp.Body.String())
	}
	return envelope.Data
}

// bareRecordID strips the table prefix from a full record ID, so both
// "event:abc" and "abc" address the same row.
func bareRecordID(id string) string {
	if _, rest, found := strings.Cut(id, ":"); found {
		return rest
	}
	return id
}

func queryRecord(t *testing.T, db database.Database, table, id string) ([]interface{}, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return db.Query(ctx, "SELECT * FROM type::thing($table, $id)", map[string]interface{}{
		"table": table,
		"id":    bareRecordID(id),
	})
}

// AssertRecordExists fails unless the row is present.
func AssertRecordExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()

	results, err := queryRecord(t, db, table, id)
	if err != nil {
		t.Fatalf("failed to query for record: %v", err)
	}
	if !hasResults(results) {
		t.Errorf("expected record %s:%s to exist, but it doesn't", table, bareRecordID(id))
	}
}

// AssertRecordNotExists fails when the row is still present. Query
// errors count as absence.
func AssertRecordNotExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()

	results, err := queryRecord(t, db, table, id)
	if err != nil {
		return
	}
	if hasResults(results) {
		t.Errorf("expected record %s:%s to not exist, but it does", table, bareRecordID(id))
	}
}

func hasResults(results []interface{}) bool {
	if len(results) == 0 {
		return false
	}
	wrapper, ok := results[0].(map[string]interface{})
	if !ok {
		return false
	}
	switch rows := wrapper["result"].(type) {
	case []interface{}:
		return len(rows) > 0
	case nil:
		return false
	default:
		return true
	}
}

func StringPtr(s string) *string { return &s }

func IntPtr(i int) *int { return &i }

func BoolPtr(b bool) *bool { return &b }

func TimePtr(t time.Time) *time.Time { return &t }
