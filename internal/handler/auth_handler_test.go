package handler

import (
	"net/http"
	"testing"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/config"
	"github.com/Univesp-PIs/pi4-back/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler() *AuthHandler {
	return NewAuthHandler(jwtutil.NewJWTUtil(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	}))
}

func TestSignupThenLogin(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	rec := doRequest(t, h.Signup, http.MethodPost, "/auth/signup", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h.Login, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "login successful", body["message"])

	payload := body["payload"].(map[string]interface{})
	assert.NotEmpty(t, payload["token"])
	assert.Equal(t, "janedoe@test.com", payload["user_email"])
	assert.Equal(t, "Jane Doe", payload["user_name"])
	assert.NotZero(t, payload["expiry_timestamp"])
}

func TestLoginTokenIsStable(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	doRequest(t, h.Signup, http.MethodPost, "/auth/signup", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)

	login := map[string]interface{}{"email": "janedoe@test.com", "password": "password456"}
	first := decodeBody(t, doRequest(t, h.Login, http.MethodPost, "/auth/login", login, nil))
	second := decodeBody(t, doRequest(t, h.Login, http.MethodPost, "/auth/login", login, nil))

	firstToken := first["payload"].(map[string]interface{})["token"]
	secondToken := second["payload"].(map[string]interface{})["token"]
	assert.Equal(t, firstToken, secondToken, "the bearer token is fixed once issued")
}

func TestLoginWrongPassword(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	doRequest(t, h.Signup, http.MethodPost, "/auth/signup", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)

	rec := doRequest(t, h.Login, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "janedoe@test.com",
		"password": "wrong",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, rec)["error"])
}

func TestLoginUnknownEmail(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	rec := doRequest(t, h.Login, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "nobody@test.com",
		"password": "password456",
	}, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", decodeBody(t, rec)["error"])
}

func TestLoginMissingFields(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	rec := doRequest(t, h.Login, http.MethodPost, "/auth/login", map[string]interface{}{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]interface{})
	emailErrs := errs["email"].([]interface{})
	require.Len(t, emailErrs, 1)
	first := emailErrs[0].(map[string]interface{})
	assert.Equal(t, "this field is required", first["message"])
	assert.Equal(t, "required", first["code"])
}

func TestSignupDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	payload := map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}
	doRequest(t, h.Signup, http.MethodPost, "/auth/signup", payload, nil)

	rec := doRequest(t, h.Signup, http.MethodPost, "/auth/signup", payload, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already registered", decodeBody(t, rec)["error"])
}

func TestSignupStoresHashedPassword(t *testing.T) {
	db := setupTestDB(t)
	h := newTestAuthHandler()

	doRequest(t, h.Signup, http.MethodPost, "/auth/signup", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)

	var credential model.Credential
	require.NoError(t, db.Where("email = ?", "janedoe@test.com").First(&credential).Error)
	assert.NotEqual(t, "password456", credential.Password)
	assert.NotEmpty(t, credential.Token)
}

func TestAdminCreateTwoStepFlow(t *testing.T) {
	db := setupTestDB(t)
	h := newTestAuthHandler()

	// Step 1: create the pending account
	rec := doRequest(t, h.AdminCreate, http.MethodPost, "/auth/admin-create", map[string]interface{}{
		"name":     "Admin",
		"email":    "admin@test.com",
		"password": "adminpass",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	authCode := decodeBody(t, rec)["auth_code"].(string)
	require.NotEmpty(t, authCode)

	var pending model.Credential
	require.NoError(t, db.Where("email = ?", "admin@test.com").First(&pending).Error)
	assert.False(t, pending.Status, "account must stay inactive until confirmed")
	require.NotNil(t, pending.AuthCode)

	// Wrong code is forbidden and changes nothing
	rec = doRequest(t, h.AdminCreate, http.MethodPost, "/auth/admin-create", map[string]interface{}{
		"email":     "admin@test.com",
		"auth_code": "wrong-code",
	}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, db.Where("email = ?", "admin@test.com").First(&pending).Error)
	assert.False(t, pending.Status)

	// Step 2: the right code activates and clears the one-time code
	rec = doRequest(t, h.AdminCreate, http.MethodPost, "/auth/admin-create", map[string]interface{}{
		"email":     "admin@test.com",
		"auth_code": authCode,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var confirmed model.Credential
	require.NoError(t, db.Where("email = ?", "admin@test.com").First(&confirmed).Error)
	assert.True(t, confirmed.Status)
	assert.Nil(t, confirmed.AuthCode)
	assert.NotEmpty(t, confirmed.Token)

	// The activated account can log in
	rec = doRequest(t, h.Login, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "admin@test.com",
		"password": "adminpass",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCreateConflictAndMissingPending(t *testing.T) {
	setupTestDB(t)
	h := newTestAuthHandler()

	doRequest(t, h.Signup, http.MethodPost, "/auth/signup", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)

	rec := doRequest(t, h.AdminCreate, http.MethodPost, "/auth/admin-create", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "janedoe@test.com",
		"password": "password456",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, h.AdminCreate, http.MethodPost, "/auth/admin-create", map[string]interface{}{
		"email":     "noone@test.com",
		"auth_code": "some-code",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
