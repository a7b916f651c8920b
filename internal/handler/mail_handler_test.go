package handler

import (
	"net/http"
	"testing"

	"github.com/Univesp-PIs/pi4-back/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMailMissingFields(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, SendMail, http.MethodPost, "/api/mail/send", map[string]interface{}{
		"sender": "noreply@test.com",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]interface{})
	for _, field := range []string{"recipient", "subject", "body"} {
		assert.Len(t, errs[field], 1)
	}
}

func TestSendMailRequiresSenderOrServer(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, SendMail, http.MethodPost, "/api/mail/send", map[string]interface{}{
		"recipient": "dest@test.com",
		"subject":   "hello",
		"body":      "world",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]interface{})
	assert.Len(t, errs["sender"], 1)
}

func TestSendMailUnknownSender(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, SendMail, http.MethodPost, "/api/mail/send", map[string]interface{}{
		"sender":    "nobody@test.com",
		"recipient": "dest@test.com",
		"subject":   "hello",
		"body":      "world",
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "sender configuration not found", decodeBody(t, rec)["error"])
}

func TestSendMailInactiveSender(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&model.EmailConfiguration{
		Email:      "disabled@test.com",
		Password:   "secret",
		SMTPServer: "smtp.test.com",
		SMTPPort:   587,
		Status:     false,
	}).Error)

	rec := doRequest(t, SendMail, http.MethodPost, "/api/mail/send", map[string]interface{}{
		"sender":    "disabled@test.com",
		"recipient": "dest@test.com",
		"subject":   "hello",
		"body":      "world",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmailConfigurationLifecycle(t *testing.T) {
	db := setupTestDB(t)

	rec := doRequest(t, CreateEmailConfiguration, http.MethodPost, "/api/mail/configurations", map[string]interface{}{
		"email":       "noreply@test.com",
		"password":    "secret",
		"smtp_server": "smtp.test.com",
		"smtp_port":   587,
		"use_ssl":     false,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody(t, rec)["configuration"].(map[string]interface{})
	id := created["id"].(float64)
	assert.Equal(t, true, created["status"])
	// The password must never appear in responses
	assert.NotContains(t, created, "password")

	// Duplicate sender address is rejected
	rec = doRequest(t, CreateEmailConfiguration, http.MethodPost, "/api/mail/configurations", map[string]interface{}{
		"email":       "noreply@test.com",
		"smtp_server": "smtp.test.com",
		"smtp_port":   587,
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, UpdateEmailConfiguration, http.MethodPut, "/api/mail/configurations/1", map[string]interface{}{
		"smtp_port": 465,
		"use_ssl":   true,
	}, map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg model.EmailConfiguration
	require.NoError(t, db.First(&cfg, uint(id)).Error)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.True(t, cfg.UseSSL)
	assert.Equal(t, "smtp.test.com", cfg.SMTPServer)

	rec = doRequest(t, ListEmailConfigurations, http.MethodGet, "/api/mail/configurations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = doRequest(t, DeleteEmailConfiguration, http.MethodDelete, "/api/mail/configurations/1", nil, map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, DeleteEmailConfiguration, http.MethodDelete, "/api/mail/configurations/1", nil, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEmailConfigurationMissingFields(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, CreateEmailConfiguration, http.MethodPost, "/api/mail/configurations", map[string]interface{}{
		"email": "noreply@test.com",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]interface{})
	assert.Len(t, errs["smtp_server"], 1)
	assert.Len(t, errs["smtp_port"], 1)
	assert.Empty(t, errs["email"])
}
