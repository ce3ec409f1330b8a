//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsDatabase(t *testing.T) {
	server := newServer(t)

	status, body := call(t, server, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"database":"UP"`)
	assert.Contains(t, string(body), `"users_total":1`)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	server := newServer(t)

	status, body := call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "Teacher.One@School.edu",
		"username":   "tone",
		"password":   "teacher-pass-1",
		"first_name": "Tea",
		"last_name":  "Cher",
		"role":       "teacher",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "teacher.one@school.edu",
		"password":   "teacher-pass-1",
		"first_name": "Dup",
		"last_name":  "Licate",
	})
	assert.Equal(t, http.StatusConflict, status)

	token := login(t, server, "TEACHER.ONE@school.edu", "teacher-pass-1")

	status, body = call(t, server, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var env struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "teacher.one@school.edu", env.Data.Email)
	assert.Equal(t, "TEACHER", env.Data.Role)
}

func TestCoordinatorCheck(t *testing.T) {
	server := newServer(t)

	status, body := call(t, server, http.MethodGet, "/api/auth/check-coordinator", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"exists":false`)

	status, _ = call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "coord@school.edu",
		"password":   "coordinator-1",
		"first_name": "Co",
		"last_name":  "Ord",
		"role":       "COORDINATOR",
	})
	require.Equal(t, http.StatusCreated, status)

	_, body = call(t, server, http.MethodGet, "/api/auth/check-coordinator", "", nil)
	assert.Contains(t, string(body), `"exists":true`)
}

func TestAdminDeactivationRevokesAccess(t *testing.T) {
	server := newServer(t)

	status, body := call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "student@school.edu",
		"password":   "student-pass-1",
		"first_name": "Stu",
		"last_name":  "Dent",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var registered struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &registered))

	adminToken := login(t, server, adminEmail, adminPassword)

	status, _ = call(t, server, http.MethodGet, "/api/admin/users", registered.Data.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, server, http.MethodPatch, "/api/admin/users/"+registered.Data.User.ID+"/status", adminToken,
		map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = call(t, server, http.MethodGet, "/api/users/me", registered.Data.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "student@school.edu",
		"password": "student-pass-1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminCannotDeactivateSelf(t *testing.T) {
	server := newServer(t)
	adminToken := login(t, server, adminEmail, adminPassword)

	status, body := call(t, server, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var env struct {
		Data struct {
			Users []struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.Len(t, env.Data.Users, 1)

	status, _ = call(t, server, http.MethodPatch, "/api/admin/users/"+env.Data.Users[0].ID+"/status", adminToken,
		map[string]bool{"active": false})
	assert.Equal(t, http.StatusForbidden, status)
}
