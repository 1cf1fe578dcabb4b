package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAgency(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/auth/verify-agency", "", gin.H{"code": "NICE01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Agency struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"agency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NICE01", resp.Agency.Code)
	assert.Equal(t, "Agence Nice Centre", resp.Agency.Name)

	rec = h.do(t, http.MethodPost, "/auth/verify-agency", "", gin.H{"code": "NOPE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorType(t, rec))

	// A deactivated agency answers exactly like an unknown one.
	inactive := h.createAgency(t, "LYON01", "Agence Lyon Presquile")
	require.NoError(t, h.db.Model(&agencydomain.Agency{}).
		Where("id = ?", inactive.ID).
		Update("is_active", false).Error)

	rec = h.do(t, http.MethodPost, "/auth/verify-agency", "", gin.H{"code": "LYON01"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorType(t, rec))
}

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "agent@nice.fr", userdomain.RoleAgent, &h.agencyA.ID)

	token := h.login(t, "agent@nice.fr", "NICE01")

	rec := h.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me userdomain.User
	decodeData(t, rec, &me)
	assert.Equal(t, "agent@nice.fr", me.Email)
	assert.Equal(t, userdomain.RoleAgent, me.Role)

	rec = h.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":      "agent@nice.fr",
		"password":   "wrong-pass",
		"agencyCode": "NICE01",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorType(t, rec))
}

func TestAPIRequiresToken(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/clients", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientTenantIsolation(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "agent@nice.fr", userdomain.RoleAgent, &h.agencyA.ID)
	h.createUser(t, "agent@paris.fr", userdomain.RoleAgent, &h.agencyB.ID)

	tokenA := h.login(t, "agent@nice.fr", "NICE01")
	tokenB := h.login(t, "agent@paris.fr", "PARIS01")

	rec := h.do(t, http.MethodPost, "/api/clients", tokenA, gin.H{
		"first_name":  "Marie",
		"last_name":   "Dupont",
		"email":       "marie.dupont@example.fr",
		"client_type": "BUYER",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.ID)

	rec = h.do(t, http.MethodGet, "/api/clients/"+created.ID, tokenA, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Existing rows of another agency answer 403, nonexistent ids answer 404.
	rec = h.do(t, http.MethodGet, "/api/clients/"+created.ID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorType(t, rec))

	rec = h.do(t, http.MethodGet, "/api/clients/"+h.node.Generate().String(), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorType(t, rec))

	// Listing never leaks across agencies.
	rec = h.do(t, http.MethodGet, "/api/clients", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Items []json.RawMessage `json:"items"`
	}
	decodeData(t, rec, &listing)
	assert.Empty(t, listing.Items)
}

func TestContractNumberingPerAgency(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "agent@nice.fr", userdomain.RoleAgent, &h.agencyA.ID)
	h.createUser(t, "agent@paris.fr", userdomain.RoleAgent, &h.agencyB.ID)

	tokenA := h.login(t, "agent@nice.fr", "NICE01")
	tokenB := h.login(t, "agent@paris.fr", "PARIS01")

	createContract := func(token string) string {
		rec := h.do(t, http.MethodPost, "/api/contracts", token, gin.H{
			"type":        "SALE",
			"price":       250000,
			"property_id": h.node.Generate().String(),
			"client_id":   h.node.Generate().String(),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created struct {
			ContractNumber string `json:"contract_number"`
		}
		decodeData(t, rec, &created)
		return created.ContractNumber
	}

	assert.Equal(t, "CTR-000001", createContract(tokenA))
	assert.Equal(t, "CTR-000002", createContract(tokenA))

	// Each agency owns its own counter.
	assert.Equal(t, "CTR-000001", createContract(tokenB))
	assert.Equal(t, "CTR-000002", createContract(tokenB))
	assert.Equal(t, "CTR-000003", createContract(tokenA))
}

func TestSecretaryCapabilities(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "secretaire@nice.fr", userdomain.RoleSecretary, &h.agencyA.ID)
	token := h.login(t, "secretaire@nice.fr", "NICE01")

	rec := h.do(t, http.MethodGet, "/api/clients", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/clients", token, gin.H{
		"first_name": "Paul",
		"last_name":  "Morel",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorType(t, rec))

	// Workload objects stay open to secretaries.
	rec = h.do(t, http.MethodPost, "/api/tasks", token, gin.H{
		"title": "Rappeler M. Bernard",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAgentCannotManageUsers(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "agent@nice.fr", userdomain.RoleAgent, &h.agencyA.ID)
	token := h.login(t, "agent@nice.fr", "NICE01")

	rec := h.do(t, http.MethodPost, "/auth/register", token, gin.H{
		"email":      "nouveau@nice.fr",
		"password":   "s3cret-pass",
		"first_name": "Luc",
		"last_name":  "Petit",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorType(t, rec))
}

func TestAgencyListIsSuperAdminOnly(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "manager@nice.fr", userdomain.RoleManager, &h.agencyA.ID)
	h.createUser(t, "root@courtier.local", userdomain.RoleSuperAdmin, nil)

	managerToken := h.login(t, "manager@nice.fr", "NICE01")
	rootToken := h.login(t, "root@courtier.local", "")

	rec := h.do(t, http.MethodGet, "/api/agencies", managerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorType(t, rec))

	rec = h.do(t, http.MethodGet, "/api/agencies", rootToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var listing struct {
		Items []struct {
			Code string `json:"code"`
		} `json:"items"`
	}
	decodeData(t, rec, &listing)

	codes := make([]string, 0, len(listing.Items))
	for _, item := range listing.Items {
		codes = append(codes, item.Code)
	}
	assert.Contains(t, codes, "NICE01")
	assert.Contains(t, codes, "PARIS01")
}

func TestDashboardEndpoint(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "agent@nice.fr", userdomain.RoleAgent, &h.agencyA.ID)
	token := h.login(t, "agent@nice.fr", "NICE01")

	rec := h.do(t, http.MethodGet, "/api/analytics/dashboard?period=month", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/analytics/dashboard?period=quarter", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorType(t, rec))
}
