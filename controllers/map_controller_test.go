package controllers

import (
	"testing"

	"github.com/aquasentra/api-go/models"
	"github.com/aquasentra/api-go/utils"
	"github.com/stretchr/testify/assert"
)

func TestCacheScopeSeparatesCitizens(t *testing.T) {
	// Citizens see their own private reports mixed into map results, so two
	// citizens must never resolve to the same cache entry.
	a := cacheScope(&utils.UserClaims{UserID: 1, Role: models.RoleCitizen})
	b := cacheScope(&utils.UserClaims{UserID: 2, Role: models.RoleCitizen})
	assert.NotEqual(t, a, b)
}

func TestCacheScopeSharedForElevatedRoles(t *testing.T) {
	v1 := cacheScope(&utils.UserClaims{UserID: 3, Role: models.RoleVerifier})
	v2 := cacheScope(&utils.UserClaims{UserID: 4, Role: models.RoleVerifier})
	assert.Equal(t, v1, v2, "elevated roles all see the full set")

	citizen := cacheScope(&utils.UserClaims{UserID: 3, Role: models.RoleCitizen})
	assert.NotEqual(t, v1, citizen, "a citizen never shares an entry with an elevated role")
}
