package tests

import (
	"context"
	"testing"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/repository"
	"github.com/stitch/cms/internal/service"
	"github.com/stitch/cms/internal/testing/fixtures"
	"github.com/stitch/cms/internal/testing/helpers"
	"github.com/stitch/cms/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Site Settings
DOMAIN: Platform

ACCEPTANCE CRITERIA:
===================

AC-SET-001: Create Setting
  GIVEN a valid key and value
  WHEN an admin creates a setting
  THEN it is stored and retrievable by key

AC-SET-002: Duplicate Key Rejected
  GIVEN an existing key
  WHEN a setting is created with the same key
  THEN the request fails with a key conflict

AC-SET-003: Secret Masking
  GIVEN a setting whose key looks like a secret
  WHEN settings are listed or fetched
  THEN the value is masked

AC-SET-004: Site Config Defaults
  GIVEN no stored site config
  WHEN the site config is requested
  THEN the built-in defaults are returned

AC-SET-005: Initialize Defaults
  GIVEN a fresh database
  WHEN defaults are initialized
  THEN missing settings are seeded
  AND a second run creates nothing
*/

func createSettingService(tdb *testdb.TestDB) *service.SettingService {
	return service.NewSettingService(service.SettingServiceConfig{
		SettingRepo: repository.NewSettingRepository(tdb.DB),
	})
}

func TestSettings_CreateAndGet(t *testing.T) {
	// AC-SET-001: Create Setting
	tdb := testdb.New(t)
	defer tdb.Close()

	svc := createSettingService(tdb)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.CreateSettingRequest{
		Key:         "posts_per_page",
		Value:       float64(25),
		Description: helpers.StringPtr("Items per page on public listings"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	fetched, err := svc.Get(ctx, "posts_per_page")
	require.NoError(t, err)
	assert.Equal(t, "posts_per_page", fetched.Key)
	assert.EqualValues(t, 25, fetched.Value)
}

func TestSettings_CreateValidation(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	svc := createSettingService(tdb)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.CreateSettingRequest{Key: "   ", Value: "x"})
	require.ErrorIs(t, err, service.ErrSettingKeyRequired)

	long := make([]byte, model.MaxSettingKeyLength+1)
	for i := range long {
		long[i] = 'k'
	}
	_, err = svc.Create(ctx, model.CreateSettingRequest{Key: string(long), Value: "x"})
	require.ErrorIs(t, err, service.ErrSettingKeyTooLong)
}

func TestSettings_DuplicateKeyRejected(t *testing.T) {
	// AC-SET-002: Duplicate Key Rejected
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createSettingService(tdb)
	ctx := context.Background()

	f.CreateSetting(t, "timezone", "UTC")

	_, err := svc.Create(ctx, model.CreateSettingRequest{Key: "timezone", Value: "Europe/Berlin"})
	require.ErrorIs(t, err, service.ErrSettingKeyExists)
}

func TestSettings_UpdateAndDelete(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createSettingService(tdb)
	ctx := context.Background()

	f.CreateSetting(t, "maintenance_mode", false)

	updated, err := svc.Update(ctx, "maintenance_mode", model.UpdateSettingRequest{Value: true})
	require.NoError(t, err)
	assert.Equal(t, true, updated.Value)

	require.NoError(t, svc.Delete(ctx, "maintenance_mode"))

	_, err = svc.Get(ctx, "maintenance_mode")
	require.ErrorIs(t, err, service.ErrSettingNotFound)

	// Deleting again reports not found
	require.ErrorIs(t, svc.Delete(ctx, "maintenance_mode"), service.ErrSettingNotFound)
}

func TestSettings_SecretMasking(t *testing.T) {
	// AC-SET-003: Secret Masking
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createSettingService(tdb)
	ctx := context.Background()

	f.CreateSetting(t, "smtp_password", "super-secret-value")

	fetched, err := svc.Get(ctx, "smtp_password")
	require.NoError(t, err)

	value, ok := fetched.Value.(string)
	require.True(t, ok)
	assert.NotEqual(t, "super-secret-value", value)
	assert.Contains(t, value, "*")
}

func TestSettings_SiteConfigDefaults(t *testing.T) {
	// AC-SET-004: Site Config Defaults
	tdb := testdb.New(t)
	defer tdb.Close()

	svc := createSettingService(tdb)
	ctx := context.Background()

	config, err := svc.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stitch CMS", config.SiteTitle)
	assert.NotEmpty(t, config.Theme.PrimaryColor)
}

func TestSettings_UpdateSiteConfig(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	svc := createSettingService(tdb)
	ctx := context.Background()

	config := model.DefaultSiteConfig()
	config.SiteTitle = "My Blog"
	config.SocialLinks = map[string]string{"mastodon": "https://example.social/@me"}

	_, err := svc.UpdateSiteConfig(ctx, config)
	require.NoError(t, err)

	fetched, err := svc.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "My Blog", fetched.SiteTitle)
	assert.Equal(t, "https://example.social/@me", fetched.SocialLinks["mastodon"])
}

func TestSettings_InitializeDefaults(t *testing.T) {
	// AC-SET-005: Initialize Defaults
	tdb := testdb.New(t)
	defer tdb.Close()

	svc := createSettingService(tdb)
	ctx := context.Background()

	created, err := svc.InitializeDefaults(ctx)
	require.NoError(t, err)
	assert.Greater(t, created, 0)

	// All seeded keys resolve
	_, err = svc.Get(ctx, "posts_per_page")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "timezone")
	require.NoError(t, err)

	// Existing keys are never overwritten
	_, err = svc.Update(ctx, "timezone", model.UpdateSettingRequest{Value: "Europe/Berlin"})
	require.NoError(t, err)

	again, err := svc.InitializeDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again)

	tz, err := svc.Get(ctx, "timezone")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", tz.Value)
}
