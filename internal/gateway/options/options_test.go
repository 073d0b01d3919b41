package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/hivegate/internal/pkg/server"
)

func TestNewOptionsHasSaneDefaults(t *testing.T) {
	o := NewOptions()

	assert.Equal(t, "0.0.0.0", o.ServingOptions.BindAddress)
	assert.Equal(t, 8080, o.ServingOptions.BindPort)
	assert.Equal(t, "release", o.ServingOptions.Mode)
	assert.Equal(t, "configs/tenants.yaml", o.TenantOptions.ConfigFile)
	assert.False(t, o.AdminOptions.Enabled)
	assert.False(t, o.TracingOptions.Enabled)
	assert.Equal(t, "localhost:4318", o.TracingOptions.OTLPEndpoint)
	assert.Equal(t, "data/hivegate.db", o.StoreOptions.BoltPath)
	assert.Empty(t, o.Validate())
}

func TestValidateRejectsBadBindPort(t *testing.T) {
	o := NewOptions()
	o.ServingOptions.BindPort = 70000
	errs := o.Validate()
	assert.NotEmpty(t, errs)
}

func TestValidateRejectsMissingTenantConfigFile(t *testing.T) {
	o := NewOptions()
	o.TenantOptions.ConfigFile = ""
	errs := o.Validate()
	assert.NotEmpty(t, errs)
}

func TestValidateRejectsUnknownServingMode(t *testing.T) {
	o := NewOptions()
	o.ServingOptions.Mode = "bogus"
	errs := o.Validate()
	assert.NotEmpty(t, errs)
}

func TestFlagsBindAllFieldsWithoutPanicking(t *testing.T) {
	o := NewOptions()
	fs := o.Flags()
	assert.NotNil(t, fs.Lookup("serving.bind-port"))
	assert.NotNil(t, fs.Lookup("tracing.enabled"))
	assert.NotNil(t, fs.Lookup("tracing.otlp-endpoint"))
	assert.NotNil(t, fs.Lookup("store.bolt-path"))
}

func TestApplyToMapsServingModeDefaultingToRelease(t *testing.T) {
	o := NewOptions()
	o.ServingOptions.Mode = "something-unrecognized"
	o.ServingOptions.BindPort = 9090

	c := server.NewConfig()
	require.NoError(t, o.ApplyTo(c))
	assert.Equal(t, "release", c.Mode)
	assert.Equal(t, 9090, c.BindPort)
}

func TestApplyToMapsDebugMode(t *testing.T) {
	o := NewOptions()
	o.ServingOptions.Mode = "debug"

	c := server.NewConfig()
	require.NoError(t, o.ApplyTo(c))
	assert.Equal(t, "debug", c.Mode)
}
