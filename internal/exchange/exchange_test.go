package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	google := NewGoogle(ProviderConfig{ClientID: "g"})
	office := NewOffice(ProviderConfig{ClientID: "o"}, "contoso")

	r, err := NewRegistry(office, google)
	require.NoError(t, err)
	assert.Equal(t, []string{"google", "office"}, r.Names())

	got, ok := r.Get("google")
	assert.True(t, ok)
	assert.Same(t, google, got)

	_, ok = r.Get("yahoo")
	assert.False(t, ok)

	_, err = NewRegistry(google, NewGoogle(ProviderConfig{ClientID: "again"}))
	assert.Error(t, err)
}

func TestRegistry_Nil(t *testing.T) {
	var r *Registry
	_, ok := r.Get("google")
	assert.False(t, ok)
	assert.Empty(t, r.Names())
}
