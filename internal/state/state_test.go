package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopyIndependence(t *testing.T) {
	original := Document{
		"System": map[string]any{
			"Common": map[string]any{
				"DNS": map[string]any{
					"currentDNS": map[string]any{
						"nameServers": []any{"1.2.3.4"},
					},
				},
			},
		},
	}

	copied := original.DeepCopy()
	require.True(t, DeepEqual(original, copied))

	bag, ok := GetMap(copied, "System", "Common", "DNS", "currentDNS")
	require.True(t, ok)
	bag["nameServers"] = []any{"8.8.8.8"}

	originalServers, ok := Get(original, "System", "Common", "DNS", "currentDNS", "nameServers")
	require.True(t, ok)
	assert.Equal(t, []any{"1.2.3.4"}, originalServers)
}

func TestDeepCopyNil(t *testing.T) {
	var d Document
	assert.Nil(t, d.DeepCopy())
}

func TestGetMissingPath(t *testing.T) {
	d := Document{"a": map[string]any{"b": 1}}

	_, ok := Get(d, "a", "b", "c")
	assert.False(t, ok, "descending through a scalar must fail")

	_, ok = Get(d, "a", "missing")
	assert.False(t, ok)
}

func TestSetCreatesIntermediateMaps(t *testing.T) {
	m := map[string]any{}
	Set(m, 42, "a", "b", "c")

	v, ok := Get(m, "a", "b", "c")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestSetDotted(t *testing.T) {
	m := map[string]any{}
	SetDotted(m, "network.tag", 100)

	v, ok := Get(m, "network", "tag")
	require.True(t, ok)
	assert.Equal(t, 100, v)
}

func TestSetReplacesScalarOnPath(t *testing.T) {
	m := map[string]any{"a": "scalar"}
	Set(m, true, "a", "b")

	v, ok := Get(m, "a", "b")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestDelete(t *testing.T) {
	m := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
	Delete(m, "a", "b")

	_, ok := Get(m, "a", "b")
	assert.False(t, ok)
	_, ok = Get(m, "a", "c")
	assert.True(t, ok)

	// Missing intermediate segments are a no-op.
	Delete(m, "x", "y")
}
