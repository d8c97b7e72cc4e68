package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInstanceRenameWithDotPath(t *testing.T) {
	d := Descriptor{
		Path: "/p", Domain: "System", Class: "Test", DropName: true,
		Properties: []Property{
			{ID: "gw", NewID: "gateway"},
			{ID: "tag", NewID: "vlan.tag"},
		},
	}

	bag := d.mapInstance(map[string]any{"gw": "10.0.0.1", "tag": float64(100), "noise": "x"})

	assert.Equal(t, "10.0.0.1", bag["gateway"])
	vlan, ok := bag["vlan"].(map[string]any)
	require.True(t, ok, "dotted rename nests the flat source key")
	assert.Equal(t, float64(100), vlan["tag"])
	_, present := bag["noise"]
	assert.False(t, present, "unlisted properties are discarded")
}

func TestBooleanMapping(t *testing.T) {
	d := Descriptor{
		Path: "/p", Domain: "System", Class: "Test", DropName: true,
		Properties: []Property{
			{ID: "failsafe", Truth: "enabled", Falsehood: "disabled"},
		},
	}

	assert.Equal(t, true, d.mapInstance(map[string]any{"failsafe": "enabled"})["failsafe"])
	assert.Equal(t, false, d.mapInstance(map[string]any{"failsafe": "disabled"})["failsafe"])
	// Absence maps to false.
	assert.Equal(t, false, d.mapInstance(map[string]any{})["failsafe"])
}

func TestBooleanMappingSkipWhenOmitted(t *testing.T) {
	d := Descriptor{
		Path: "/p", Domain: "System", Class: "Test", DropName: true,
		Properties: []Property{
			{ID: "tagged", Truth: true, Falsehood: false, SkipWhenOmitted: true},
		},
	}

	bag := d.mapInstance(map[string]any{})
	_, present := bag["tagged"]
	assert.False(t, present)
}

func TestDefaultWhenOmitted(t *testing.T) {
	d := Descriptor{
		Path: "/p", Domain: "System", Class: "Test", DropName: true,
		Properties: []Property{
			{ID: "configsyncIp", Default: "none"},
		},
	}

	assert.Equal(t, "none", d.mapInstance(map[string]any{})["configsyncIp"])
	assert.Equal(t, "10.0.0.1", d.mapInstance(map[string]any{"configsyncIp": "10.0.0.1"})["configsyncIp"])
}

func TestTransformRedistributesSubFields(t *testing.T) {
	d := Descriptor{
		Path: "/p", Domain: "System", Class: "Test", DropName: true,
		Properties: []Property{
			{ID: "dhcpOptions", Transform: []Property{
				{ID: "leaseTime", NewID: "mgmtDhcpLeaseTime"},
				{ID: "enabled", Truth: "yes", Falsehood: "no"},
			}},
		},
	}

	bag := d.mapInstance(map[string]any{
		"dhcpOptions": map[string]any{
			"leaseTime": float64(3600),
			"enabled":   "yes",
		},
	})

	assert.Equal(t, float64(3600), bag["mgmtDhcpLeaseTime"])
	assert.Equal(t, true, bag["enabled"])
	_, present := bag["dhcpOptions"]
	assert.False(t, present, "the composite source key is consumed")
}

func TestMapInstanceWithoutPropertyList(t *testing.T) {
	d := Descriptor{Path: "/p", Domain: "System", Class: "Test", DropName: true}

	bag := d.mapInstance(map[string]any{
		"kind":     "tm:sys:dns",
		"selfLink": "https://localhost/mgmt/tm/sys/dns",
		"name":     "dns",
		"search":   []any{"example.com"},
	})

	assert.Equal(t, map[string]any{"search": []any{"example.com"}}, bag)
}

func TestStripPartition(t *testing.T) {
	assert.Equal(t, "internal", stripPartition("/Common/internal"))
	assert.Equal(t, "10.0.0.1", stripPartition("10.0.0.1"))
	assert.Equal(t, []any{"internal", "external"}, stripPartition([]any{"/Common/internal", "/Common/external"}))
	assert.Equal(t,
		map[string]any{"vlan": "internal"},
		stripPartition(map[string]any{"vlan": "/Common/internal"}))
}

func TestIgnoreRules(t *testing.T) {
	d := Descriptor{
		Path: "/p", Domain: "Network", Class: "Route",
		Ignore: []IgnoreRule{{Key: "name", Pattern: "^_auto_"}},
	}
	descriptors := []Descriptor{d}
	require.NoError(t, ValidateDescriptors(descriptors))

	assert.True(t, descriptors[0].matchesIgnore(map[string]any{"name": "_auto_dhclient"}))
	assert.False(t, descriptors[0].matchesIgnore(map[string]any{"name": "default"}))
	assert.False(t, descriptors[0].matchesIgnore(map[string]any{"other": "_auto_x"}))
}

func TestPathFromLink(t *testing.T) {
	path, ok := pathFromLink(map[string]any{
		"link": "https://localhost/mgmt/tm/net/vlan/~Common~internal/interfaces?ver=13.1.0",
	})
	require.True(t, ok)
	assert.Equal(t, "/tm/net/vlan/~Common~internal/interfaces", path)

	_, ok = pathFromLink("not a link object")
	assert.False(t, ok)
	_, ok = pathFromLink(map[string]any{"link": ""})
	assert.False(t, ok)
	_, ok = pathFromLink(nil)
	assert.False(t, ok)
}

func TestCanonicalAllowService(t *testing.T) {
	assert.Equal(t, "none", canonicalAllowService(nil))
	assert.Equal(t, "default", canonicalAllowService([]any{"default"}))
	assert.Equal(t, []any{"tcp:80", "tcp:443"}, canonicalAllowService([]any{"tcp:80", "tcp:443"}))
	assert.Equal(t, "all", canonicalAllowService("all"))
}

func TestValidateDescriptors(t *testing.T) {
	err := ValidateDescriptors([]Descriptor{{Class: "NoPath", Domain: "System"}})
	assert.Error(t, err)

	err = ValidateDescriptors([]Descriptor{{Path: "/p", Class: "Bad", Domain: "System",
		Ignore: []IgnoreRule{{Key: "name", Pattern: "("}}}})
	assert.Error(t, err)

	assert.NotPanics(t, func() { DefaultDescriptors() })
}
