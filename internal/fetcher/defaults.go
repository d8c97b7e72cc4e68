package fetcher

// Domain names used by the built-in descriptor set.
const (
	DomainSystem   = "System"
	DomainNetwork  = "Network"
	DomainSecurity = "Security"
)

// defaultDescriptors is the built-in descriptor set covering the device
// categories rudder manages out of the box. Loaded descriptor files replace
// it wholesale.
var defaultDescriptors = []Descriptor{
	{
		Path:     "/tm/sys/global-settings",
		Domain:   DomainSystem,
		Class:    "hostname",
		Singular: true,
		DropName: true,
		Properties: []Property{
			{ID: "hostname"},
		},
	},
	{
		Path:   "/tm/sys/dns",
		Domain: DomainSystem,
		Class:  "DNS",
		Properties: []Property{
			{ID: "nameServers", SkipWhenOmitted: true},
			{ID: "search", SkipWhenOmitted: true},
		},
	},
	{
		Path:   "/tm/sys/ntp",
		Domain: DomainSystem,
		Class:  "NTP",
		Properties: []Property{
			{ID: "servers", SkipWhenOmitted: true},
			{ID: "timezone"},
		},
	},
	{
		Path:         "/tm/sys/db",
		Domain:       DomainSystem,
		Class:        "DbVariables",
		DynamicScope: true,
		DropName:     true,
		Quiet:        true,
		Properties: []Property{
			{ID: "value"},
		},
	},
	{
		Path:   "/tm/sys/provision",
		Domain: DomainSystem,
		Class:  "Provision",
		Properties: []Property{
			{ID: "level"},
		},
	},
	{
		Path:   "/tm/cm/device/~Common~{{deviceName}}",
		Domain: DomainSystem,
		Class:  "ConfigSync",
		Properties: []Property{
			{ID: "configsyncIp", Default: "none"},
		},
	},
	{
		Path:   "/tm/auth/source",
		Domain: DomainSystem,
		Class:  "Authentication",
		Properties: []Property{
			{ID: "type", NewID: "enabledSourceType", Default: "local"},
			{ID: "fallback", Truth: "true", Falsehood: "false"},
		},
	},
	{
		Path:   "/tm/auth/radius/system-auth",
		Domain: DomainSystem,
		Class:  "Authentication",
		Properties: []Property{
			{ID: "serviceType"},
		},
		SchemaMerge: &SchemaMerge{
			Path:          []string{"radius"},
			SkipWhenEmpty: true,
		},
	},
	{
		Path:   "/tm/auth/radius-server",
		Domain: DomainSystem,
		Class:  "Authentication",
		Properties: []Property{
			{ID: "server"},
			{ID: "port"},
		},
		SchemaMerge: &SchemaMerge{
			Path:          []string{"radius", "servers"},
			Additive:      true,
			SkipWhenEmpty: true,
		},
	},
	{
		Path:   "/tm/net/vlan",
		Domain: DomainNetwork,
		Class:  "VLAN",
		Properties: []Property{
			{ID: "mtu"},
			{ID: "tag"},
			{ID: "failsafe", NewID: "failsafeEnabled", Truth: "enabled", Falsehood: "disabled"},
		},
		References: map[string][]Property{
			"interfacesReference": {
				{ID: "name"},
				{ID: "tagged", Truth: true, Falsehood: false, SkipWhenOmitted: true},
			},
		},
	},
	{
		Path:   "/tm/net/self",
		Domain: DomainNetwork,
		Class:  "SelfIp",
		Properties: []Property{
			{ID: "address"},
			{ID: "vlan"},
			{ID: "trafficGroup"},
			{ID: "allowService", SkipWhenOmitted: true},
		},
	},
	{
		Path:   "/tm/net/route",
		Domain: DomainNetwork,
		Class:  "Route",
		Properties: []Property{
			{ID: "gw"},
			{ID: "network"},
			{ID: "mtu"},
		},
		Ignore: []IgnoreRule{
			{Key: "name", Pattern: "^_auto_"},
		},
	},
	{
		Path:           "/tm/security/firewall/management-ip-rules",
		Domain:         DomainSecurity,
		Class:          "ManagementIpFirewall",
		RequiredModule: "afm",
		Properties: []Property{
			{ID: "description", SkipWhenOmitted: true},
		},
	},
}

// DefaultDescriptors returns the validated built-in descriptor set. The
// returned slice is a fresh copy; descriptor contents are shared and must be
// treated as immutable.
func DefaultDescriptors() []Descriptor {
	descriptors := make([]Descriptor, len(defaultDescriptors))
	copy(descriptors, defaultDescriptors)
	if err := ValidateDescriptors(descriptors); err != nil {
		// The built-in set is static data; failing validation is a bug.
		panic(err)
	}
	return descriptors
}
