package config

import (
	"github.com/litsort/litsort/internal/sources"
)

// Credential requirements a source may declare.
const (
	CredentialAPIKey = "api_key"
	CredentialEmail  = "email"
)

// Credentials gathers every external credential a run can use,
// resolved from environment variables and the global config file.
type Credentials struct {
	ScopusAPIKey   string
	UnpaywallEmail string
	S2APIKey       string
	OpenAlexEmail  string
	CrossrefEmail  string
	AIAPIKey       string
}

// LoadCredentials resolves all credentials through the usual
// environment-first chain.
func LoadCredentials() Credentials {
	return Credentials{
		ScopusAPIKey:   GetScopusAPIKey(),
		UnpaywallEmail: GetUnpaywallEmail(),
		S2APIKey:       GetS2APIKey(),
		OpenAlexEmail:  GetOpenAlexEmail(),
		CrossrefEmail:  GetCrossrefEmail(),
		AIAPIKey:       GetAIAPIKey(),
	}
}

// SourceSpec describes one source's place in the effective chain.
type SourceSpec struct {
	Name          string `json:"name"`
	Enabled       bool   `json:"enabled"`
	Credential    string `json:"credential,omitempty"`
	HasCredential bool   `json:"has_credential,omitempty"`
}

// DefaultSourceOrder is the chain order used when the config does not
// override it: free high-coverage indexes first, credentialed sources
// last.
var DefaultSourceOrder = []string{
	sources.NameOpenAlex,
	sources.NameCrossref,
	sources.NameDataCite,
	sources.NameEuropePMC,
	sources.NameSemanticScholar,
	sources.NameScopus,
	sources.NameUnpaywall,
}

// BuildRegistry assembles the source chain for a run. Scopus and
// Unpaywall are skipped (reported as disabled) when their credential is
// absent; unknown names in an order override are dropped. The Semantic
// Scholar client always serves as the title-search validator, whether
// or not it appears in the lookup chain.
func BuildRegistry(creds Credentials, opts *Options) (*sources.Registry, []SourceSpec) {
	order := DefaultSourceOrder
	if opts != nil && len(opts.Sources) > 0 {
		order = opts.Sources
	}
	disabled := make(map[string]bool)
	if opts != nil {
		for _, name := range opts.DisabledSources {
			disabled[name] = true
		}
	}

	s2 := sources.NewSemanticScholar(sources.WithAPIKey(creds.S2APIKey))

	var (
		srcs  []sources.Source
		specs []SourceSpec
	)
	for _, name := range order {
		spec := SourceSpec{Name: name, Enabled: !disabled[name]}
		var src sources.Source
		switch name {
		case sources.NameOpenAlex:
			src = sources.NewOpenAlex(sources.WithEmail(creds.OpenAlexEmail))
		case sources.NameCrossref:
			src = sources.NewCrossref(sources.WithEmail(creds.CrossrefEmail))
		case sources.NameDataCite:
			src = sources.NewDataCite()
		case sources.NameEuropePMC:
			src = sources.NewEuropePMC()
		case sources.NameSemanticScholar:
			src = s2
		case sources.NameScopus:
			spec.Credential = CredentialAPIKey
			spec.HasCredential = creds.ScopusAPIKey != ""
			if !spec.HasCredential {
				spec.Enabled = false
			}
			src = sources.NewScopus(sources.WithAPIKey(creds.ScopusAPIKey))
		case sources.NameUnpaywall:
			spec.Credential = CredentialEmail
			spec.HasCredential = creds.UnpaywallEmail != ""
			if !spec.HasCredential {
				spec.Enabled = false
			}
			src = sources.NewUnpaywall(sources.WithEmail(creds.UnpaywallEmail))
		default:
			continue
		}
		specs = append(specs, spec)
		if spec.Enabled {
			srcs = append(srcs, src)
		}
	}

	return sources.NewRegistry(s2, srcs...), specs
}
