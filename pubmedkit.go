// Package pubmedkit turns the PubMed baseline and update feeds into a
// canonical, cacheable article stream, plus a few graph export helpers.
package pubmedkit

const (
	AppName = "pubmedkit"
	Version = "0.1.0"
	// UserAgent is sent on all outgoing requests to the NLM servers.
	UserAgent = "pubmedkit/" + Version + " (https://github.com/miku/pubmedkit)"
)
