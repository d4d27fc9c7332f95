package classify

import (
	"context"
	"strings"
)

// Classifier maps a sender address to an organization display name.
type Classifier interface {
	Classify(ctx context.Context, fromAddress string) (string, error)
}

// brandNames maps cleaned domains to canonical organization names.
var brandNames = map[string]string{
	"amazon.com":      "Amazon",
	"amazonses.com":   "Amazon",
	"amazon-corp.com": "Amazon",
	"google.com":      "Google",
	"gmail.com":       "Google",
	"microsoft.com":   "Microsoft",
	"outlook.com":     "Microsoft",
	"github.com":      "GitHub",
	"linkedin.com":    "LinkedIn",
	"chase.com":       "Chase Bank",
	"jpmchase.com":    "Chase Bank",
	"mcmap.chase.com": "Chase Bank",
}

// routingPrefixes are mail-infrastructure subdomain labels stripped before
// the domain is resolved to a brand.
var routingPrefixes = []string{
	"mail.", "email.", "noreply.", "no-reply.", "alerts.", "alert.",
}

// DomainClassifier derives an organization name from the address domain
// alone. It is deterministic and never returns an error.
type DomainClassifier struct{}

// NewDomainClassifier creates the deterministic domain-based classifier.
func NewDomainClassifier() *DomainClassifier {
	return &DomainClassifier{}
}

// Classify resolves the organization name for a sender address. An address
// with no domain part is returned unchanged.
func (c *DomainClassifier) Classify(_ context.Context, fromAddress string) (string, error) {
	_, domain, found := strings.Cut(fromAddress, "@")
	if !found || domain == "" {
		return fromAddress, nil
	}
	domain = strings.ToLower(domain)

	for _, prefix := range routingPrefixes {
		if rest, ok := strings.CutPrefix(domain, prefix); ok {
			domain = rest
			break
		}
	}

	// The brand table knows some exact subdomains, so match before
	// collapsing to the registrable domain.
	if name, ok := brandNames[domain]; ok {
		return name, nil
	}

	if labels := strings.Split(domain, "."); len(labels) > 2 {
		domain = strings.Join(labels[len(labels)-2:], ".")
	}

	if name, ok := brandNames[domain]; ok {
		return name, nil
	}

	first, _, _ := strings.Cut(domain, ".")
	if first == "" {
		return fromAddress, nil
	}
	return strings.ToUpper(first[:1]) + first[1:], nil
}
