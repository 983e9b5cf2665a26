package partners

import "fmt"

// GetProvider returns the filing provider for the configured partner id. The
// caller picks the partner explicitly through configuration; there is no
// ambient environment lookup here.
func GetProvider(partner string, store SubmissionStore) (FilingProvider, error) {
	switch partner {
	case "netfile":
		return NewNetfileProvider(store), nil
	default:
		return nil, fmt.Errorf("no filing provider available for partner: %s", partner)
	}
}
