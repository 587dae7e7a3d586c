package checker

import "sort"

// Status classifies a domain's registration state.
type Status int

const (
	// StatusAvailable means no evidence of registration was found. A DNS-only
	// verdict is "possibly available"; only RDAP can confirm it.
	StatusAvailable Status = iota
	// StatusUnknown means the check could not reach a definitive answer,
	// typically because of a timeout or a server error.
	StatusUnknown
	// StatusRegistered means the domain is taken.
	StatusRegistered
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "possibly available"
	case StatusRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// Method identifies the protocol that produced a result.
type Method string

const (
	MethodDNS  Method = "DNS"
	MethodRDAP Method = "RDAP"
)

// Result is the classification of a single domain. Evidence holds a short
// human-readable note about what the check observed (record types found,
// RDAP response code, and so on).
type Result struct {
	Domain   string
	Status   Status
	Method   Method
	Evidence string
}

// SortResults orders results available first, then unknown, then registered,
// alphabetically within each status.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Status != results[j].Status {
			return results[i].Status < results[j].Status
		}
		return results[i].Domain < results[j].Domain
	})
}
