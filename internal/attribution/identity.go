package attribution

import "github.com/ignite/attribution-engine/internal/domain"

// IdentityMap maps an identified user id to the set of anonymous session
// ids observed for that user within one organization.
type IdentityMap map[string]map[string]struct{}

// ResolveIdentities builds the identity map from raw identity links.
// Empty input yields an empty map.
func ResolveIdentities(links []domain.IdentityLink) IdentityMap {
	m := make(IdentityMap, len(links))
	for _, l := range links {
		if l.UserID == "" || l.AnonymousID == "" {
			continue
		}
		set, ok := m[l.UserID]
		if !ok {
			set = make(map[string]struct{})
			m[l.UserID] = set
		}
		set[l.AnonymousID] = struct{}{}
	}
	return m
}

// IdentifiedUsers returns the number of identified users in the map.
func (m IdentityMap) IdentifiedUsers() int { return len(m) }

// AnonymousSessions returns the total number of stitched anonymous sessions.
func (m IdentityMap) AnonymousSessions() int {
	n := 0
	for _, set := range m {
		n += len(set)
	}
	return n
}

// ownerIndex inverts the map so path construction can resolve an anonymous
// id to its owning user in O(1).
func (m IdentityMap) ownerIndex() map[string]string {
	owners := make(map[string]string, len(m))
	for userID, set := range m {
		for anonID := range set {
			owners[anonID] = userID
		}
	}
	return owners
}
