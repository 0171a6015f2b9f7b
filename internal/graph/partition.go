package graph

import "github.com/forgelabs/pulse/internal/ids"

// Partition splits members into weakly-connected components by before/after
// reference: two members land in the same component iff one's id, before
// set, or after set intersects another's. Each returned slice is the Member
// list for one component's Build call; components are independent of each
// other and may be dispatched as separate graphs.
//
// Grounded on lift_independent's merge-by-intersection sweep: a running list
// of id sets, each new member's reference set merged into every existing set
// it intersects, folding them together into one.
func Partition(members []Member) [][]Member {
	var sets []map[ids.SystemId]struct{}
	var groups [][]Member

	for _, m := range members {
		current := map[ids.SystemId]struct{}{m.Id: {}}
		for _, b := range m.Before {
			current[b] = struct{}{}
		}
		for _, a := range m.After {
			current[a] = struct{}{}
		}

		var mergedMembers []Member
		remaining := sets[:0]
		remainingGroups := groups[:0]
		for i, set := range sets {
			if intersects(set, current) {
				for id := range set {
					current[id] = struct{}{}
				}
				mergedMembers = append(mergedMembers, groups[i]...)
			} else {
				remaining = append(remaining, set)
				remainingGroups = append(remainingGroups, groups[i])
			}
		}
		sets = remaining
		groups = remainingGroups

		mergedMembers = append(mergedMembers, m)
		sets = append(sets, current)
		groups = append(groups, mergedMembers)
	}

	return groups
}

func intersects(set map[ids.SystemId]struct{}, other map[ids.SystemId]struct{}) bool {
	small, big := set, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for id := range small {
		if _, ok := big[id]; ok {
			return true
		}
	}
	return false
}
