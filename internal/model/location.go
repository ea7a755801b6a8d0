package model

import "sort"

// District is immutable reference data served by GET /districts.  The
// province is carried as a plain name; provinces themselves are never
// stored and are derived from the district list.
//
// Fields:
//  ID       – backend identifier.
//  Name     – district name, also used as the lookup key for branches.
//  Province – name of the province the district belongs to.
type District struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
}

// Provinces returns the distinct province names of the given districts in
// lexicographic order.  Empty names are skipped.
func Provinces(districts []District) []string {
	seen := make(map[string]struct{}, len(districts))
	out := make([]string, 0)
	for _, d := range districts {
		if d.Province == "" {
			continue
		}
		if _, ok := seen[d.Province]; ok {
			continue
		}
		seen[d.Province] = struct{}{}
		out = append(out, d.Province)
	}
	sort.Strings(out)
	return out
}

// DistrictsInProvince filters districts by exact province name and sorts
// the result by district name.
func DistrictsInProvince(districts []District, province string) []District {
	out := make([]District, 0)
	for _, d := range districts {
		if d.Province == province {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Branch is a physical bank branch.  District and Province are names, not
// foreign keys, matching what the backend returns.
type Branch struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	District string `json:"district"`
	Province string `json:"province"`
}
