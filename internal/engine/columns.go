package engine

import "strings"

// Role identifies the semantic meaning of a dataset column.
type Role string

const (
	RoleDate      Role = "date"
	RoleProduct   Role = "product"
	RoleDemand    Role = "demand"
	RoleInventory Role = "inventory"
	RoleCategory  Role = "category"
	RoleRegion    Role = "region"
	RolePrice     Role = "price"
	RoleCost      Role = "cost"
)

// requiredRoles must resolve for the engine to run at all.
var requiredRoles = []Role{RoleDate, RoleProduct, RoleDemand}

// optionalRoles enrich the output when present.
var optionalRoles = []Role{RoleInventory, RoleCategory, RoleRegion, RolePrice, RoleCost}

// roleKeywords are ranked substring rules per role: keywords earlier in the
// slice win over later ones. Matching is case-insensitive.
var roleKeywords = map[Role][]string{
	RoleDate:      {"date", "day", "period"},
	RoleProduct:   {"product", "sku", "item"},
	RoleDemand:    {"sold", "demand", "actual", "units", "qty", "quantity"},
	RoleInventory: {"inventory", "stock"},
	RoleCategory:  {"category"},
	RoleRegion:    {"region", "store", "location"},
	RolePrice:     {"price"},
	RoleCost:      {"cost"},
}

// Mapping assigns a column name to each role the engine cares about.
// Optional roles are empty strings when the dataset has no such column.
type Mapping struct {
	Date      string
	Product   string
	Demand    string
	Inventory string
	Category  string
	Region    string
	Price     string
	Cost      string
}

// HasInventory reports whether an inventory column was mapped.
func (m Mapping) HasInventory() bool { return m.Inventory != "" }

// Resolution is the outcome of column auto-detection: the mapping it could
// build, plus explicit lists of what it could not decide. Callers must check
// Missing before using the mapping.
type Resolution struct {
	Mapping   Mapping
	Missing   []Role
	Ambiguous map[Role][]string
}

// OK reports whether all required roles resolved without ambiguity.
func (r Resolution) OK() bool { return len(r.Missing) == 0 }

// ResolveColumns detects role→column assignments over header names using the
// ranked keyword rules. Explicit overrides win over detection; a column
// claimed by one role is not considered for later roles. When two different
// columns match a role's winning keyword, the role is reported as ambiguous
// (and missing, if required) instead of silently picking the first.
func ResolveColumns(header []string, overrides map[Role]string) Resolution {
	res := Resolution{Ambiguous: make(map[Role][]string)}
	claimed := make(map[string]bool)
	assigned := make(map[Role]string)

	headerSet := make(map[string]string, len(header)) // lower -> original
	for _, h := range header {
		headerSet[strings.ToLower(h)] = h
	}

	applyOverride := func(role Role) bool {
		name, ok := overrides[role]
		if !ok || name == "" {
			return false
		}
		if original, exists := headerSet[strings.ToLower(name)]; exists {
			assigned[role] = original
			claimed[original] = true
			return true
		}
		// Override names a column that does not exist; treat as unresolved
		// so the caller sees it in Missing rather than a crash downstream.
		return false
	}

	detect := func(role Role) {
		for _, keyword := range roleKeywords[role] {
			var matches []string
			for _, h := range header {
				if claimed[h] {
					continue
				}
				if strings.Contains(strings.ToLower(h), keyword) {
					matches = append(matches, h)
				}
			}
			if len(matches) == 1 {
				assigned[role] = matches[0]
				claimed[matches[0]] = true
				return
			}
			if len(matches) > 1 {
				res.Ambiguous[role] = matches
				return
			}
		}
	}

	order := append(append([]Role{}, requiredRoles...), optionalRoles...)
	for _, role := range order {
		if applyOverride(role) {
			continue
		}
		detect(role)
	}

	for _, role := range requiredRoles {
		if assigned[role] == "" {
			res.Missing = append(res.Missing, role)
		}
	}

	res.Mapping = Mapping{
		Date:      assigned[RoleDate],
		Product:   assigned[RoleProduct],
		Demand:    assigned[RoleDemand],
		Inventory: assigned[RoleInventory],
		Category:  assigned[RoleCategory],
		Region:    assigned[RoleRegion],
		Price:     assigned[RolePrice],
		Cost:      assigned[RoleCost],
	}
	return res
}
