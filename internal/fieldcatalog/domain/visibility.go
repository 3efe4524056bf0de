package domain

import "strings"

// RoleGuarantor is never allowed in a stored role list. Legacy rows may
// still carry it, so it is dropped on every read.
const RoleGuarantor = "Guarantor"

func NormalizeVisibleRoles(roles []string) []string {
	result := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" || strings.EqualFold(role, RoleGuarantor) {
			continue
		}
		result = append(result, role)
	}
	return result
}

// Normalize returns a copy with the read-time role cleanup applied.
func (f FieldDefinition) Normalize() FieldDefinition {
	clone := f.Clone()
	clone.VisibleToRoles = NormalizeVisibleRoles(f.VisibleToRoles)
	return clone
}

func IsVisible(def FieldDefinition, role string) bool {
	roles := NormalizeVisibleRoles(def.VisibleToRoles)
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// FilterVisible normalizes every definition and keeps the ones the role may
// see, in their original order.
func FilterVisible(defs []FieldDefinition, role string) []FieldDefinition {
	result := make([]FieldDefinition, 0, len(defs))
	for _, def := range defs {
		normalized := def.Normalize()
		if IsVisible(normalized, role) {
			result = append(result, normalized)
		}
	}
	return result
}

func NormalizeAll(defs []FieldDefinition) []FieldDefinition {
	result := make([]FieldDefinition, len(defs))
	for i, def := range defs {
		result[i] = def.Normalize()
	}
	return result
}
