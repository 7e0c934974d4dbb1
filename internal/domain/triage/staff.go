package triage

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DoctorRole is the role name, without diacritics, that identifies doctors.
const DoctorRole = "MEDICO"

// Staff is a unit collaborator with a named role.
type Staff struct {
	id       int64
	name     string
	roleID   int
	roleName string
}

func ReconstructStaff(id int64, name string, roleID int, roleName string) *Staff {
	return &Staff{id: id, name: name, roleID: roleID, roleName: roleName}
}

func (s *Staff) ID() int64 {
	return s.id
}

func (s *Staff) Name() string {
	return s.name
}

func (s *Staff) RoleID() int {
	return s.roleID
}

func (s *Staff) RoleName() string {
	return s.roleName
}

// IsDoctor matches the role name against DoctorRole ignoring case,
// surrounding whitespace and accents.
func (s *Staff) IsDoctor() bool {
	return strings.EqualFold(foldAccents(strings.TrimSpace(s.roleName)), DoctorRole)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
