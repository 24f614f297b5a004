package circulation

// Operation names a service call subject to the access policy.
type Operation string

const (
	OpBorrow       Operation = "borrow"
	OpReturn       Operation = "return"
	OpCreateBook   Operation = "create-book"
	OpUpdateBook   Operation = "update-book"
	OpDeleteBook   Operation = "delete-book"
	OpCreateGenre  Operation = "create-genre"
	OpUpdateGenre  Operation = "update-genre"
	OpDeleteGenre  Operation = "delete-genre"
	OpCreateMember Operation = "create-member"
	OpUpdateMember Operation = "update-member"
	OpDeleteMember Operation = "delete-member"
	OpManageStaff  Operation = "manage-staff"
	OpViewReports  Operation = "view-reports"
)

// librarianAllowed is the subset of operations a librarian may perform.
// Admins may perform everything. Report viewing stays admin-only as a policy
// choice; flip it here if that ever changes.
var librarianAllowed = map[Operation]bool{
	OpBorrow:       true,
	OpReturn:       true,
	OpCreateBook:   true,
	OpUpdateBook:   true,
	OpCreateMember: true,
	OpUpdateMember: true,
	OpDeleteMember: true,
}

// CanPerform is a pure lookup: may the given role invoke the operation?
// Unknown roles may do nothing.
func CanPerform(role Role, op Operation) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleLibrarian:
		return librarianAllowed[op]
	default:
		return false
	}
}
