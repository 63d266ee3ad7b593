package rbac

// Default role->permission policy for the institute.
// super_admin holds the wildcard; security_admin is limited to the front
// desk surfaces (enquiries, attendance, notices).
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"attempt:start",
		"attempt:submit",
		"attempt:view-own",
		"finance:view-own",
		"notice:view",
		"resource:view",
		"push:subscribe",
		"user:change_password",
	},
	"parent": {
		"attempt:view-child",
		"finance:view-child",
		"notice:view",
		"push:subscribe",
		"user:change_password",
	},
	"teacher": {
		"exam:*",
		"bank:*",
		"attempt:view-all",
		"attempt:grade",
		"directory:view",
		"resource:*",
		"notice:create",
		"notice:view",
		"attendance:*",
		"users:list",
		"push:subscribe",
		"user:change_password",
	},
	"security_admin": {
		"enquiry:*",
		"attendance:*",
		"notice:view",
		"user:change_password",
	},
	"super_admin": {
		"*", // everything
	},
}
