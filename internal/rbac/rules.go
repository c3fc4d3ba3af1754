package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"test:view",
		"session:start",
		"session:mutate",
		"session:submit",
		"practice:run",
		"result:view-own",
		"material:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
