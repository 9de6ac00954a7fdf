package rbac

// Resource names a protected area of the system.
type Resource string

const (
	ResourceContent Resource = "content"
	ResourceFiles   Resource = "files"
	ResourceReports Resource = "reports"
	ResourceUsers   Resource = "users"
	ResourceRoles   Resource = "roles"
)

// Action names an operation on a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
	ActionManage  Action = "manage"
	ActionExport  Action = "export"
)

// Permission is an immutable (resource, action) pair with a human-readable
// description for admin UIs.
type Permission struct {
	Resource    Resource
	Action      Action
	Description string
}

var (
	PermContentRead    = Permission{ResourceContent, ActionRead, "View pages and posts"}
	PermContentCreate  = Permission{ResourceContent, ActionCreate, "Create pages and posts"}
	PermContentUpdate  = Permission{ResourceContent, ActionUpdate, "Edit pages and posts"}
	PermContentDelete  = Permission{ResourceContent, ActionDelete, "Delete pages and posts"}
	PermContentPublish = Permission{ResourceContent, ActionPublish, "Publish or unpublish content"}

	PermFilesManage  = Permission{ResourceFiles, ActionManage, "Upload and remove media files"}
	PermReportExport = Permission{ResourceReports, ActionExport, "Export donation and activity reports"}

	PermUsersRead   = Permission{ResourceUsers, ActionRead, "View accounts"}
	PermUsersCreate = Permission{ResourceUsers, ActionCreate, "Provision accounts"}
	PermUsersUpdate = Permission{ResourceUsers, ActionUpdate, "Edit or deactivate accounts"}
	PermUsersDelete = Permission{ResourceUsers, ActionDelete, "Remove accounts"}
	PermRolesManage = Permission{ResourceRoles, ActionManage, "Change account roles"}
)
