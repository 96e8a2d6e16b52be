package permissions

// Company permissions. The set is closed: identifiers outside it never grant access.
const (
	ViewMembers        Permission = "VIEW_MEMBERS"
	InviteMembers      Permission = "INVITE_MEMBERS"
	RemoveMembers      Permission = "REMOVE_MEMBERS"
	ManageRoles        Permission = "MANAGE_ROLES"
	ManageCompany      Permission = "MANAGE_COMPANY"
	CreateInternships  Permission = "CREATE_INTERNSHIPS"
	EditInternships    Permission = "EDIT_INTERNSHIPS"
	DeleteInternships  Permission = "DELETE_INTERNSHIPS"
	ViewApplications   Permission = "VIEW_APPLICATIONS"
	ManageApplications Permission = "MANAGE_APPLICATIONS"
	ViewProjects       Permission = "VIEW_PROJECTS"
	ManageProjects     Permission = "MANAGE_PROJECTS"
	ManageExperiences  Permission = "MANAGE_EXPERIENCES"
	ViewAnalytics      Permission = "VIEW_ANALYTICS"
)

func init() {
	defs := []*Definition{
		{ID: ViewMembers, Module: "members", Description: "View company members"},
		{ID: InviteMembers, Module: "members", DependsOn: []Permission{ViewMembers}, Description: "Invite new members"},
		{ID: RemoveMembers, Module: "members", DependsOn: []Permission{ViewMembers}, Description: "Remove members"},
		{ID: ManageRoles, Module: "members", DependsOn: []Permission{ViewMembers}, Description: "Create custom roles and assign roles"},
		{ID: ManageCompany, Module: "company", Description: "Edit company profile and invitation code"},
		{ID: CreateInternships, Module: "internships", Description: "Publish internships"},
		{ID: EditInternships, Module: "internships", Description: "Edit internships"},
		{ID: DeleteInternships, Module: "internships", DependsOn: []Permission{EditInternships}, Description: "Delete internships"},
		{ID: ViewApplications, Module: "applications", Description: "View applications"},
		{ID: ManageApplications, Module: "applications", DependsOn: []Permission{ViewApplications}, Description: "Approve or reject applications"},
		{ID: ViewProjects, Module: "projects", Description: "View projects"},
		{ID: ManageProjects, Module: "projects", DependsOn: []Permission{ViewProjects}, Description: "Manage projects"},
		{ID: ManageExperiences, Module: "projects", DependsOn: []Permission{ViewProjects}, Description: "Review and grade experiences"},
		{ID: ViewAnalytics, Module: "company", Description: "View company analytics"},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
