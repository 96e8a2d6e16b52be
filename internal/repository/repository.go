package repository

import "gorm.io/gorm"

// Repositories bundles every entity repository over one database handle.
type Repositories struct {
	Users         UserRepository
	Companies     CompanyRepository
	Members       MemberRepository
	CustomRoles   CustomRoleRepository
	Invitations   InvitationRepository
	CodeJoins     CodeJoinRepository
	Internships   InternshipRepository
	Applications  ApplicationRepository
	Assignments   AssignmentRepository
	Projects      ProjectRepository
	Experiences   ExperienceRepository
	Notifications NotificationRepository
	AuditLogs     AuditRepository
	Outbox        OutboxRepository
}

// New wires all repositories against db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Companies:     NewCompanyRepository(db),
		Members:       NewMemberRepository(db),
		CustomRoles:   NewCustomRoleRepository(db),
		Invitations:   NewInvitationRepository(db),
		CodeJoins:     NewCodeJoinRepository(db),
		Internships:   NewInternshipRepository(db),
		Applications:  NewApplicationRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Projects:      NewProjectRepository(db),
		Experiences:   NewExperienceRepository(db),
		Notifications: NewNotificationRepository(db),
		AuditLogs:     NewAuditRepository(db),
		Outbox:        NewOutboxRepository(db),
	}
}

// WithTx returns a copy of the bundle bound to tx.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return &Repositories{
		Users:         r.Users.WithTx(tx),
		Companies:     r.Companies.WithTx(tx),
		Members:       r.Members.WithTx(tx),
		CustomRoles:   r.CustomRoles.WithTx(tx),
		Invitations:   r.Invitations.WithTx(tx),
		CodeJoins:     r.CodeJoins.WithTx(tx),
		Internships:   r.Internships.WithTx(tx),
		Applications:  r.Applications.WithTx(tx),
		Assignments:   r.Assignments.WithTx(tx),
		Projects:      r.Projects.WithTx(tx),
		Experiences:   r.Experiences.WithTx(tx),
		Notifications: r.Notifications.WithTx(tx),
		AuditLogs:     r.AuditLogs.WithTx(tx),
		Outbox:        r.Outbox.WithTx(tx),
	}
}
