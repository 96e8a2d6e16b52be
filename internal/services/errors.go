package services

import apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"

// Workflow errors. Each carries a stable code and one taxonomy kind.
var (
	ErrCompanyNotFound    = apperrors.New(apperrors.KindNotFound, "company.not_found", "Company not found")
	ErrCompanyOwner       = apperrors.New(apperrors.KindConflict, "company.owner", "You already own a company")
	ErrCompanyFull        = apperrors.New(apperrors.KindConflict, "company.full", "This company has reached its member limit")
	ErrCodeInvalidFormat  = apperrors.New(apperrors.KindValidation, "company_code.invalid_format", "Invitation code must look like XXXX-XXXX-XXXX-XXXX")
	ErrCodeDisabled       = apperrors.New(apperrors.KindPermissionDenied, "company_code.disabled", "This invitation code is disabled")
	ErrCodeExpired        = apperrors.New(apperrors.KindExpired, "company_code.expired", "This invitation code has expired")
	ErrStudentCannotJoin  = apperrors.New(apperrors.KindPermissionDenied, "company_code.student", "Student accounts cannot join a company")
	ErrAlreadyMember      = apperrors.New(apperrors.KindConflict, "membership.already_member", "You are already a member of a company")
	ErrMemberNotFound     = apperrors.New(apperrors.KindNotFound, "membership.not_found", "Member not found")
	ErrOwnerImmutable     = apperrors.New(apperrors.KindConflict, "membership.owner_immutable", "The company owner cannot be changed or removed")
	ErrRolelessMembership = apperrors.New(apperrors.KindValidation, "membership.roleless", "A membership needs a default role or a custom role")

	ErrRoleNotFound      = apperrors.New(apperrors.KindNotFound, "role.not_found", "Role not found")
	ErrRoleInUse         = apperrors.New(apperrors.KindConflict, "role.in_use", "Role is still assigned to members")
	ErrRoleDuplicateName = apperrors.New(apperrors.KindConflict, "role.duplicate_name", "A role with this name already exists")

	ErrInvitationNotFound      = apperrors.New(apperrors.KindNotFound, "invitation.not_found", "Invitation not found")
	ErrInvitationExpired       = apperrors.New(apperrors.KindExpired, "invitation.expired", "This invitation has expired")
	ErrInvitationAccepted      = apperrors.New(apperrors.KindConflict, "invitation.already_accepted", "This invitation has already been accepted")
	ErrInvitationEmailMismatch = apperrors.New(apperrors.KindPermissionDenied, "invitation.email_mismatch", "This invitation was sent to a different email address")
	ErrInvitationPending       = apperrors.New(apperrors.KindConflict, "invitation.pending_exists", "A pending invitation already exists for this email")

	ErrStudentOnly            = apperrors.New(apperrors.KindPermissionDenied, "role.student_required", "Only students can do this")
	ErrInternshipNotFound     = apperrors.New(apperrors.KindNotFound, "internship.not_found", "Internship not found")
	ErrApplicationNotFound    = apperrors.New(apperrors.KindNotFound, "application.not_found", "Application not found")
	ErrDuplicateApplication   = apperrors.New(apperrors.KindConflict, "application.duplicate", "You already applied to this internship")
	ErrCoverLetterRequired    = apperrors.New(apperrors.KindValidation, "application.cover_letter_required", "This internship requires a cover letter")
	ErrApplicationNotPending  = apperrors.New(apperrors.KindConflict, "application.not_pending", "Application has already been reviewed")
	ErrApplicationNotApproved = apperrors.New(apperrors.KindValidation, "application.not_approved", "Only approved applications can be accepted")
	ErrNotApplicationOwner    = apperrors.New(apperrors.KindPermissionDenied, "application.not_owner", "This application belongs to another student")

	ErrExperienceNotFound   = apperrors.New(apperrors.KindNotFound, "experience.not_found", "Experience not found")
	ErrExperienceReviewed   = apperrors.New(apperrors.KindConflict, "experience.already_reviewed", "Experience has already been reviewed")
	ErrInvalidGrade         = apperrors.New(apperrors.KindValidation, "experience.invalid_grade", "Grade must be between 2 and 6")
	ErrNoProjectWithCompany = apperrors.New(apperrors.KindPermissionDenied, "experience.no_project", "You have no project with this company")
	ErrNotificationNotFound = apperrors.New(apperrors.KindNotFound, "notification.not_found", "Notification not found")
	ErrUserNotFound         = apperrors.New(apperrors.KindNotFound, "user.not_found", "User not found")
	ErrOnboardingComplete   = apperrors.New(apperrors.KindConflict, "user.onboarded", "Onboarding is already complete")
)
