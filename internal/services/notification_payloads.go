package services

import (
	"fmt"
	"time"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// Notification types stored in models.Notification.Type.
const (
	NotificationInvitationSent       = "INVITATION_SENT"
	NotificationInvitationAccepted   = "INVITATION_ACCEPTED"
	NotificationMemberJoinedByCode   = "MEMBER_JOINED_BY_CODE"
	NotificationApplicationSubmitted = "APPLICATION_SUBMITTED"
	NotificationApplicationReviewed  = "APPLICATION_REVIEWED"
	NotificationAssignmentCreated    = "ASSIGNMENT_CREATED"
	NotificationOfferAccepted        = "OFFER_ACCEPTED"
	NotificationExperienceReviewed   = "EXPERIENCE_REVIEWED"
)

// Payload is one of the typed notification variants below. The variant itself is stored as the
// notification metadata.
type Payload interface {
	Type() string
	Title() string
	Message() string
	Link() string
}

type InvitationSent struct {
	InvitationID string    `json:"invitation_id"`
	CompanyID    string    `json:"company_id"`
	CompanyName  string    `json:"company_name"`
	Role         string    `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (InvitationSent) Type() string   { return NotificationInvitationSent }
func (InvitationSent) Title() string  { return "Company invitation" }
func (p InvitationSent) Link() string { return "/invitations/accept" }
func (p InvitationSent) Message() string {
	return fmt.Sprintf("You have been invited to join %s as %s.", p.CompanyName, p.Role)
}

type InvitationAccepted struct {
	InvitationID string `json:"invitation_id"`
	CompanyID    string `json:"company_id"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

func (InvitationAccepted) Type() string   { return NotificationInvitationAccepted }
func (InvitationAccepted) Title() string  { return "Invitation accepted" }
func (p InvitationAccepted) Link() string { return "/companies/" + p.CompanyID + "/members" }
func (p InvitationAccepted) Message() string {
	return fmt.Sprintf("%s accepted your invitation.", p.Email)
}

type MemberJoinedByCode struct {
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
}

func (MemberJoinedByCode) Type() string   { return NotificationMemberJoinedByCode }
func (MemberJoinedByCode) Title() string  { return "New team member" }
func (p MemberJoinedByCode) Link() string { return "/companies/" + p.CompanyID + "/members" }
func (p MemberJoinedByCode) Message() string {
	name := p.UserName
	if name == "" {
		name = "A new member"
	}
	return name + " joined your company with the invitation code."
}

type ApplicationSubmitted struct {
	ApplicationID   string `json:"application_id"`
	InternshipID    string `json:"internship_id"`
	InternshipTitle string `json:"internship_title"`
	StudentID       string `json:"student_id"`
}

func (ApplicationSubmitted) Type() string  { return NotificationApplicationSubmitted }
func (ApplicationSubmitted) Title() string { return "New application" }
func (p ApplicationSubmitted) Link() string {
	return "/internships/" + p.InternshipID + "/applications"
}
func (p ApplicationSubmitted) Message() string {
	return fmt.Sprintf("A student applied to %s.", p.InternshipTitle)
}

type ApplicationReviewed struct {
	ApplicationID   string                   `json:"application_id"`
	InternshipID    string                   `json:"internship_id"`
	InternshipTitle string                   `json:"internship_title"`
	Status          models.ApplicationStatus `json:"status"`
}

func (ApplicationReviewed) Type() string   { return NotificationApplicationReviewed }
func (ApplicationReviewed) Title() string  { return "Application update" }
func (p ApplicationReviewed) Link() string { return "/applications/mine" }
func (p ApplicationReviewed) Message() string {
	if p.Status == models.ApplicationApproved {
		return fmt.Sprintf("Your application to %s was approved. You can now accept the offer.", p.InternshipTitle)
	}
	return fmt.Sprintf("Your application to %s was not successful.", p.InternshipTitle)
}

type AssignmentCreated struct {
	AssignmentID    string    `json:"assignment_id"`
	InternshipID    string    `json:"internship_id"`
	AssignmentTitle string    `json:"assignment_title"`
	DueDate         time.Time `json:"due_date"`
}

func (AssignmentCreated) Type() string   { return NotificationAssignmentCreated }
func (AssignmentCreated) Title() string  { return "New test assignment" }
func (p AssignmentCreated) Link() string { return "/assignments/" + p.AssignmentID }
func (p AssignmentCreated) Message() string {
	return fmt.Sprintf("Complete %q by %s.", p.AssignmentTitle, p.DueDate.UTC().Format("2 Jan 2006"))
}

type OfferAccepted struct {
	ApplicationID   string `json:"application_id"`
	ProjectID       string `json:"project_id"`
	InternshipTitle string `json:"internship_title"`
	StudentID       string `json:"student_id"`
}

func (OfferAccepted) Type() string   { return NotificationOfferAccepted }
func (OfferAccepted) Title() string  { return "Offer accepted" }
func (p OfferAccepted) Link() string { return "/projects/" + p.ProjectID }
func (p OfferAccepted) Message() string {
	return fmt.Sprintf("A student accepted your offer for %s.", p.InternshipTitle)
}

type ExperienceReviewed struct {
	ExperienceID string                  `json:"experience_id"`
	CompanyID    string                  `json:"company_id"`
	Status       models.ExperienceStatus `json:"status"`
	Grade        *int                    `json:"grade,omitempty"`
}

func (ExperienceReviewed) Type() string   { return NotificationExperienceReviewed }
func (ExperienceReviewed) Title() string  { return "Experience reviewed" }
func (p ExperienceReviewed) Link() string { return "/experiences/" + p.ExperienceID }
func (p ExperienceReviewed) Message() string {
	if p.Status == models.ExperienceApproved && p.Grade != nil {
		return fmt.Sprintf("Your experience was approved with grade %d.", *p.Grade)
	}
	return "Your experience was rejected."
}
