package mailer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agriportal/agriportal-backend/internal/certificates"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// ContentTypePDF is the MIME type of certificate attachments.
const ContentTypePDF = "application/pdf"

// ComposeRegistrationDecision builds the decision email for a registration.
// cert is attached when non-nil; the body mentions the attachment only when
// one is present.
func ComposeRegistrationDecision(reg models.Registration, cert *certificates.Certificate, sender string) (Message, error) {
	color, label := styleFor(reg.Status)
	view := decisionView{
		Recipient:   firstNonEmpty(reg.ContactPerson, reg.BusinessName),
		StatusLabel: label,
		Color:       color,
		Sender:      sender,
		Facts: []Fact{
			{Label: "Business name", Value: reg.BusinessName},
			{Label: "Application type", Value: titleCase(string(reg.ApplicationType))},
			{Label: "Filing date", Value: formatDate(&reg.FilingDate)},
		},
	}

	var subject string
	switch reg.Status {
	case enums.ApplicationStatusApproved:
		subject = "Your registration has been approved"
		view.Heading = "Registration Approved"
		view.Lead = fmt.Sprintf("We are pleased to inform you that the registration of %s has been approved.", reg.BusinessName)
		if reg.CertificateNumber != nil {
			view.Facts = append(view.Facts, Fact{Label: "Certificate number", Value: *reg.CertificateNumber})
		}
		if v := formatDate(reg.ValidUntil); v != "" {
			view.Facts = append(view.Facts, Fact{Label: "Valid until", Value: v})
		}
		if cert != nil {
			view.Closing = "Your certificate of registration is attached to this email. Please keep a copy for your records."
		} else {
			view.Closing = "Your certificate of registration could not be attached. Please contact the office to obtain a copy."
		}
	case enums.ApplicationStatusRejected:
		subject = "Update on your registration application"
		view.Heading = "Registration Not Approved"
		view.Lead = fmt.Sprintf("We regret to inform you that the registration of %s has not been approved.", reg.BusinessName)
		view.Closing = "You may contact the office for details or submit a new application."
	default:
		subject = "Your registration is under review"
		view.Heading = "Registration Under Review"
		view.Lead = fmt.Sprintf("The registration of %s has been returned to review.", reg.BusinessName)
	}

	html, err := renderDecision(view)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		Kind:    KindRegistrationDecision,
		To:      []string{reg.Email},
		Subject: subject,
		HTML:    html,
	}
	if cert != nil && len(cert.PDF) > 0 {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    cert.Filename,
			ContentType: ContentTypePDF,
			Data:        cert.PDF,
		})
	}
	return msg, nil
}

// ComposePermitDecision builds the decision email for a cut or transport permit.
func ComposePermitDecision(p models.Permit, sender string) (Message, error) {
	color, label := styleFor(p.Status)
	kind := titleCase(string(p.PermitType)) + " Permit"
	view := decisionView{
		Recipient:   p.ApplicantName,
		StatusLabel: label,
		Color:       color,
		Sender:      sender,
		Facts: []Fact{
			{Label: "Permit", Value: kind},
			{Label: "Municipality", Value: string(p.Municipality)},
			{Label: "Number of trees", Value: strconv.Itoa(p.NumberOfTrees)},
			{Label: "Volume (cu. m)", Value: p.VolumeCubicMeters.String()},
		},
	}

	var subject string
	switch p.Status {
	case enums.ApplicationStatusApproved:
		subject = fmt.Sprintf("Your %s application has been approved", strings.ToLower(kind))
		view.Heading = kind + " Approved"
		view.Lead = fmt.Sprintf("Your %s application has been approved.", strings.ToLower(kind))
		view.Closing = "Please present this notice together with a valid ID when claiming the permit."
	case enums.ApplicationStatusRejected:
		subject = fmt.Sprintf("Update on your %s application", strings.ToLower(kind))
		view.Heading = kind + " Not Approved"
		view.Lead = fmt.Sprintf("We regret to inform you that your %s application has not been approved.", strings.ToLower(kind))
		view.Closing = "You may contact the office for details or file a new application."
	default:
		subject = fmt.Sprintf("Your %s application is under review", strings.ToLower(kind))
		view.Heading = kind + " Under Review"
		view.Lead = fmt.Sprintf("Your %s application has been returned to review.", strings.ToLower(kind))
	}

	html, err := renderDecision(view)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindPermitDecision,
		To:      []string{p.Email},
		Subject: subject,
		HTML:    html,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "Applicant"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
